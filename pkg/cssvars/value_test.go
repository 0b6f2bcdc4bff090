package cssvars

import (
	"testing"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

func TestFormatColor(t *testing.T) {
	opaque := supernova.Color{R: 1, G: 0.5, B: 0, A: 1}
	translucent := supernova.Color{R: 0, G: 0, B: 1, A: 0.5}

	tests := []struct {
		color  supernova.Color
		format ColorFormat
		want   string
	}{
		{opaque, ColorHex6, "#ff8000"},
		{opaque, ColorHex8, "#ff8000ff"},
		{opaque, ColorRGB, "rgb(255, 128, 0)"},
		{opaque, ColorRGBA, "rgba(255, 128, 0, 1)"},
		{opaque, ColorSmartHex, "#ff8000"},
		{opaque, ColorSmartRGBA, "rgb(255, 128, 0)"},
		{translucent, ColorHex6, "#0000ff"},
		{translucent, ColorSmartHex, "#0000ff80"},
		{translucent, ColorSmartRGBA, "rgba(0, 0, 255, 0.5)"},
		{supernova.Color{R: 2, G: -1, B: 0.2, A: 0.3333}, ColorRGBA, "rgba(255, 0, 51, 0.333)"},
	}

	for _, tt := range tests {
		if got := formatColor(tt.color, tt.format, 3); got != tt.want {
			t.Errorf("formatColor(%+v, %s) = %q, want %q", tt.color, tt.format, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v         float64
		precision int
		want      string
	}{
		{4, 4, "4"},
		{1.5, 4, "1.5"},
		{0.123456, 3, "0.123"},
		{-0.0001, 2, "0"},
		{100, 0, "100"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.v, tt.precision); got != tt.want {
			t.Errorf("formatNumber(%v, %d) = %q, want %q", tt.v, tt.precision, got, tt.want)
		}
	}
}

func TestNameStyleApply(t *testing.T) {
	tests := []struct {
		style NameStyle
		in    string
		want  string
	}{
		{KebabCase, "Brand Primary", "brand-primary"},
		{KebabCase, "BorderRadius", "border-radius"},
		{KebabCase, "  button_bg / hover!", "button-bg-hover"},
		{CamelCase, "brand primary 100", "brandPrimary100"},
		{PascalCase, "brand-primary", "BrandPrimary"},
		{SnakeCase, "Brand Primary", "brand_primary"},
		{ConstantCase, "Brand Primary", "BRAND_PRIMARY"},
		{FlatCase, "Brand Primary", "brandprimary"},
		{KebabCase, "", ""},
	}

	for _, tt := range tests {
		if got := tt.style.Apply(tt.in); got != tt.want {
			t.Errorf("%s.Apply(%q) = %q, want %q", tt.style, tt.in, got, tt.want)
		}
	}
}

func TestCSSUnit(t *testing.T) {
	tests := map[string]string{
		"Pixels":  "px",
		"rem":     "rem",
		"Percent": "%",
		"Ms":      "ms",
		"Raw":     "",
		"":        "",
	}

	for in, want := range tests {
		if got := cssUnit(in); got != want {
			t.Errorf("cssUnit(%q) = %q, want %q", in, got, want)
		}
	}
}
