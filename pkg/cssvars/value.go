package cssvars

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// ColorFormat selects how color values are written.
type ColorFormat string

// Color formats. The smart variants fall back to the opaque form when alpha is 1.
const (
	ColorHex6      ColorFormat = "hex6"
	ColorHex8      ColorFormat = "hex8"
	ColorRGB       ColorFormat = "rgb"
	ColorRGBA      ColorFormat = "rgba"
	ColorSmartHex  ColorFormat = "smartHex"
	ColorSmartRGBA ColorFormat = "smartRgba"
)

func (f ColorFormat) valid() bool {
	switch f {
	case ColorHex6, ColorHex8, ColorRGB, ColorRGBA, ColorSmartHex, ColorSmartRGBA:
		return true
	}
	return false
}

// maxReferenceDepth bounds reference chains so cycles terminate.
const maxReferenceDepth = 16

// formatColor writes c, whose channels range from 0 to 1, in format f.
func formatColor(c supernova.Color, f ColorFormat, precision int) string {
	r := channel(c.R)
	g := channel(c.G)
	b := channel(c.B)
	opaque := c.A >= 1

	switch f {
	case ColorHex6:
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	case ColorHex8:
		return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, channel(c.A))
	case ColorRGB:
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	case ColorRGBA:
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatNumber(c.A, precision))
	case ColorSmartRGBA:
		if opaque {
			return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatNumber(c.A, precision))
	default:
		if opaque {
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
		return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, channel(c.A))
	}
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// formatNumber writes v with at most precision decimals and no trailing zeros.
func formatNumber(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// cssUnit maps a measure unit onto its CSS suffix.
func cssUnit(unit string) string {
	switch strings.ToLower(unit) {
	case "pixels", "px":
		return "px"
	case "rem":
		return "rem"
	case "em":
		return "em"
	case "percent", "%":
		return "%"
	case "ms":
		return "ms"
	case "s", "seconds":
		return "s"
	case "points", "pt":
		return "pt"
	default:
		return ""
	}
}

// renderer converts token values to CSS.
type renderer struct {
	cfg    Configuration
	tokens map[string]supernova.Token
	names  *namer
}

// value returns the CSS value of t.
func (r *renderer) value(t supernova.Token) (string, error) {
	return r.valueAt(t, 0)
}

func (r *renderer) valueAt(t supernova.Token, depth int) (string, error) {
	v, err := t.Decode()
	if err != nil {
		return "", fmt.Errorf("token %s: %w", t.ID, err)
	}

	if v.Reference != "" {
		ref, ok := r.tokens[v.Reference]
		if !ok {
			return "", fmt.Errorf("token %s references unknown token %s", t.ID, v.Reference)
		}
		if r.cfg.UseReferences {
			return "var(--" + r.names.name(ref) + ")", nil
		}
		if depth >= maxReferenceDepth {
			return "", fmt.Errorf("token %s: reference chain longer than %d", t.ID, maxReferenceDepth)
		}
		return r.valueAt(ref, depth+1)
	}

	switch {
	case v.Color != nil:
		return formatColor(*v.Color, r.cfg.ColorFormat, r.cfg.ColorPrecision), nil
	case v.Measure != nil:
		return formatNumber(*v.Measure, 4) + cssUnit(v.Unit), nil
	case v.Text != nil:
		if t.TokenType == supernova.TokenTypeString || t.TokenType == supernova.TokenTypeFontFamily {
			return strconv.Quote(*v.Text), nil
		}
		return *v.Text, nil
	case v.Number != nil:
		return formatNumber(*v.Number, 4), nil
	}
	return "", fmt.Errorf("token %s: unsupported %s value", t.ID, t.TokenType)
}
