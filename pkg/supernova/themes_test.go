package supernova

import (
	"encoding/json"
	"testing"
)

func TestFilterByBrand(t *testing.T) {
	tokens := []Token{
		{ID: "t1", BrandID: "a"},
		{ID: "t2", BrandID: "b"},
		{ID: "t3", BrandID: "a"},
	}
	groups := []TokenGroup{
		{ID: "g1", BrandID: "a"},
		{ID: "g2", BrandID: "b"},
	}

	gotTokens, gotGroups := FilterByBrand(tokens, groups, "a")
	if len(gotTokens) != 2 || gotTokens[0].ID != "t1" || gotTokens[1].ID != "t3" {
		t.Errorf("FilterByBrand() tokens = %+v", gotTokens)
	}
	if len(gotGroups) != 1 || gotGroups[0].ID != "g1" {
		t.Errorf("FilterByBrand() groups = %+v", gotGroups)
	}
	if len(tokens) != 3 {
		t.Errorf("input tokens modified")
	}
}

func TestApplyThemes(t *testing.T) {
	base := []Token{
		{ID: "t1", Value: json.RawMessage(`"base-1"`)},
		{ID: "t2", Value: json.RawMessage(`"base-2"`)},
		{ID: "t3", Value: json.RawMessage(`"base-3"`)},
	}
	dark := Theme{ID: "dark", Overrides: []TokenOverride{
		{TokenID: "t1", Value: json.RawMessage(`"dark-1"`)},
		{TokenID: "t2", Value: json.RawMessage(`"dark-2"`)},
	}}
	contrast := Theme{ID: "contrast", Overrides: []TokenOverride{
		{TokenID: "t2", Value: json.RawMessage(`"contrast-2"`)},
		{TokenID: "missing", Value: json.RawMessage(`"ignored"`)},
	}}

	tests := []struct {
		name   string
		themes []Theme
		want   []string
	}{
		{name: "no themes", themes: nil, want: []string{`"base-1"`, `"base-2"`, `"base-3"`}},
		{name: "single theme", themes: []Theme{dark}, want: []string{`"dark-1"`, `"dark-2"`, `"base-3"`}},
		{name: "last theme wins", themes: []Theme{dark, contrast}, want: []string{`"dark-1"`, `"contrast-2"`, `"base-3"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyThemes(base, tt.themes)
			for i, want := range tt.want {
				if string(got[i].Value) != want {
					t.Errorf("token %s = %s, want %s", got[i].ID, got[i].Value, want)
				}
			}
			if string(base[0].Value) != `"base-1"` {
				t.Errorf("ApplyThemes() modified its input")
			}
		})
	}
}

func TestFindThemeIsScopedToBrand(t *testing.T) {
	themes := []Theme{
		{ID: "th1", IDInVersion: "th1-v", BrandID: "a"},
		{ID: "th2", IDInVersion: "th2-v", BrandID: "b"},
	}

	if _, ok := FindTheme(themes, "a", "th1-v"); !ok {
		t.Errorf("FindTheme() did not match version-scoped id")
	}
	if _, ok := FindTheme(themes, "a", "th2"); ok {
		t.Errorf("FindTheme() matched a theme of another brand")
	}
	if _, ok := FindTheme(themes, "a", ""); ok {
		t.Errorf("FindTheme() matched an empty id")
	}
}

func TestTokenDecode(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(TokenValue) bool
	}{
		{name: "string shorthand", raw: `"Inter"`, check: func(v TokenValue) bool { return v.Text != nil && *v.Text == "Inter" }},
		{name: "number shorthand", raw: `0.5`, check: func(v TokenValue) bool { return v.Number != nil && *v.Number == 0.5 }},
		{name: "measure", raw: `{"measure":16,"unit":"Pixels"}`, check: func(v TokenValue) bool { return v.Measure != nil && *v.Measure == 16 && v.Unit == "Pixels" }},
		{name: "reference", raw: `{"referencedTokenId":"t9"}`, check: func(v TokenValue) bool { return v.Reference == "t9" }},
		{name: "color", raw: `{"color":{"r":1,"g":1,"b":1,"a":1}}`, check: func(v TokenValue) bool { return v.Color != nil && v.Color.R == 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Token{Value: json.RawMessage(tt.raw)}.Decode()
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !tt.check(v) {
				t.Errorf("Decode(%s) = %+v", tt.raw, v)
			}
		})
	}
}
