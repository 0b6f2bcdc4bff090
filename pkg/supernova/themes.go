package supernova

// FilterByBrand returns the tokens and groups that belong to brandID. The input
// slices are not modified.
func FilterByBrand(tokens []Token, groups []TokenGroup, brandID string) ([]Token, []TokenGroup) {
	outTokens := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.BrandID == brandID {
			outTokens = append(outTokens, t)
		}
	}

	outGroups := make([]TokenGroup, 0, len(groups))
	for _, g := range groups {
		if g.BrandID == brandID {
			outGroups = append(outGroups, g)
		}
	}

	return outTokens, outGroups
}

// ApplyThemes computes token values by layering the overrides of each theme, in
// order, over the base values. When two themes override the same token the last
// one wins. The input tokens are not modified; overrides that reference unknown
// tokens are ignored.
func ApplyThemes(tokens []Token, themes []Theme) []Token {
	overrides := make(map[string][]byte)
	for _, theme := range themes {
		for _, o := range theme.Overrides {
			if len(o.Value) == 0 {
				continue
			}
			overrides[o.TokenID] = o.Value
		}
	}

	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = t
		if v, ok := overrides[t.ID]; ok {
			value := make([]byte, len(v))
			copy(value, v)
			out[i].Value = value
		}
	}
	return out
}

// FindBrand returns the brand matching id by persistent or version-scoped id.
func FindBrand(brands []Brand, id string) (Brand, bool) {
	for _, b := range brands {
		if b.Matches(id) {
			return b, true
		}
	}
	return Brand{}, false
}

// FindTheme returns the theme of brandID matching id by persistent or
// version-scoped id. Themes of other brands never match.
func FindTheme(themes []Theme, brandID, id string) (Theme, bool) {
	for _, t := range themes {
		if t.BrandID == brandID && t.Matches(id) {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemesOf returns the themes that belong to brandID, preserving order.
func ThemesOf(themes []Theme, brandID string) []Theme {
	var out []Theme
	for _, t := range themes {
		if t.BrandID == brandID {
			out = append(out, t)
		}
	}
	return out
}
