package exporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// fakeRemote serves a fixed version and counts calls.
type fakeRemote struct {
	brands []supernova.Brand
	themes []supernova.Theme
	tokens []supernova.Token
	groups []supernova.TokenGroup
	err    error
	calls  int
}

func (f *fakeRemote) Brands(context.Context, supernova.VersionRef) ([]supernova.Brand, error) {
	f.calls++
	return f.brands, f.err
}

func (f *fakeRemote) Themes(context.Context, supernova.VersionRef) ([]supernova.Theme, error) {
	f.calls++
	return f.themes, f.err
}

func (f *fakeRemote) Tokens(context.Context, supernova.VersionRef) ([]supernova.Token, error) {
	f.calls++
	return f.tokens, f.err
}

func (f *fakeRemote) TokenGroups(context.Context, supernova.VersionRef) ([]supernova.TokenGroup, error) {
	f.calls++
	return f.groups, f.err
}

// newFixtureRemote returns two brands, each with a theme and a color token.
func newFixtureRemote() *fakeRemote {
	return &fakeRemote{
		brands: []supernova.Brand{
			{ID: "brand-default", IDInVersion: "b1", Name: "Default"},
			{ID: "brand-dark", IDInVersion: "b2", Name: "Dark"},
		},
		themes: []supernova.Theme{
			{ID: "theme-contrast", IDInVersion: "t1", BrandID: "brand-default", Name: "High contrast", Overrides: []supernova.TokenOverride{
				{TokenID: "tok-primary", Value: json.RawMessage(`{"color":{"r":0,"g":0,"b":0,"a":1}}`)},
			}},
			{ID: "theme-night", IDInVersion: "t2", BrandID: "brand-dark", Name: "Night"},
		},
		tokens: []supernova.Token{
			{ID: "tok-primary", Name: "Primary", TokenType: supernova.TokenTypeColor, BrandID: "brand-default", Value: json.RawMessage(`{"color":{"r":0.2,"g":0.4,"b":1,"a":1}}`)},
			{ID: "tok-dark-primary", Name: "Primary", TokenType: supernova.TokenTypeColor, BrandID: "brand-dark", Value: json.RawMessage(`{"color":{"r":0.07,"g":0.07,"b":0.07,"a":1}}`)},
		},
		groups: []supernova.TokenGroup{
			{ID: "grp-default", Name: "Colors", TokenType: supernova.TokenTypeColor, BrandID: "brand-default", IsRoot: true},
			{ID: "grp-dark", Name: "Colors", TokenType: supernova.TokenTypeColor, BrandID: "brand-dark", IsRoot: true},
		},
	}
}

// writePackage creates an exporter package directory with the given files.
func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o755))
	}
	return dir
}
