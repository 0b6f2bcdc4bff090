package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// ExecutionEnvironment tells an exporter where it is running.
type ExecutionEnvironment string

// Execution environments.
const (
	EnvCI          ExecutionEnvironment = "ci"
	EnvInteractive ExecutionEnvironment = "interactive"
)

// ParseExecutionEnvironment validates an execution environment tag. An empty
// string selects EnvCI.
func ParseExecutionEnvironment(s string) (ExecutionEnvironment, error) {
	switch ExecutionEnvironment(s) {
	case "", EnvCI:
		return EnvCI, nil
	case EnvInteractive:
		return EnvInteractive, nil
	}
	return "", fmt.Errorf("unknown execution environment %q (must be %q or %q)", s, EnvCI, EnvInteractive)
}

// Remote is the part of the design system API the pipeline consumes.
// *supernova.Client satisfies it.
type Remote interface {
	Brands(ctx context.Context, ref supernova.VersionRef) ([]supernova.Brand, error)
	Themes(ctx context.Context, ref supernova.VersionRef) ([]supernova.Theme, error)
	Tokens(ctx context.Context, ref supernova.VersionRef) ([]supernova.Token, error)
	TokenGroups(ctx context.Context, ref supernova.VersionRef) ([]supernova.TokenGroup, error)
}

// ExportContext is the input context of one export run. It is built once by
// BuildContext and passed around by value; brand and theme ids are the resolved
// persistent ids.
type ExportContext struct {
	DesignSystemID string               `json:"dsId"`
	VersionID      string               `json:"versionId"`
	BrandID        string               `json:"brandId,omitempty"`
	ThemeID        string               `json:"themeId,omitempty"`
	AccessToken    string               `json:"accessToken"`
	APIURL         string               `json:"apiUrl"`
	ExportPath     string               `json:"exportPath"`
	Debug          bool                 `json:"debug"`
	Environment    ExecutionEnvironment `json:"environment"`
	Logger         *LogSink             `json:"-"`

	theme *supernova.Theme
}

// VersionRef returns the version the context points at.
func (c ExportContext) VersionRef() supernova.VersionRef {
	return supernova.VersionRef{DesignSystemID: c.DesignSystemID, VersionID: c.VersionID}
}

// Theme returns a copy of the resolved theme, if any.
func (c ExportContext) Theme() (supernova.Theme, bool) {
	if c.theme == nil {
		return supernova.Theme{}, false
	}
	return *c.theme, true
}

// ContextRequest holds the raw, unresolved selection of an export run.
type ContextRequest struct {
	AccessToken    string
	APIURL         string
	DesignSystemID string
	VersionID      string
	BrandID        string // persistent or version-scoped id
	ThemeID        string // persistent or version-scoped id
	ExportPath     string
	Debug          bool
	Environment    ExecutionEnvironment
	Sink           *LogSink

	// Capabilities declared by the exporter that will consume the context.
	UsesBrands bool
	UsesThemes bool
}

// BuildContext resolves the brand and theme selectors against the remote version
// and returns the complete context. Resolution is all-or-nothing.
func BuildContext(ctx context.Context, remote Remote, req ContextRequest) (ExportContext, error) {
	if req.AccessToken == "" {
		return ExportContext{}, errors.New("API key must not be empty")
	}
	if req.DesignSystemID == "" {
		return ExportContext{}, errors.New("design system ID must not be empty")
	}
	if req.VersionID == "" {
		return ExportContext{}, errors.New("design system version ID must not be empty")
	}
	if req.ThemeID != "" && req.BrandID == "" {
		return ExportContext{}, fmt.Errorf("%w: brand ID must be provided when theme ID %s is provided", ErrInvalidSelection, req.ThemeID)
	}
	if req.UsesBrands && req.BrandID == "" {
		return ExportContext{}, fmt.Errorf("%w: exporter uses brands, a brand ID must be provided", ErrInvalidSelection)
	}

	sink := req.Sink
	if sink == nil {
		sink = NewLogSink()
	}
	env := req.Environment
	if env == "" {
		env = EnvCI
	}

	themeID := req.ThemeID
	if themeID != "" && !req.UsesThemes {
		sink.Warnf("theme %s ignored because the exporter does not use themes", themeID)
		themeID = ""
	}

	out := ExportContext{
		DesignSystemID: req.DesignSystemID,
		VersionID:      req.VersionID,
		AccessToken:    req.AccessToken,
		APIURL:         req.APIURL,
		ExportPath:     req.ExportPath,
		Debug:          req.Debug,
		Environment:    env,
		Logger:         sink,
	}

	if req.BrandID == "" {
		return out, nil
	}

	ref := out.VersionRef()
	brands, err := remote.Brands(ctx, ref)
	if err != nil {
		return ExportContext{}, fmt.Errorf("fetch brands: %w", err)
	}
	brand, ok := supernova.FindBrand(brands, req.BrandID)
	if !ok {
		return ExportContext{}, fmt.Errorf("%w: brand %s not found in design system %s", ErrBrandNotFound, req.BrandID, req.DesignSystemID)
	}
	out.BrandID = brand.ID

	if themeID == "" {
		return out, nil
	}

	themes, err := remote.Themes(ctx, ref)
	if err != nil {
		return ExportContext{}, fmt.Errorf("fetch themes: %w", err)
	}
	theme, ok := supernova.FindTheme(themes, brand.ID, themeID)
	if !ok {
		return ExportContext{}, fmt.Errorf("%w: theme %s not found in brand %s", ErrThemeNotFound, themeID, brand.ID)
	}
	out.ThemeID = theme.ID
	out.theme = &theme

	return out, nil
}
