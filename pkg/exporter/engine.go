package exporter

import (
	"context"
	"fmt"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// ExecutionResult is the outcome of one exporter run. On success Err is nil and
// Files holds the declared output (possibly empty). On failure Err wraps
// ErrPluginExecutionFailed. Logs holds the exporter's log lines in order either way.
type ExecutionResult struct {
	Files []EmittedFile
	Logs  []LogLine
	Err   error
}

// Success reports whether the exporter completed and returned well-formed output.
func (r *ExecutionResult) Success() bool {
	return r.Err == nil
}

// Engine runs loaded exporters against version data fetched from the remote API.
type Engine struct {
	remote Remote
}

// NewEngine returns an engine that reads version data through remote.
func NewEngine(remote Remote) *Engine {
	return &Engine{remote: remote}
}

// Run fetches and scopes the version data, merges the exporter configuration with
// overrides, and invokes the exporter exactly once. Exporter faults, including
// panics and malformed output, come back as a failed ExecutionResult; the
// returned error is reserved for failures before the exporter runs. Run does no
// disk I/O.
func (e *Engine) Run(ctx context.Context, p *LoadedPlugin, ec ExportContext, overrides Config) (*ExecutionResult, error) {
	if ec.Logger == nil {
		ec.Logger = NewLogSink()
	}

	data, err := e.fetchData(ctx, ec)
	if err != nil {
		return nil, err
	}

	in := Input{
		Context:       ec,
		Configuration: MergeConfig(p.DefaultConfig, overrides),
		Data:          data,
	}

	files, err := invoke(ctx, p.Plugin, in)
	if err == nil {
		err = validateFiles(files)
	}

	result := &ExecutionResult{Logs: ec.Logger.Lines()}
	if err != nil {
		result.Err = fmt.Errorf("%w: %s: %v", ErrPluginExecutionFailed, p.Manifest.DisplayName(), err)
		return result, nil
	}
	if files == nil {
		files = []EmittedFile{}
	}
	result.Files = files
	return result, nil
}

// fetchData loads tokens, groups, brands and themes for the context's version and
// applies the brand filter and theme overrides.
func (e *Engine) fetchData(ctx context.Context, ec ExportContext) (Data, error) {
	ref := ec.VersionRef()

	tokens, err := e.remote.Tokens(ctx, ref)
	if err != nil {
		return Data{}, fmt.Errorf("fetch tokens: %w", err)
	}
	groups, err := e.remote.TokenGroups(ctx, ref)
	if err != nil {
		return Data{}, fmt.Errorf("fetch token groups: %w", err)
	}
	brands, err := e.remote.Brands(ctx, ref)
	if err != nil {
		return Data{}, fmt.Errorf("fetch brands: %w", err)
	}
	themes, err := e.remote.Themes(ctx, ref)
	if err != nil {
		return Data{}, fmt.Errorf("fetch themes: %w", err)
	}

	if ec.BrandID != "" {
		tokens, groups = supernova.FilterByBrand(tokens, groups, ec.BrandID)
		themes = supernova.ThemesOf(themes, ec.BrandID)
	}
	if theme, ok := ec.Theme(); ok {
		tokens = supernova.ApplyThemes(tokens, []supernova.Theme{theme})
	}

	return Data{
		Tokens:      tokens,
		TokenGroups: groups,
		Brands:      brands,
		Themes:      themes,
	}, nil
}

// invoke calls the exporter and converts a panic into an error.
func invoke(ctx context.Context, p Plugin, in Input) (files []EmittedFile, err error) {
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = fmt.Errorf("exporter panicked: %v", r)
		}
	}()
	return p.Invoke(ctx, in)
}

func validateFiles(files []EmittedFile) error {
	for i, f := range files {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("malformed output at index %d: %w", i, err)
		}
	}
	return nil
}
