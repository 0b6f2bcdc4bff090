package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

func builtinPlugin(fn Func) *LoadedPlugin {
	return &LoadedPlugin{
		Manifest:      Manifest{ID: "io.example.test", Entry: "test", Mode: ModeBuiltin},
		DefaultConfig: Config{"indent": 2, "colors": map[string]any{"format": "hex", "alpha": true}},
		Environment:   EnvCI,
		Plugin:        fn,
	}
}

func buildContext(t *testing.T, remote Remote, modify func(r *ContextRequest)) ExportContext {
	t.Helper()
	req := baseRequest()
	if modify != nil {
		modify(&req)
	}
	ec, err := BuildContext(context.Background(), remote, req)
	require.NoError(t, err)
	return ec
}

func TestEngineRunPassesScopedData(t *testing.T) {
	remote := newFixtureRemote()
	ec := buildContext(t, remote, func(r *ContextRequest) {
		r.BrandID, r.ThemeID, r.UsesThemes = "b1", "t1", true
	})

	var got Input
	p := builtinPlugin(func(_ context.Context, in Input) ([]EmittedFile, error) {
		got = in
		in.Context.Logger.Infof("exporting %d tokens", len(in.Data.Tokens))
		return []EmittedFile{InlineFile("tokens.css", ":root {}")}, nil
	})

	res, err := NewEngine(remote).Run(context.Background(), p, ec, Config{"colors": map[string]any{"format": "rgb"}})
	require.NoError(t, err)
	require.True(t, res.Success(), "Run() failed: %v", res.Err)

	require.Len(t, got.Data.Tokens, 1)
	assert.Equal(t, "tok-primary", got.Data.Tokens[0].ID)
	assert.JSONEq(t, `{"color":{"r":0,"g":0,"b":0,"a":1}}`, string(got.Data.Tokens[0].Value), "theme override applied")
	require.Len(t, got.Data.TokenGroups, 1)
	assert.Equal(t, "grp-default", got.Data.TokenGroups[0].ID)
	assert.Len(t, got.Data.Brands, 2)
	require.Len(t, got.Data.Themes, 1)
	assert.Equal(t, "theme-contrast", got.Data.Themes[0].ID)

	assert.Equal(t, Config{
		"indent": 2,
		"colors": map[string]any{"format": "rgb", "alpha": true},
	}, got.Configuration)

	assert.Equal(t, []EmittedFile{InlineFile("tokens.css", ":root {}")}, res.Files)
	assert.Equal(t, []LogLine{{Level: LevelInfo, Message: "exporting 1 tokens"}}, res.Logs)

	// The remote data must not be modified by the theme.
	assert.JSONEq(t, `{"color":{"r":0.2,"g":0.4,"b":1,"a":1}}`, string(remote.tokens[0].Value))
}

func TestEngineRunWithoutBrand(t *testing.T) {
	remote := newFixtureRemote()
	ec := buildContext(t, remote, nil)

	var got Input
	p := builtinPlugin(func(_ context.Context, in Input) ([]EmittedFile, error) {
		got = in
		return nil, nil
	})
	p.Manifest.UsesThemes = true

	res, err := NewEngine(remote).Run(context.Background(), p, ec, nil)
	require.NoError(t, err)
	require.True(t, res.Success())

	assert.Len(t, got.Data.Tokens, 2)
	assert.Len(t, got.Data.Themes, 2)
	assert.NotNil(t, res.Files)
	assert.Empty(t, res.Files)
}

func TestEngineRunFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
	}{
		{
			name: "exporter error",
			fn: func(_ context.Context, in Input) ([]EmittedFile, error) {
				in.Context.Logger.Errorf("token tok-1 has no value")
				return nil, errors.New("invalid token")
			},
		},
		{
			name: "exporter panic",
			fn: func(context.Context, Input) ([]EmittedFile, error) {
				var m map[string]int
				m["boom"]++
				return nil, nil
			},
		},
		{
			name: "file without path",
			fn: func(context.Context, Input) ([]EmittedFile, error) {
				return []EmittedFile{{Kind: KindInline}}, nil
			},
		},
		{
			name: "unknown file kind",
			fn: func(context.Context, Input) ([]EmittedFile, error) {
				return []EmittedFile{{Path: "a.css", Kind: "symlink"}}, nil
			},
		},
		{
			name: "copy without source",
			fn: func(context.Context, Input) ([]EmittedFile, error) {
				return []EmittedFile{{Path: "a.css", Kind: KindCopyRemote}}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFixtureRemote()
			ec := buildContext(t, remote, nil)

			res, err := NewEngine(remote).Run(context.Background(), builtinPlugin(tt.fn), ec, nil)
			require.NoError(t, err)
			require.False(t, res.Success())
			assert.ErrorIs(t, res.Err, ErrPluginExecutionFailed)
			assert.Contains(t, res.Err.Error(), "io.example.test")
			assert.Nil(t, res.Files)
		})
	}
}

func TestEngineRunKeepsLogsOnFailure(t *testing.T) {
	remote := newFixtureRemote()
	ec := buildContext(t, remote, nil)

	p := builtinPlugin(func(_ context.Context, in Input) ([]EmittedFile, error) {
		in.Context.Logger.Warnf("deprecated option")
		in.Context.Logger.Errorf("cannot continue")
		return nil, errors.New("failed")
	})

	res, err := NewEngine(remote).Run(context.Background(), p, ec, nil)
	require.NoError(t, err)
	assert.Equal(t, []LogLine{
		{Level: LevelWarn, Message: "deprecated option"},
		{Level: LevelError, Message: "cannot continue"},
	}, res.Logs)
}

func TestEngineRunRemoteError(t *testing.T) {
	remote := newFixtureRemote()
	ec := buildContext(t, remote, nil)
	remote.err = errors.New("503 service unavailable")

	called := false
	p := builtinPlugin(func(context.Context, Input) ([]EmittedFile, error) {
		called = true
		return nil, nil
	})

	res, err := NewEngine(remote).Run(context.Background(), p, ec, nil)
	require.ErrorIs(t, err, remote.err)
	assert.Nil(t, res)
	assert.False(t, called, "exporter must not run without data")
}

func TestEngineRunInputJSON(t *testing.T) {
	remote := newFixtureRemote()
	ec := buildContext(t, remote, func(r *ContextRequest) { r.BrandID = "brand-dark" })

	var raw []byte
	p := builtinPlugin(func(_ context.Context, in Input) ([]EmittedFile, error) {
		var err error
		raw, err = json.Marshal(in)
		return nil, err
	})

	_, err := NewEngine(remote).Run(context.Background(), p, ec, nil)
	require.NoError(t, err)

	var decoded struct {
		Context struct {
			BrandID string `json:"brandId"`
		} `json:"context"`
		Data struct {
			Tokens []supernova.Token `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "brand-dark", decoded.Context.BrandID)
	require.Len(t, decoded.Data.Tokens, 1)
	assert.Equal(t, "tok-dark-primary", decoded.Data.Tokens[0].ID)
}
