package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoad(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("noop", Func(func(context.Context, Input) ([]EmittedFile, error) {
		return nil, nil
	})))

	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
		check   func(t *testing.T, p *LoadedPlugin)
	}{
		{
			name:    "missing manifest",
			files:   map[string]string{"index.sh": "echo"},
			wantErr: ErrPluginNotFound,
		},
		{
			name:    "unparseable manifest",
			files:   map[string]string{"exporter.json": "{not json"},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name:    "missing entry field",
			files:   map[string]string{"exporter.json": `{"id":"x"}`},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name:    "entry file does not exist",
			files:   map[string]string{"exporter.json": `{"entry":"index.sh","interpreter":"sh"}`},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name: "entry escapes package",
			files: map[string]string{
				"exporter.json": `{"entry":"../index.sh","interpreter":"sh"}`,
			},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name: "entry is a directory",
			files: map[string]string{
				"exporter.json":  `{"entry":"src","interpreter":"sh"}`,
				"src/index.sh":   "echo",
				"src/helpers.sh": "echo",
			},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name:    "unknown mode",
			files:   map[string]string{"exporter.json": `{"entry":"noop","mode":"wasm"}`},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name:    "unknown builtin",
			files:   map[string]string{"exporter.json": `{"entry":"missing","mode":"builtin"}`},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name:    "builtin with interpreter",
			files:   map[string]string{"exporter.json": `{"entry":"noop","mode":"builtin","interpreter":"sh"}`},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name: "unparseable default config",
			files: map[string]string{
				"exporter.json": `{"entry":"noop","mode":"builtin"}`,
				"config.json":   "{",
			},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name: "named config missing",
			files: map[string]string{
				"exporter.json": `{"entry":"noop","mode":"builtin","config":"settings.yaml"}`,
			},
			wantErr: ErrPluginManifestInvalid,
		},
		{
			name: "builtin with default config",
			files: map[string]string{
				"exporter.json": `{"id":"io.example.noop","name":"Noop","entry":"noop","mode":"builtin","usesBrands":true}`,
				"config.json":   `{"indent": 2, "prefix": "ds"}`,
			},
			check: func(t *testing.T, p *LoadedPlugin) {
				assert.Equal(t, ModeBuiltin, p.Manifest.Mode)
				assert.True(t, p.Manifest.UsesBrands)
				assert.Equal(t, "Noop", p.Manifest.DisplayName())
				assert.Equal(t, Config{"indent": float64(2), "prefix": "ds"}, p.DefaultConfig)
				assert.NotNil(t, p.Plugin)
			},
		},
		{
			name: "yaml manifest with yaml config",
			files: map[string]string{
				"exporter.yaml": "id: io.example.yaml\nentry: noop\nmode: builtin\nconfig: settings.yaml\nusesThemes: true\n",
				"settings.yaml": "colors:\n  format: hex\n",
			},
			check: func(t *testing.T, p *LoadedPlugin) {
				assert.Equal(t, "io.example.yaml", p.Manifest.DisplayName())
				assert.True(t, p.Manifest.UsesThemes)
				assert.Equal(t, "exporter.yaml", filepath.Base(p.ManifestPath))
				assert.Equal(t, Config{"colors": map[string]any{"format": "hex"}}, p.DefaultConfig)
			},
		},
		{
			name: "process exporter without config",
			files: map[string]string{
				"exporter.json": `{"entry":"bin/export.sh","interpreter":"sh","args":["--fast"]}`,
				"bin/export.sh": "echo '{\"files\":[]}'",
			},
			check: func(t *testing.T, p *LoadedPlugin) {
				assert.Equal(t, ModeProcess, p.Manifest.Mode)
				assert.Empty(t, p.DefaultConfig)
				proc, ok := p.Plugin.(*processPlugin)
				require.True(t, ok, "Plugin = %T, want *processPlugin", p.Plugin)
				assert.Equal(t, filepath.Join(p.Dir, "bin", "export.sh"), proc.entry)
				assert.Equal(t, []string{"--fast"}, proc.args)
				assert.Equal(t, EnvInteractive, proc.env)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePackage(t, tt.files)

			p, err := NewLoader(registry).Load(dir, EnvInteractive)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, EnvInteractive, p.Environment)
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestLoaderLoadMissingDirectory(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.Load(filepath.Join(t.TempDir(), "nope"), EnvCI)
	require.ErrorIs(t, err, ErrPluginNotFound)

	_, err = loader.Load("", EnvCI)
	require.ErrorIs(t, err, ErrPluginNotFound)

	file := filepath.Join(t.TempDir(), "exporter.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"entry":"x"}`), 0o644))
	_, err = loader.Load(file, EnvCI)
	require.ErrorIs(t, err, ErrPluginNotFound)
}

func TestLoaderNilRegistryRejectsBuiltin(t *testing.T) {
	dir := writePackage(t, map[string]string{"exporter.json": `{"entry":"noop","mode":"builtin"}`})

	_, err := NewLoader(nil).Load(dir, EnvCI)
	require.ErrorIs(t, err, ErrPluginManifestInvalid)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	noop := Func(func(context.Context, Input) ([]EmittedFile, error) { return nil, nil })

	require.NoError(t, r.Register("b", noop))
	require.NoError(t, r.Register("a", noop))
	require.Error(t, r.Register("a", noop))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	_, ok := r.Lookup("c")
	assert.False(t, ok)

	var nilRegistry *Registry
	assert.Nil(t, nilRegistry.Names())
	_, ok = nilRegistry.Lookup("a")
	assert.False(t, ok)
}

func TestResolveInside(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "pkg")

	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{rel: "index.sh", want: filepath.Join(root, "index.sh")},
		{rel: "bin/run.sh", want: filepath.Join(root, "bin", "run.sh")},
		{rel: "bin/../run.sh", want: filepath.Join(root, "run.sh")},
		{rel: "", wantErr: true},
		{rel: "../run.sh", wantErr: true},
		{rel: "/usr/bin/env", wantErr: true},
	}

	for _, tt := range tests {
		got, err := resolveInside(root, tt.rel)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveInside(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveInside(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
