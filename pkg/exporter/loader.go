package exporter

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LoadedPlugin is an exporter package that passed validation and is ready to run.
type LoadedPlugin struct {
	Dir           string // absolute package directory
	ManifestPath  string
	Manifest      Manifest
	DefaultConfig Config
	Environment   ExecutionEnvironment
	Plugin        Plugin
}

// Loader validates exporter packages and binds them to an executable Plugin.
type Loader struct {
	registry *Registry
}

// NewLoader returns a loader that resolves builtin exporters from registry.
// A nil registry disables builtin mode.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// Load reads the exporter package in dir. It fails with ErrPluginNotFound when the
// directory or its manifest is missing and with ErrPluginManifestInvalid when the
// manifest, its entry point, or the default configuration cannot be used. Load
// only reads from disk.
func (l *Loader) Load(dir string, env ExecutionEnvironment) (*LoadedPlugin, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: exporter directory must not be empty", ErrPluginNotFound)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPluginNotFound, dir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPluginNotFound, absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPluginNotFound, absDir)
	}

	manifest, manifestPath, err := readManifest(absDir)
	if err != nil {
		return nil, err
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrPluginManifestInvalid, manifestPath, fmt.Sprintf(format, args...))
	}

	defaults, err := loadDefaultConfig(absDir, manifest.Config)
	if err != nil {
		return nil, invalid("%v", err)
	}

	loaded := &LoadedPlugin{
		Dir:           absDir,
		ManifestPath:  manifestPath,
		Manifest:      *manifest,
		DefaultConfig: defaults,
		Environment:   env,
	}

	switch manifest.Mode {
	case ModeBuiltin:
		p, ok := l.registry.Lookup(manifest.Entry)
		if !ok {
			return nil, invalid("unknown builtin exporter %q (available: %s)", manifest.Entry, strings.Join(l.registry.Names(), ", "))
		}
		loaded.Plugin = p

	case ModeProcess:
		entry, err := resolveInside(absDir, manifest.Entry)
		if err != nil {
			return nil, invalid("entry: %v", err)
		}
		entryInfo, err := os.Stat(entry)
		if err != nil {
			return nil, invalid("entry point %s does not exist", manifest.Entry)
		}
		if entryInfo.IsDir() {
			return nil, invalid("entry point %s is a directory", manifest.Entry)
		}

		interpreter := ""
		if manifest.Interpreter != "" {
			interpreter, err = exec.LookPath(manifest.Interpreter)
			if err != nil {
				return nil, invalid("interpreter %q not found: %v", manifest.Interpreter, err)
			}
		}

		loaded.Plugin = &processPlugin{
			dir:         absDir,
			entry:       entry,
			interpreter: interpreter,
			args:        manifest.Args,
			env:         env,
		}
	}

	return loaded, nil
}

// loadDefaultConfig reads the package's default configuration. An explicitly
// named file must exist; the implicit config.json is optional.
func loadDefaultConfig(dir, name string) (Config, error) {
	explicit := name != ""
	if !explicit {
		name = DefaultConfigFileName
	}

	path, err := resolveInside(dir, name)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return Config{}, nil
	}

	return LoadConfigFile(path)
}

// resolveInside joins a slash-separated relative path onto root and rejects
// results that leave root.
func resolveInside(root, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty path")
	}
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" {
		return "", fmt.Errorf("path %s must be relative to the package", rel)
	}

	joined := filepath.Join(root, native)
	r, err := filepath.Rel(root, joined)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s points outside the package", rel)
	}
	return joined, nil
}
