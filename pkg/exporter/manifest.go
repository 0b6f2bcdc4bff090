package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Mode selects how an exporter is executed.
type Mode string

// Execution modes.
const (
	// ModeProcess runs the entry file as a subprocess speaking JSON on stdin/stdout.
	ModeProcess Mode = "process"
	// ModeBuiltin runs an exporter compiled into the host, looked up by name.
	ModeBuiltin Mode = "builtin"
)

// ManifestFileNames are the manifest files recognized in an exporter package, in
// lookup order.
var ManifestFileNames = []string{"exporter.json", "exporter.yaml", "exporter.yml"}

// DefaultConfigFileName is used when the manifest names no configuration file.
const DefaultConfigFileName = "config.json"

// Manifest describes an exporter package on disk.
type Manifest struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Description string   `json:"description" yaml:"description"`
	Entry       string   `json:"entry" yaml:"entry"`
	Mode        Mode     `json:"mode" yaml:"mode"`
	Interpreter string   `json:"interpreter" yaml:"interpreter"`
	Args        []string `json:"args" yaml:"args"`
	Config      string   `json:"config" yaml:"config"`
	UsesBrands  bool     `json:"usesBrands" yaml:"usesBrands"`
	UsesThemes  bool     `json:"usesThemes" yaml:"usesThemes"`
}

// DisplayName returns the most descriptive name the manifest offers.
func (m *Manifest) DisplayName() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.ID != "":
		return m.ID
	default:
		return m.Entry
	}
}

// validate checks required fields and applies defaults.
func (m *Manifest) validate() error {
	if m.Entry == "" {
		return errors.New("missing required field \"entry\"")
	}
	switch m.Mode {
	case "":
		m.Mode = ModeProcess
	case ModeProcess, ModeBuiltin:
	default:
		return fmt.Errorf("unknown mode %q (must be %q or %q)", m.Mode, ModeProcess, ModeBuiltin)
	}
	if m.Mode == ModeBuiltin && (m.Interpreter != "" || len(m.Args) > 0) {
		return errors.New("builtin exporters take no interpreter or args")
	}
	return nil
}

// readManifest finds and parses the manifest in dir. It returns the path of the
// manifest file that was used.
func readManifest(dir string) (*Manifest, string, error) {
	for _, name := range ManifestFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("%w: %s: %v", ErrPluginNotFound, path, err)
		}

		var m Manifest
		if filepath.Ext(name) == ".json" {
			err = json.Unmarshal(data, &m)
		} else {
			err = yaml.Unmarshal(data, &m)
		}
		if err != nil {
			return nil, path, fmt.Errorf("%w: %s: %v", ErrPluginManifestInvalid, path, err)
		}
		if err := m.validate(); err != nil {
			return nil, path, fmt.Errorf("%w: %s: %v", ErrPluginManifestInvalid, path, err)
		}
		return &m, path, nil
	}

	return nil, "", fmt.Errorf("%w: no manifest (%s) in %s", ErrPluginNotFound, ManifestFileNames[0], dir)
}
