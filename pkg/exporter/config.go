package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is an exporter configuration: the package defaults merged with the
// user's overrides. Values are whatever JSON or YAML decoding produces.
type Config map[string]any

// LoadConfigFile reads a configuration file. Files ending in .json are parsed as
// JSON, everything else as YAML. An empty file yields an empty Config.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	cfg := Config{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	return cfg, nil
}

// MergeConfig returns base with override layered on top. Nested maps are merged
// recursively; any other override value replaces the base value. Neither input
// is modified.
func MergeConfig(base, override Config) Config {
	out := make(Config, len(base)+len(override))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range override {
		if bm, ok := asMap(out[k]); ok {
			if om, ok := asMap(v); ok {
				out[k] = map[string]any(MergeConfig(bm, om))
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (Config, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Config(m), true
	case Config:
		return m, true
	}
	return nil, false
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(MergeConfig(nil, t))
	case Config:
		return map[string]any(MergeConfig(nil, t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	}
	return v
}
