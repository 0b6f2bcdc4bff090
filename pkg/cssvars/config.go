package cssvars

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/hellenic-development/supernova-cli/pkg/exporter"
	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// Configuration drives the exporter. Keys match the exporter configuration map
// (config.json plus user overrides).
type Configuration struct {
	// ShowGeneratedFileDisclaimer prepends Disclaimer as a comment to every file.
	ShowGeneratedFileDisclaimer bool   `mapstructure:"showGeneratedFileDisclaimer"`
	Disclaimer                  string `mapstructure:"disclaimer"`
	// GenerateIndexFile emits a file importing every style file.
	GenerateIndexFile bool `mapstructure:"generateIndexFile"`
	// GenerateEmptyFiles emits style files for token types without tokens.
	GenerateEmptyFiles bool `mapstructure:"generateEmptyFiles"`
	// ShowDescriptions writes token descriptions as comments above each variable.
	ShowDescriptions bool `mapstructure:"showDescriptions"`
	// UseReferences emits var(--other) for tokens referencing other tokens instead
	// of the resolved value.
	UseReferences  bool        `mapstructure:"useReferences"`
	TokenNameStyle NameStyle   `mapstructure:"tokenNameStyle"`
	ColorFormat    ColorFormat `mapstructure:"colorFormat"`
	// ColorPrecision is the maximum number of decimals in alpha values.
	ColorPrecision int `mapstructure:"colorPrecision"`
	// Indent is the number of spaces before every variable.
	Indent int `mapstructure:"indent"`
	// TokenPrefixes and StyleFileNames are keyed by token type.
	TokenPrefixes     map[string]string `mapstructure:"tokenPrefixes"`
	StyleFileNames    map[string]string `mapstructure:"styleFileNames"`
	IndexFileName     string            `mapstructure:"indexFileName"`
	BaseStyleFilePath string            `mapstructure:"baseStyleFilePath"`
	BaseIndexFilePath string            `mapstructure:"baseIndexFilePath"`
}

// DefaultConfiguration returns the configuration used for keys the exporter
// configuration does not set.
func DefaultConfiguration() Configuration {
	cfg := Configuration{
		ShowGeneratedFileDisclaimer: true,
		Disclaimer:                  "This file was generated automatically by Supernova.io and should never be manually modified",
		GenerateIndexFile:           true,
		GenerateEmptyFiles:          false,
		ShowDescriptions:            true,
		UseReferences:               true,
		TokenNameStyle:              KebabCase,
		ColorFormat:                 ColorSmartHex,
		ColorPrecision:              3,
		Indent:                      2,
		TokenPrefixes:               make(map[string]string, len(supernova.TokenTypes)),
		StyleFileNames:              make(map[string]string, len(supernova.TokenTypes)),
		IndexFileName:               "base.css",
		BaseStyleFilePath:           "./base",
		BaseIndexFilePath:           "./",
	}

	for _, t := range supernova.TokenTypes {
		name := KebabCase.Apply(string(t))
		cfg.TokenPrefixes[string(t)] = name
		cfg.StyleFileNames[string(t)] = name + ".css"
	}
	return cfg
}

// Decode layers cfg over DefaultConfiguration. Nested maps merge key by key, so
// overriding a single file name keeps the defaults for the others.
func Decode(cfg exporter.Config) (Configuration, error) {
	out := DefaultConfiguration()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Configuration{}, err
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return Configuration{}, fmt.Errorf("invalid css-variables configuration: %w", err)
	}

	if err := out.validate(); err != nil {
		return Configuration{}, fmt.Errorf("invalid css-variables configuration: %w", err)
	}
	return out, nil
}

func (c Configuration) validate() error {
	if !c.TokenNameStyle.valid() {
		return fmt.Errorf("unknown tokenNameStyle %q", c.TokenNameStyle)
	}
	if !c.ColorFormat.valid() {
		return fmt.Errorf("unknown colorFormat %q", c.ColorFormat)
	}
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Indent)
	}
	if c.ColorPrecision < 0 || c.ColorPrecision > 10 {
		return fmt.Errorf("colorPrecision must be between 0 and 10, got %d", c.ColorPrecision)
	}
	if c.GenerateIndexFile && c.IndexFileName == "" {
		return fmt.Errorf("indexFileName must be set when generateIndexFile is enabled")
	}
	for _, t := range supernova.TokenTypes {
		if c.StyleFileNames[string(t)] == "" {
			return fmt.Errorf("styleFileNames has no file name for %s tokens", t)
		}
	}
	return nil
}
