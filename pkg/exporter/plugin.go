package exporter

import (
	"context"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// Data is the version data handed to an exporter, already scoped to the selected
// brand and with the selected theme applied.
type Data struct {
	Tokens      []supernova.Token      `json:"tokens"`
	TokenGroups []supernova.TokenGroup `json:"tokenGroups"`
	Brands      []supernova.Brand      `json:"brands"`
	Themes      []supernova.Theme      `json:"themes"`
}

// Input is everything an exporter receives for one run. Exporters log through
// Context.Logger.
type Input struct {
	Context       ExportContext `json:"context"`
	Configuration Config        `json:"configuration"`
	Data          Data          `json:"data"`
}

// Plugin is the capability boundary around exporter code: the host calls Invoke
// exactly once per run and gets back the declared files.
type Plugin interface {
	Invoke(ctx context.Context, in Input) ([]EmittedFile, error)
}

// Func adapts an ordinary function to the Plugin interface.
type Func func(ctx context.Context, in Input) ([]EmittedFile, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, in Input) ([]EmittedFile, error) {
	return f(ctx, in)
}
