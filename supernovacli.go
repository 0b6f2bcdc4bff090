package supernovacli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hellenic-development/supernova-cli/pkg/cssvars"
	"github.com/hellenic-development/supernova-cli/pkg/exporter"
	"github.com/hellenic-development/supernova-cli/pkg/materializer"
	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// Version is the version of the CLI and library.
const Version = "1.0.0"

// APIVersion is the API version fragment appended to environment base URLs.
const APIVersion = "v2"

// Options configures a pipeline run. Connection fields are shared by every
// operation; exporter fields are only read by RunLocalExporter.
type Options struct {
	AccessToken    string
	DesignSystemID string
	VersionID      string                // empty = the writable version
	Environment    supernova.Environment // empty = production
	APIURL         string                // overrides Environment
	RateLimit      float64               // API requests per second, 0 = unlimited
	HTTPClient     *http.Client          // nil = default clients
	ProxyURL       string                // empty = HTTP_PROXY/HTTPS_PROXY; ignored with HTTPClient

	ExporterDir           string
	OutputDir             string
	BrandID               string
	ThemeID               string
	ConfigPath            string // exporter configuration overrides (JSON or YAML)
	AllowOverridingOutput bool
	ExecutionEnvironment  exporter.ExecutionEnvironment // empty = ci
	Concurrency           int                           // 0 = materializer.DefaultConcurrency
	Debug                 bool
	Registry              *exporter.Registry // nil = DefaultRegistry()

	Logger     Logger       // nil = no logging
	Structured *slog.Logger // nil = discard; receives materializer progress
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the outcome of RunLocalExporter.
type Result struct {
	DesignSystem *supernova.DesignSystem
	Version      *supernova.Version
	Context      exporter.ExportContext
	Logs         []exporter.LogLine   // exporter log lines, in order
	Report       *materializer.Report // nil unless the output was written
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

// DefaultRegistry returns a registry holding the bundled builtin exporters.
func DefaultRegistry() *exporter.Registry {
	r := exporter.NewRegistry()
	if err := cssvars.Register(r); err != nil {
		panic(err)
	}
	return r
}

// Client builds the API client described by the connection options.
func (o *Options) Client() (*supernova.Client, error) {
	if o.AccessToken == "" {
		return nil, errors.New("API key must not be empty")
	}

	baseURL := o.APIURL
	if baseURL == "" {
		env := o.Environment
		if env == "" {
			env = supernova.Production
		}
		var err error
		baseURL, err = supernova.EnvironmentAPI(env, APIVersion)
		if err != nil {
			return nil, err
		}
	}

	clientOpts := []supernova.ClientOption{supernova.WithRateLimit(o.RateLimit)}
	switch {
	case o.HTTPClient != nil:
		clientOpts = append(clientOpts, supernova.WithHTTPClient(o.HTTPClient))
	case o.ProxyURL != "":
		proxy, err := supernova.ParseProxyURL(o.ProxyURL)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, supernova.WithProxy(proxy))
	}
	return supernova.NewClient(o.AccessToken, baseURL, clientOpts...), nil
}

// downloadClient returns the client for copy_file_remote downloads, or nil for
// the materializer default.
func (o *Options) downloadClient() (*http.Client, error) {
	if o.HTTPClient != nil || o.ProxyURL == "" {
		return o.HTTPClient, nil
	}
	proxy, err := supernova.ParseProxyURL(o.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &http.Client{Timeout: materializer.DefaultDownloadTimeout, Transport: supernova.NewTransport(proxy)}, nil
}

// connect resolves the design system and the version to work on.
func (o *Options) connect(ctx context.Context, client *supernova.Client) (*supernova.DesignSystem, *supernova.Version, error) {
	if o.DesignSystemID == "" {
		return nil, nil, errors.New("design system ID must not be empty")
	}

	o.logInfo("Fetching design system %s...", o.DesignSystemID)
	ds, err := client.DesignSystem(ctx, o.DesignSystemID)
	if err != nil {
		return nil, nil, fmt.Errorf("design system %s not found or not available under provided API key: %w", o.DesignSystemID, err)
	}

	if o.VersionID != "" {
		versions, err := client.Versions(ctx, o.DesignSystemID)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch versions: %w", err)
		}
		for i := range versions {
			if versions[i].ID == o.VersionID {
				return ds, &versions[i], nil
			}
		}
		return nil, nil, fmt.Errorf("version %s not found in design system %s", o.VersionID, o.DesignSystemID)
	}

	version, err := client.ActiveVersion(ctx, o.DesignSystemID)
	if err != nil {
		return nil, nil, err
	}
	return ds, version, nil
}

// RunLocalExporter loads the exporter package in ExporterDir, runs it against the
// design system and writes its output into OutputDir.
//
// When the exporter itself fails the returned Result is non-nil and carries the
// exporter's log lines next to an error wrapping exporter.ErrPluginExecutionFailed.
func RunLocalExporter(ctx context.Context, opts Options) (*Result, error) {
	if opts.ExporterDir == "" {
		return nil, errors.New("exporter directory must not be empty")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory must not be empty")
	}
	if opts.ExecutionEnvironment == "" {
		opts.ExecutionEnvironment = exporter.EnvCI
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}

	client, err := opts.Client()
	if err != nil {
		return nil, err
	}

	// Local inputs first, so a broken package fails before any network traffic.
	opts.logInfo("Loading exporter from %s...", opts.ExporterDir)
	plugin, err := exporter.NewLoader(opts.Registry).Load(opts.ExporterDir, opts.ExecutionEnvironment)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Exporter: %s (%s mode)", plugin.Manifest.DisplayName(), plugin.Manifest.Mode)

	var overrides exporter.Config
	if opts.ConfigPath != "" {
		overrides, err = exporter.LoadConfigFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", materializer.ErrDestinationInvalid, opts.OutputDir, err)
	}

	ds, version, err := opts.connect(ctx, client)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Design system: %s, version: %s", ds.Name, version.ID)

	sink := exporter.NewLogSink()
	ec, err := exporter.BuildContext(ctx, client, exporter.ContextRequest{
		AccessToken:    opts.AccessToken,
		APIURL:         client.BaseURL(),
		DesignSystemID: ds.ID,
		VersionID:      version.ID,
		BrandID:        opts.BrandID,
		ThemeID:        opts.ThemeID,
		ExportPath:     outputDir,
		Debug:          opts.Debug,
		Environment:    opts.ExecutionEnvironment,
		Sink:           sink,
		UsesBrands:     plugin.Manifest.UsesBrands,
		UsesThemes:     plugin.Manifest.UsesThemes,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{DesignSystem: ds, Version: version, Context: ec}

	opts.logInfo("Running exporter...")
	run, err := exporter.NewEngine(client).Run(ctx, plugin, ec, overrides)
	if err != nil {
		return nil, err
	}
	result.Logs = run.Logs
	if !run.Success() {
		return result, run.Err
	}
	opts.logInfo("Exporter produced %d file(s)", len(run.Files))

	matOpts := []materializer.Option{
		materializer.WithOverwrite(opts.AllowOverridingOutput),
		materializer.WithSourceRoot(plugin.Dir),
	}
	if opts.Concurrency > 0 {
		matOpts = append(matOpts, materializer.WithConcurrency(opts.Concurrency))
	}
	if hc, err := opts.downloadClient(); err != nil {
		return result, err
	} else if hc != nil {
		matOpts = append(matOpts, materializer.WithHTTPClient(hc))
	}
	if opts.Structured != nil {
		matOpts = append(matOpts, materializer.WithLogger(opts.Structured))
	}

	opts.logInfo("Writing output to %s...", outputDir)
	report, err := materializer.New(outputDir, matOpts...).Materialize(ctx, run.Files)
	if err != nil {
		return result, err
	}
	result.Report = report

	return result, nil
}

// UserMessage prepares an exporter log message for display: surrounding
// whitespace and a single pair of surrounding double quotes are removed.
func UserMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = strings.TrimPrefix(msg, `"`)
	msg = strings.TrimSuffix(msg, `"`)
	return msg
}
