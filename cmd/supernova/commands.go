package main

import (
	"errors"
	"fmt"
	"time"

	supernovacli "github.com/hellenic-development/supernova-cli"
	"github.com/hellenic-development/supernova-cli/internal/config"
	"github.com/hellenic-development/supernova-cli/pkg/supernova"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// connection holds the flags every command needs to reach a design system.
type connection struct {
	apiKey         string
	designSystemID string
	environment    string
	apiURL         string
	proxyURL       string
}

// register adds the connection flags. The API environment flag is named
// "environment" where the command has no other use for it and
// "api-environment" otherwise.
func (c *connection) register(cmd *cobra.Command, designSystemUsage, environmentFlag string) {
	cmd.Flags().StringVar(&c.apiKey, "api-key", "", "API key to use for accessing Supernova instance (default: $SUPERNOVA_API_KEY)")
	cmd.Flags().StringVar(&c.designSystemID, "design-system-id", "", designSystemUsage)
	cmd.Flags().StringVar(&c.environment, environmentFlag, "", "Environment to target: production, development, staging or demo (default: config or production)")
	cmd.Flags().StringVar(&c.apiURL, "api-url", "", "Override the API base URL derived from the environment")
	cmd.Flags().StringVar(&c.proxyURL, "proxy-url", "", "Proxy for API calls and remote downloads (default: config, then $HTTPS_PROXY)")
	cmd.MarkFlagRequired("design-system-id")
}

// options merges the flags over the loaded configuration.
func (a *app) options(c *connection) (supernovacli.Options, error) {
	merged := *a.cfg
	if c.apiKey != "" {
		merged.APIKey = c.apiKey
	}
	if c.environment != "" {
		merged.Environment = c.environment
	}
	if c.apiURL != "" {
		merged.APIURL = c.apiURL
	}
	if c.proxyURL != "" {
		merged.ProxyURL = c.proxyURL
	}
	if err := config.Validate(&merged); err != nil {
		return supernovacli.Options{}, err
	}
	if merged.APIKey == "" {
		return supernovacli.Options{}, errors.New("API key must be provided with --api-key or SUPERNOVA_API_KEY")
	}

	env, err := supernova.ParseEnvironment(merged.Environment)
	if err != nil {
		return supernovacli.Options{}, err
	}

	return supernovacli.Options{
		AccessToken:    merged.APIKey,
		DesignSystemID: c.designSystemID,
		Environment:    env,
		APIURL:         merged.APIURL,
		ProxyURL:       merged.ProxyURL,
		RateLimit:      merged.RateLimit,
		Concurrency:    merged.Concurrency,
		Debug:          a.debug,
		Logger:         a.logger(),
		Structured:     a.logs.Logger(),
	}, nil
}

func (a *app) runLocalExporterCmd() *cobra.Command {
	var (
		conn                  connection
		exporterDir           string
		outputDir             string
		brandID               string
		themeID               string
		configPath            string
		allowOverridingOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run-local-exporter",
		Short: "Run a local exporter package and write its output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&conn)
			if err != nil {
				return err
			}
			opts.ExporterDir = exporterDir
			opts.OutputDir = outputDir
			opts.BrandID = brandID
			opts.ThemeID = themeID
			opts.ConfigPath = configPath
			opts.AllowOverridingOutput = allowOverridingOutput

			res, err := supernovacli.RunLocalExporter(cmd.Context(), opts)
			if res != nil {
				a.replay(res.Logs)
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			color.New(color.FgGreen).Fprintf(a.out, "Export finished successfully: %d file(s) written to %s\n",
				len(res.Report.Files), res.Report.Root)
			return nil
		},
	}

	conn.register(cmd, "Design system to export from", "environment")
	cmd.Flags().StringVar(&exporterDir, "exporter-dir", "", "Path to exporter package")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Path to output folder")
	cmd.Flags().StringVar(&brandID, "brand-id", "", "Brand to export. Required when the exporter uses brands")
	cmd.Flags().StringVar(&themeID, "theme-id", "", "Theme to export. Only used when the exporter uses themes")
	cmd.Flags().StringVar(&configPath, "config-path", "", "Path to a JSON or YAML file overriding the exporter configuration")
	cmd.Flags().BoolVar(&allowOverridingOutput, "allow-overriding-output", false, "Replace files that already exist in the output folder")
	cmd.MarkFlagRequired("exporter-dir")
	cmd.MarkFlagRequired("output-dir")

	return cmd
}

func (a *app) describeDesignSystemCmd() *cobra.Command {
	var conn connection

	cmd := &cobra.Command{
		Use:   "describe-design-system",
		Short: "Describe the brands and themes of a design system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&conn)
			if err != nil {
				return err
			}

			d, err := supernovacli.DescribeDesignSystem(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, d.String())
			return nil
		},
	}

	conn.register(cmd, "Design system to describe structure of", "api-environment")
	return cmd
}

func (a *app) publishDocumentationCmd() *cobra.Command {
	var (
		conn    connection
		target  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "publish-documentation",
		Short: "Publish the documentation of a design system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&conn)
			if err != nil {
				return err
			}

			job, err := supernovacli.PublishDocumentation(cmd.Context(), opts, supernovacli.PublishOptions{
				Environment: supernova.DocumentationEnvironment(target),
				Timeout:     timeout,
			})
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen)
			switch job.Status {
			case supernova.PublishQueued:
				green.Fprintln(a.out, "Documentation queued for publishing")
			case supernova.PublishSuccess:
				green.Fprintln(a.out, "Documentation published")
			case supernova.PublishInProgress:
				color.New(color.FgYellow).Fprintln(a.out, "Skipped documentation publish as another build is already in progress")
			case supernova.PublishTimeout:
				return fmt.Errorf("documentation build %s did not finish within %s", job.ID, timeout)
			case supernova.PublishFailure:
				return fmt.Errorf("documentation not published: %s", job.Message)
			default:
				return errors.New("unknown error: documentation not published")
			}
			return nil
		},
	}

	conn.register(cmd, "Design system to publish the documentation", "api-environment")
	cmd.Flags().StringVar(&target, "environment", string(supernova.DocumentationLive), "Environment to use for publishing: Live or Preview")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the documentation build; 0 returns once it is queued")

	return cmd
}
