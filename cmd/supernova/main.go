package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	supernovacli "github.com/hellenic-development/supernova-cli"
	"github.com/hellenic-development/supernova-cli/internal/config"
	"github.com/hellenic-development/supernova-cli/internal/logging"
	"github.com/hellenic-development/supernova-cli/pkg/exporter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	a.close()

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	debug      bool

	cfg  *config.Config
	logs *logging.Manager
	out  io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "supernova",
		Short:             "Run Supernova exporters locally",
		Long:              "A tool to run design system exporters against Supernova design systems locally, inspect their brands and themes, and publish their documentation",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config.yaml (default: $SUPERNOVA_CONFIG_DIR, ~/.config/supernova or the current directory)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Print debug logs and pass the debug flag to exporters")

	versionCmd := &cobra.Command{
		Use:               "version",
		Short:             "Print the version number",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "supernova version %s\n", supernovacli.Version)
		},
	}

	rootCmd.AddCommand(
		a.runLocalExporterCmd(),
		a.describeDesignSystemCmd(),
		a.publishDocumentationCmd(),
		versionCmd,
	)
	return rootCmd
}

// setup loads the configuration and the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = cmd.OutOrStdout()

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	var console io.Writer
	if a.debug {
		console = cmd.ErrOrStderr()
	}
	a.logs = logging.NewManager(console)

	level := logging.ParseLevelOrDefault(a.cfg.LogLevel)
	if a.debug {
		level = slog.LevelDebug
	}
	if err := a.logs.Upgrade(a.cfg.LogFile, level); err != nil {
		a.logger().Warnf("File logging disabled: %v", err)
	}
	return nil
}

func (a *app) close() {
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

func (a *app) logger() *cliLogger {
	l := &cliLogger{out: a.out, log: slog.New(slog.DiscardHandler)}
	if l.out == nil {
		l.out = os.Stdout
	}
	if a.logs != nil {
		l.log = a.logs.Logger()
	}
	return l
}

// replay prints exporter log lines after the run.
func (a *app) replay(lines []exporter.LogLine) {
	gray := color.New(color.FgHiBlack)
	log := a.logger().log.With("source", "exporter")

	for _, line := range lines {
		msg := supernovacli.UserMessage(line.Message)
		switch line.Level {
		case exporter.LevelDebug:
			log.Debug(msg)
			if !a.debug {
				continue
			}
		case exporter.LevelWarn:
			log.Warn(msg)
		case exporter.LevelError:
			log.Error(msg)
		default:
			log.Info(msg)
		}
		gray.Fprintf(a.out, "[user] %s\n", msg)
	}
}

// cliLogger implements supernovacli.Logger with colored terminal output and
// mirrors every message to the structured log.
type cliLogger struct {
	out io.Writer
	log *slog.Logger
}

func (l *cliLogger) Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log.Info(msg)
	color.New(color.FgYellow).Fprintln(l.out, msg)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log.Warn(msg)
	color.New(color.FgYellow).Fprintln(l.out, "⚠ "+msg)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log.Error(msg)
	color.New(color.FgRed).Fprintln(l.out, "✗ "+msg)
}
