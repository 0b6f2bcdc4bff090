// Package supernovacli runs local design system exporters against the Supernova
// API and writes their output to disk. It also describes the brand and theme
// structure of a design system and publishes its documentation.
//
// The CLI lives in cmd/supernova; this root package exposes the same operations
// as a Go API so that callers can embed exports in their own tools without
// shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named supernovacli:
//
//	import "github.com/hellenic-development/supernova-cli" // package supernovacli
//
// # Quick start
//
//	result, err := supernovacli.RunLocalExporter(ctx, supernovacli.Options{
//	    AccessToken:    os.Getenv("SUPERNOVA_API_KEY"),
//	    DesignSystemID: "12345",
//	    BrandID:        "brand-default",
//	    ExporterDir:    "./exporters/css",
//	    OutputDir:      "./out",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Report.Files), "files written")
//
// # Pipeline
//
// [RunLocalExporter] loads the exporter package (see [exporter.Loader]), builds
// the export context, runs the exporter once and hands the emitted files to
// [materializer.Materializer]. Nothing is written unless the exporter succeeds
// and every output file resolves; an existing destination file fails the run
// unless [Options.AllowOverridingOutput] is set.
//
// Exporters either run in-process ("builtin" mode, registered in an
// [exporter.Registry]) or as a subprocess speaking JSON over stdin and stdout
// ("process" mode). [DefaultRegistry] contains the css-variables exporter.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. Exporter log lines are not sent to
// the Logger; they are returned in [Result.Logs].
//
//	type myLogger struct{}
//	func (l *myLogger) Infof(f string, a ...any)  { log.Printf("[INFO]  "+f, a...) }
//	func (l *myLogger) Warnf(f string, a ...any)  { log.Printf("[WARN]  "+f, a...) }
//	func (l *myLogger) Errorf(f string, a ...any) { log.Printf("[ERROR] "+f, a...) }
package supernovacli
