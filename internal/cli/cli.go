package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/stencilgrid/internal/app"
	"github.com/vk/stencilgrid/internal/publish"
	"github.com/vk/stencilgrid/internal/report"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("stencilgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
StencilGrid - halo, fold and scan analysis for stencil solutions.

Usage:
  stencilgrid [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	formats := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		formats[i] = string(f)
	}

	gridFlag := flagSet.String("grid", "", "Path to the solution file or directory.")
	gFlag := flagSet.String("g", "", "Path to the solution file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	formatFlag := flagSet.String("format", string(report.Text), "Report format. Options: "+strings.Join(formats, ", ")+".")
	outputFlag := flagSet.String("output", "", "Write the report to this file instead of stdout.")
	colorFlag := flagSet.String("color", string(app.ColorAuto), "Colour the text report. Options: 'auto', 'always', 'never'.")
	scanFlag := flagSet.String("scan", string(app.ScanVerify), "Run-time walk over each grid. Options: 'off', 'walk', 'verify'.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent workers for the parallel walk. 0 uses all CPUs.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	publishURLFlag := flagSet.String("publish-url", "", "socket.io server to publish the report to. Empty disables publishing.")
	publishNSFlag := flagSet.String("publish-namespace", "/", "socket.io namespace to publish to.")
	publishEventFlag := flagSet.String("publish-event", app.DefaultPublishEvent, "Event name the report is emitted as.")
	publishAckFlag := flagSet.String("publish-ack", "", "Event to wait for after publishing. Empty does not wait.")
	publishTimeoutFlag := flagSet.Duration("publish-timeout", publish.DefaultTimeout, "Timeout for connecting and waiting for the acknowledgement.")
	insecureFlag := flagSet.Bool("publish-insecure", false, "Skip TLS certificate verification when publishing.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *gridFlag != "" {
		path = *gridFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", path)

	if path == "" {
		slog.Debug("No grid path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GridPath:        path,
		LogFormat:       *logFormatFlag,
		LogLevel:        *logLevelFlag,
		Format:          report.Format(strings.ToLower(*formatFlag)),
		OutputPath:      *outputFlag,
		Color:           app.ColorMode(*colorFlag),
		Scan:            app.ScanMode(*scanFlag),
		WorkerCount:     *workersFlag,
		HealthcheckPort: *healthPortFlag,
		Publish: publish.Options{
			URL:                *publishURLFlag,
			Namespace:          *publishNSFlag,
			Event:              *publishEventFlag,
			AckEvent:           *publishAckFlag,
			Timeout:            *publishTimeoutFlag,
			InsecureSkipVerify: *insecureFlag,
		},
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
