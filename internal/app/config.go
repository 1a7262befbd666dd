package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/stencilgrid/internal/publish"
	"github.com/vk/stencilgrid/internal/report"
)

// ColorMode controls ANSI styling of the text report.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ScanMode controls the run-time walk over each grid's padded domain.
type ScanMode string

const (
	// ScanOff skips the walk.
	ScanOff ScanMode = "off"
	// ScanWalk walks every grid on the worker pool and counts tiles.
	ScanWalk ScanMode = "walk"
	// ScanVerify walks every grid and checks that each point is visited
	// exactly once.
	ScanVerify ScanMode = "verify"
)

// DefaultPublishEvent is the event name used when none is configured.
const DefaultPublishEvent = "stencilgrid:report"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // hcl file or directory

	LogFormat string
	LogLevel  string

	Format     report.Format
	OutputPath string // stdout when empty
	Color      ColorMode

	Scan        ScanMode
	WorkerCount int

	HealthcheckPort int

	// Publish is disabled while Publish.URL is empty.
	Publish publish.Options
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = defaultString(strings.ToLower(cfg.LogFormat), "text")
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	cfg.LogLevel = defaultString(strings.ToLower(cfg.LogLevel), "info")
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	f, err := report.ParseFormat(defaultString(string(cfg.Format), string(report.Text)))
	if err != nil {
		return nil, err
	}
	cfg.Format = f

	cfg.Color = ColorMode(defaultString(strings.ToLower(string(cfg.Color)), string(ColorAuto)))
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, fmt.Errorf("invalid color mode %q: must be 'auto', 'always', or 'never'", cfg.Color)
	}

	cfg.Scan = ScanMode(defaultString(strings.ToLower(string(cfg.Scan)), string(ScanVerify)))
	switch cfg.Scan {
	case ScanOff, ScanWalk, ScanVerify:
	default:
		return nil, fmt.Errorf("invalid scan mode %q: must be 'off', 'walk', or 'verify'", cfg.Scan)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid worker count %d: must not be negative", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	if cfg.Publish.URL != "" {
		cfg.Publish.Event = defaultString(cfg.Publish.Event, DefaultPublishEvent)
		p, err := publish.New(cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("invalid publish settings: %w", err)
		}
		cfg.Publish = p.Options()
	}

	return &cfg, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
