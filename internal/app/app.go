package app

import (
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vk/stencilgrid/internal/config"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
	now    func() time.Time

	phase      atomic.Value // string
	httpServer *http.Server
}

// New is the constructor for the main application. The report goes to outW
// (unless an output file is configured) and logs go to logW, each App having
// its own isolated logger.
func New(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
		now:    time.Now,
	}
	a.setPhase("idle")
	return a
}

// Config returns the configuration the app runs with.
func (a *App) Config() *Config { return a.config }

func (a *App) setPhase(p string) {
	a.phase.Store(p)
	a.logger.Debug("Phase changed.", "phase", p)
}

// Phase returns the pipeline phase the app is in.
func (a *App) Phase() string { return a.phase.Load().(string) }
