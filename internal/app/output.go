package app

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vk/stencilgrid/internal/report"
)

// writeReport renders rep to the output file, or to the app's writer when
// none is configured.
func (a *App) writeReport(rep *report.Report) (err error) {
	w := a.outW
	if a.config.OutputPath != "" {
		f, createErr := os.Create(a.config.OutputPath)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
		a.logger.Debug("Writing report to file.", "path", a.config.OutputPath)
	}

	opts := report.Options{Color: a.useColor(w)}
	return rep.Render(w, a.config.Format, opts)
}

func (a *App) useColor(w io.Writer) bool {
	switch a.config.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
