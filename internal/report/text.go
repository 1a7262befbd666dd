package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

var (
	headingStyle = color.New(color.FgCyan, color.OpBold)
	headerStyle  = color.New(color.OpBold)
	okStyle      = color.New(color.FgGreen)
	failStyle    = color.New(color.FgRed)
)

type textWriter struct {
	b     strings.Builder
	color bool
}

func (t *textWriter) style(s color.Style, text string) string {
	if !t.color {
		return text
	}
	return fmt.Sprintf(color.FullColorTpl, s.String(), text)
}

func (t *textWriter) heading(title string) {
	if t.b.Len() > 0 {
		t.b.WriteByte('\n')
	}
	t.b.WriteString(t.style(headingStyle, title))
	t.b.WriteByte('\n')
}

// table writes rows with columns padded to their display width. The first
// row is the header when header is set.
func (t *textWriter) table(rows [][]string, header bool) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for r, row := range rows {
		t.b.WriteString("  ")
		for i, cell := range row {
			if i < len(row)-1 {
				cell = runewidth.FillRight(cell, widths[i]+2)
			}
			if header && r == 0 {
				cell = t.style(headerStyle, cell)
			}
			t.b.WriteString(cell)
		}
		t.b.WriteByte('\n')
	}
}

// dimVals renders m in the order of names, skipping missing dims.
func dimVals(names []string, m map[string]int) string {
	var parts []string
	for _, n := range names {
		if v, ok := m[n]; ok {
			parts = append(parts, n+"="+strconv.Itoa(v))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (r *Report) text(opts Options) string {
	t := &textWriter{color: opts.Color}

	title := "Solution " + r.Solution
	if r.Description != "" {
		title += ": " + r.Description
	}
	t.heading(title)
	t.table([][]string{{"generated", r.GeneratedAt}}, false)

	d := r.Dimensions
	t.heading("Dimensions")
	fold := dimVals(d.Domain, d.Fold)
	if fold != "-" {
		fold += fmt.Sprintf(" (vector length %d)", d.VecLen)
	}
	t.table([][]string{
		{"step", orDash(d.Step)},
		{"domain", orDash(strings.Join(d.Domain, ", "))},
		{"misc", orDash(strings.Join(d.Misc, ", "))},
		{"fold", fold},
		{"cluster", dimVals(d.Domain, d.Cluster)},
	}, false)

	t.heading("Grids")
	rows := [][]string{{"NAME", "DIMS", "FOLDABLE", "STEP ALLOC", "HALO LEFT", "HALO RIGHT"}}
	for _, g := range r.Grids {
		foldable := "no"
		if g.Foldable {
			foldable = fmt.Sprintf("yes (%d)", g.FoldableDims)
		}
		alloc := strconv.Itoa(g.StepAlloc)
		if g.DynamicStepAlloc {
			alloc += " (dynamic)"
		}
		name := g.Name
		if g.Scratch {
			name += " (scratch)"
		}
		rows = append(rows, []string{
			name,
			orDash(strings.Join(g.Dims, ", ")),
			foldable,
			alloc,
			dimVals(g.Dims, g.HaloLeft),
			dimVals(g.Dims, g.HaloRight),
		})
	}
	t.table(rows, true)

	if len(r.Packs) > 0 {
		t.heading("Packs")
		for _, p := range r.Packs {
			fmt.Fprintf(&t.b, "  %s\n", p.Name)
			for _, eq := range p.Equations {
				fmt.Fprintf(&t.b, "    %s: %s\n", eq.Name, eq.Text)
			}
		}
	}

	if len(r.Scans) > 0 {
		t.heading("Scans")
		rows := [][]string{{"GRID", "RANGE", "TILES", "POINTS", "COVERAGE"}}
		for _, s := range r.Scans {
			tiles := make([]string, len(s.Tiles))
			for i, n := range s.Tiles {
				tiles[i] = strconv.FormatInt(n, 10)
			}
			status := t.style(failStyle, "failed")
			if s.Verified {
				status = t.style(okStyle, "ok")
			}
			rows = append(rows, []string{s.Grid, s.Range, strings.Join(tiles, "/"), strconv.FormatInt(s.Points, 10), status})
		}
		t.table(rows, true)
	}
	return t.b.String()
}
