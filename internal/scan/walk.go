package scan

import (
	"context"
	"runtime"
	"sync"

	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/idx"
	"golang.org/x/sync/errgroup"
)

// Visitor is called for every innermost tile. sc is only valid for the
// duration of the call.
type Visitor func(sc *idx.ScanIndices) error

// Stats counts the tiles visited on each level and the points covered by
// the innermost ones.
type Stats struct {
	Tiles  []int64
	Points int64
}

func (s *Stats) add(o Stats) {
	if len(s.Tiles) < len(o.Tiles) {
		s.Tiles = append(s.Tiles, make([]int64, len(o.Tiles)-len(s.Tiles))...)
	}
	for i, n := range o.Tiles {
		s.Tiles[i] += n
	}
	s.Points += o.Points
}

// walker owns one ScanIndices per level and is used by a single goroutine.
type walker struct {
	ctx   context.Context
	p     *Plan
	scs   []idx.ScanIndices
	stats Stats
	visit Visitor
}

func (p *Plan) newWalker(ctx context.Context, visit Visitor) *walker {
	w := &walker{
		ctx:   ctx,
		p:     p,
		scs:   make([]idx.ScanIndices, len(p.levels)),
		stats: Stats{Tiles: make([]int64, len(p.levels))},
		visit: visit,
	}
	for i := range w.scs {
		w.scs[i] = idx.NewScanIndices()
	}
	return w
}

// root is the pseudo level above the outermost one, processing the whole range.
func (p *Plan) root() idx.ScanIndices {
	sc := idx.NewScanIndices()
	sc.Begin, sc.End = p.begin, p.end
	sc.Start, sc.Stop = p.begin, p.end
	return sc
}

// Walk visits every innermost tile of p in order on the calling goroutine.
func (p *Plan) Walk(ctx context.Context, visit Visitor) (Stats, error) {
	w := p.newWalker(ctx, visit)
	root := p.root()
	err := w.walk(0, &root)
	return w.stats, err
}

// WalkParallel hands the outermost tiles to at most workers goroutines, each
// walking the inner levels with its own ScanIndices. visit must be safe for
// concurrent use. A non-positive workers uses GOMAXPROCS. The first error
// stops the dispatch of new tiles and is returned.
func (p *Plan) WalkParallel(ctx context.Context, workers int, visit Visitor) (Stats, error) {
	logger := ctxlog.FromContext(ctx)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger.Debug("Parallel scan started.", "workers", workers, "levels", len(p.levels), "range", p.String())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	total := Stats{Tiles: make([]int64, len(p.levels))}

	root := p.root()
	top := idx.NewScanIndices()
	p.setup(&top, 0, &root)
	dispatchErr := p.tiles(&top, func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		tile := top
		g.Go(func() error {
			w := p.newWalker(gctx, visit)
			err := w.visitTile(0, &tile)
			mu.Lock()
			total.add(w.stats)
			mu.Unlock()
			return err
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	if dispatchErr != nil {
		return total, dispatchErr
	}
	logger.Debug("Parallel scan finished.", "tiles", total.Tiles, "points", total.Points)
	return total, nil
}

// walk tiles level lvl within the range outer is processing.
func (w *walker) walk(lvl int, outer *idx.ScanIndices) error {
	sc := &w.scs[lvl]
	w.p.setup(sc, lvl, outer)
	return w.p.tiles(sc, func() error { return w.visitTile(lvl, sc) })
}

// visitTile descends from the current tile of level lvl into the next
// level or, on the innermost level, calls the visitor.
func (w *walker) visitTile(lvl int, sc *idx.ScanIndices) error {
	w.stats.Tiles[lvl]++
	if lvl+1 < len(w.scs) {
		return w.walk(lvl+1, sc)
	}
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.stats.Points += w.p.volume(sc.Start, sc.Stop)
	return w.visit(sc)
}

// setup narrows sc to the range outer is processing and resolves the tile
// and group sizes of level lvl against it.
func (p *Plan) setup(sc *idx.ScanIndices, lvl int, outer *idx.ScanIndices) {
	sc.InitFromOuter(outer)
	lv := p.levels[lvl]
	for d := range p.names {
		step := lv.Step[d]
		if step <= 0 {
			step = max(sc.End[d]-sc.Begin[d], 1)
		}
		group := lv.GroupSize[d]
		if group <= 0 {
			group = step
		}
		sc.Step[d] = min(step, group)
		sc.GroupSize[d] = group
	}
}

// tiles moves sc over every tile of its level and calls fn for each one.
// Start, Stop and Index describe the current tile during the call.
func (p *Plan) tiles(sc *idx.ScanIndices, fn func() error) error {
	n := len(p.names)
	for d := 0; d < n; d++ {
		if sc.Begin[d] >= sc.End[d] {
			return nil
		}
	}

	var gStop idx.Indices
	gStart := sc.Begin
	for {
		for d := 0; d < n; d++ {
			gStop[d] = min(gStart[d]+sc.GroupSize[d], sc.End[d])
		}
		t := gStart
		for {
			for d := 0; d < n; d++ {
				sc.Start[d] = t[d]
				sc.Stop[d] = min(t[d]+sc.Step[d], gStop[d])
				sc.Index[d] = (t[d] - sc.Begin[d]) / sc.Step[d]
			}
			if err := fn(); err != nil {
				return err
			}
			if !advance(&t, &gStart, &gStop, &sc.Step, n) {
				break
			}
		}
		if !advance(&gStart, &sc.Begin, &sc.End, &sc.GroupSize, n) {
			return nil
		}
	}
}

// advance moves pos to the next point of the grid lo + k*stride below hi in
// the first n dims, last dim fastest. It reports false after the last point.
func advance(pos, lo, hi, stride *idx.Indices, n int) bool {
	for d := n - 1; d >= 0; d-- {
		pos[d] += stride[d]
		if pos[d] < hi[d] {
			return true
		}
		pos[d] = lo[d]
	}
	return false
}
