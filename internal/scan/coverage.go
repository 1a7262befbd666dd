package scan

import (
	"context"
	"fmt"

	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/idx"
)

// maxExactCoverage bounds the number of points Coverage tracks one by one.
const maxExactCoverage = 1 << 24

// Coverage walks p and checks that its innermost tiles are non-empty, lie
// inside the range and together cover every point of it exactly once. Ranges
// larger than maxExactCoverage points are only checked for bounds and total
// volume.
func Coverage(ctx context.Context, p *Plan) (Stats, error) {
	logger := ctxlog.FromContext(ctx)
	n := p.Rank()
	vol := p.Volume()
	exact := vol <= maxExactCoverage

	var seen []uint64
	var strides idx.Indices
	if exact {
		seen = make([]uint64, (vol+63)/64)
		s := idx.Idx(1)
		for d := n - 1; d >= 0; d-- {
			strides[d] = s
			s *= p.end[d] - p.begin[d]
		}
	}
	ones := idx.FromConst(1)

	stats, err := p.Walk(ctx, func(sc *idx.ScanIndices) error {
		for d := 0; d < n; d++ {
			if sc.Start[d] >= sc.Stop[d] || sc.Start[d] < p.begin[d] || sc.Stop[d] > p.end[d] {
				return fmt.Errorf("tile [(%s) .. (%s)) is empty or outside the range %s",
					sc.Start.ValString(n), sc.Stop.ValString(n), p)
			}
		}
		if !exact {
			return nil
		}
		pos := sc.Start
		for {
			var at idx.Idx
			for d := 0; d < n; d++ {
				at += (pos[d] - p.begin[d]) * strides[d]
			}
			word, bit := at/64, uint64(1)<<(at%64)
			if seen[word]&bit != 0 {
				return fmt.Errorf("point %s is visited more than once", pos.DimValString(p.names))
			}
			seen[word] |= bit
			if !advance(&pos, &sc.Start, &sc.Stop, &ones, n) {
				return nil
			}
		}
	})
	if err != nil {
		return stats, err
	}
	if stats.Points != vol {
		return stats, fmt.Errorf("tiles cover %d points but the range %s has %d", stats.Points, p, vol)
	}
	logger.Debug("Scan coverage verified.", "range", p.String(), "points", vol, "tiles", stats.Tiles, "exact", exact)
	return stats, nil
}
