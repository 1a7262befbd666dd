// Package scan walks a domain in nested tiles, one idx.ScanIndices per loop
// level.
//
// A Plan holds the range of the walk and the tile and group sizes of every
// level. The outermost level tiles the whole range; each inner level tiles
// the tile its outer level is currently processing, taking its range from
// the outer level through ScanIndices.InitFromOuter. Within a level, tiles
// are visited group by group, and both groups and tiles are ordered with
// the last dimension varying fastest.
package scan

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/stencilgrid/internal/idx"
	"github.com/vk/stencilgrid/internal/tuple"
)

// Level is the tiling shape of one loop level, one slot per plan dim. A
// zero Step means one tile spans the whole range; a zero GroupSize means
// groups of one tile.
type Level struct {
	Step      idx.Indices
	GroupSize idx.Indices
}

// Plan is an immutable description of a tiled walk.
type Plan struct {
	names  []string
	begin  idx.Indices
	end    idx.Indices
	levels []Level
}

// NewPlan returns a plan over [0, size) in every dim of domain. tiles holds
// the tile sizes per level, outermost first, and groups the optional group
// sizes of the leading levels. Dims missing from a level take the defaults
// described on Level. With no tiles the plan has a single untiled level.
func NewPlan(domain tuple.IntTuple, tiles, groups []tuple.IntTuple) (*Plan, error) {
	if domain.IsEmpty() {
		return nil, errors.New("scan domain has no dimensions")
	}
	if domain.Size() > idx.MaxIdxs {
		return nil, fmt.Errorf("scan domain has %d dimensions, at most %d are supported", domain.Size(), idx.MaxIdxs)
	}
	if len(groups) > len(tiles) {
		return nil, fmt.Errorf("%d group sizes given for %d tiling levels", len(groups), len(tiles))
	}
	for _, e := range domain.Entries() {
		if e.Val < 0 {
			return nil, fmt.Errorf("domain size for %q must not be negative, got %d", e.Name, e.Val)
		}
	}

	p := &Plan{names: domain.Names(), end: idx.FromTuple(domain)}
	if len(tiles) == 0 {
		p.levels = []Level{{}}
		return p, nil
	}
	for i, t := range tiles {
		var lv Level
		var err error
		if lv.Step, err = p.indicesFor(t, "tile"); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		if i < len(groups) {
			if lv.GroupSize, err = p.indicesFor(groups[i], "group"); err != nil {
				return nil, fmt.Errorf("level %d: %w", i, err)
			}
		}
		for d, name := range p.names {
			step, group := lv.Step[d], lv.GroupSize[d]
			if step > 0 && group > 0 && group%step != 0 {
				return nil, fmt.Errorf("level %d: group size %d for %q is not a multiple of the tile size %d", i, group, name, step)
			}
		}
		p.levels = append(p.levels, lv)
	}
	return p, nil
}

func (p *Plan) indicesFor(t tuple.IntTuple, what string) (idx.Indices, error) {
	var out idx.Indices
	for _, e := range t.Entries() {
		d := slices.Index(p.names, e.Name)
		if d < 0 {
			return out, fmt.Errorf("%s size for unknown dimension %q", what, e.Name)
		}
		if e.Val < 1 {
			return out, fmt.Errorf("%s size for %q must be at least 1, got %d", what, e.Name, e.Val)
		}
		out[d] = idx.Idx(e.Val)
	}
	return out, nil
}

// Extend returns a copy of p whose range is widened by left below the
// beginning and right past the end. Names that are not plan dims are
// ignored, so a grid's halo can be passed as is.
func (p *Plan) Extend(left, right tuple.IntTuple) *Plan {
	out := *p
	out.levels = slices.Clone(p.levels)
	for d, name := range p.names {
		out.begin[d] -= idx.Idx(left.Get(name))
		out.end[d] += idx.Idx(right.Get(name))
	}
	return &out
}

// Dims returns the plan dims in slot order.
func (p *Plan) Dims() []string { return slices.Clone(p.names) }

// Rank returns the number of plan dims.
func (p *Plan) Rank() int { return len(p.names) }

// Begin returns the first index of the range.
func (p *Plan) Begin() idx.Indices { return p.begin }

// End returns the index one past the range.
func (p *Plan) End() idx.Indices { return p.end }

// NumLevels returns the number of loop levels.
func (p *Plan) NumLevels() int { return len(p.levels) }

// Levels returns the tiling shape of every level, outermost first.
func (p *Plan) Levels() []Level { return slices.Clone(p.levels) }

// Volume returns the number of points in the range.
func (p *Plan) Volume() int64 { return p.volume(p.begin, p.end) }

func (p *Plan) volume(start, stop idx.Indices) int64 {
	v := int64(1)
	for d := range p.names {
		if stop[d] <= start[d] {
			return 0
		}
		v *= stop[d] - start[d]
	}
	return v
}

// String renders the range like "x=[-1, 65), y=[0, 64)".
func (p *Plan) String() string {
	var b strings.Builder
	for d, name := range p.names {
		if d > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=[%d, %d)", name, p.begin[d], p.end[d])
	}
	return b.String()
}
