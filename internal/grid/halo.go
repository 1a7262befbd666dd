package grid

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/tuple"
)

// Side selects the low or high edge of a dimension.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both sides, left first.
var Sides = [...]Side{Left, Right}

// String implements fmt.Stringer.
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// HaloKey identifies one halo entry: the pack that needs it, the side and
// the step offset of the accesses (0 when the grid has no step dim).
type HaloKey struct {
	Pack string
	Side Side
	Step int
}

func compareHaloKeys(a, b HaloKey) int {
	return cmp.Or(
		cmp.Compare(a.Pack, b.Pack),
		cmp.Compare(a.Side, b.Side),
		cmp.Compare(a.Step, b.Step),
	)
}

// haloMap holds the widest absolute offset per dim for each key.
type haloMap map[HaloKey]tuple.IntTuple

func (h haloMap) sortedKeys() []HaloKey {
	return slices.SortedFunc(maps.Keys(h), compareHaloKeys)
}

// widen raises each dim of the entry for key to at least the values in t.
func (h haloMap) widen(key HaloKey, t tuple.IntTuple) {
	cur := h[key]
	h[key] = cur.MakeUnionWith(t).MaxElements(t, false)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// UpdateHalo records the halo needed by one access made from pack. offsets
// holds the constant offset of the access in each dim. The step-dim offset
// only selects the entry; zero offsets need no halo. A step offset is only
// recorded when offsets has one, so u(2*t, x) does not count as step 0.
func (g *Grid) UpdateHalo(pack string, offsets tuple.IntTuple) {
	for _, e := range offsets.Entries() {
		if !g.hasDim(e.Name) {
			panic(fmt.Sprintf("grid %q: offset in unknown dimension %q", g.name, e.Name))
		}
		if e.Val < -expr.MaxIndex || e.Val > expr.MaxIndex {
			panic(fmt.Sprintf("grid %q: offset %d in dimension %q is out of range", g.name, e.Val, e.Name))
		}
	}

	stepName := ""
	step := 0
	if sd := g.StepDim(); sd != nil {
		stepName = sd.Name()
		if v, ok := offsets.Lookup(stepName); ok {
			step = v
			g.stepOffsets[step] = struct{}{}
		}
	}

	for _, e := range offsets.Entries() {
		if e.Name == stepName || e.Val == 0 {
			continue
		}
		side := Right
		if e.Val < 0 {
			side = Left
		}
		var t tuple.IntTuple
		t.AddDimBack(e.Name, abs(e.Val))
		g.halos.widen(HaloKey{Pack: pack, Side: side, Step: step}, t)
	}
}

// UpdateHaloFrom merges other's halos into g, keeping the larger value for
// every key and dim. Both grids must have the same dims.
func (g *Grid) UpdateHaloFrom(other *Grid) {
	if !g.AreDimsSame(other) {
		panic(fmt.Sprintf("grid %q: cannot merge halos of %q with different dims", g.name, other.name))
	}
	for _, k := range other.halos.sortedKeys() {
		g.halos.widen(k, other.halos[k])
	}
	for ofs := range other.stepOffsets {
		g.stepOffsets[ofs] = struct{}{}
	}
}

// HaloSizes returns the halo pack needs on side, reduced over all step
// offsets by taking the max in each dim.
func (g *Grid) HaloSizes(pack string, side Side) tuple.IntTuple {
	var out tuple.IntTuple
	for _, k := range g.halos.sortedKeys() {
		if k.Pack != pack || k.Side != side {
			continue
		}
		hs := g.halos[k]
		out = out.MakeUnionWith(hs).MaxElements(hs, false)
	}
	return out
}

// HaloSize returns the widest halo in dim on side over all packs and step
// offsets.
func (g *Grid) HaloSize(dim string, side Side) int {
	h := 0
	for k, hs := range g.halos {
		if k.Side != side {
			continue
		}
		if v, ok := hs.Lookup(dim); ok {
			h = max(h, v)
		}
	}
	return h
}

// HaloPacks returns the names of the packs that recorded a halo, sorted.
func (g *Grid) HaloPacks() []string {
	var out []string
	for _, k := range g.halos.sortedKeys() {
		if len(out) == 0 || out[len(out)-1] != k.Pack {
			out = append(out, k.Pack)
		}
	}
	return out
}

// HaloKeys returns every recorded key in (pack, side, step) order.
func (g *Grid) HaloKeys() []HaloKey { return g.halos.sortedKeys() }

// HaloAt returns the halo recorded for one key.
func (g *Grid) HaloAt(k HaloKey) (tuple.IntTuple, bool) {
	t, ok := g.halos[k]
	return t.Clone(), ok
}

// StepOffsets returns the step offsets seen in accesses, sorted.
func (g *Grid) StepOffsets() []int {
	return slices.Sorted(maps.Keys(g.stepOffsets))
}

// IsHaloSame reports whether the reduced halos of g and other match for
// every pack either of them knows, on both sides. A dim missing from one
// side counts as zero. Both grids must have the same dims.
func (g *Grid) IsHaloSame(other *Grid) bool {
	if !g.AreDimsSame(other) {
		panic(fmt.Sprintf("grid %q: cannot compare halos of %q with different dims", g.name, other.name))
	}
	packs := g.HaloPacks()
	for _, p := range other.HaloPacks() {
		if !slices.Contains(packs, p) {
			packs = append(packs, p)
		}
	}
	for _, side := range Sides {
		for _, p := range packs {
			if !sameHalo(g.HaloSizes(p, side), other.HaloSizes(p, side)) {
				return false
			}
		}
	}
	return true
}

func sameHalo(a, b tuple.IntTuple) bool {
	for _, n := range a.MakeUnionWith(b).Names() {
		if a.Get(n) != b.Get(n) {
			return false
		}
	}
	return true
}

func (g *Grid) hasDim(name string) bool {
	for _, d := range g.dims {
		if d.Name() == name {
			return true
		}
	}
	return false
}
