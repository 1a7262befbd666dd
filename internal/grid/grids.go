package grid

import (
	"iter"

	"github.com/vk/stencilgrid/internal/dims"
)

// Grids is an insertion-ordered set of grid references. It never owns the
// grids; copies share the same descriptors.
type Grids struct {
	list []*Grid
	set  map[*Grid]struct{}
}

// NewGrids returns a collection holding gs, skipping duplicates.
func NewGrids(gs ...*Grid) *Grids {
	c := &Grids{}
	for _, g := range gs {
		c.Insert(g)
	}
	return c
}

// Insert adds g unless it is already present and reports whether it was added.
func (c *Grids) Insert(g *Grid) bool {
	if g == nil {
		panic("grid: inserting nil grid")
	}
	if c.set == nil {
		c.set = make(map[*Grid]struct{})
	}
	if _, ok := c.set[g]; ok {
		return false
	}
	c.set[g] = struct{}{}
	c.list = append(c.list, g)
	return true
}

// Contains reports whether g is in the collection.
func (c *Grids) Contains(g *Grid) bool {
	_, ok := c.set[g]
	return ok
}

// Len returns the number of grids.
func (c *Grids) Len() int { return len(c.list) }

// At returns the i-th grid in insertion order.
func (c *Grids) At(i int) *Grid { return c.list[i] }

// Lookup finds a grid by name.
func (c *Grids) Lookup(name string) (*Grid, bool) {
	for _, g := range c.list {
		if g.name == name {
			return g, true
		}
	}
	return nil, false
}

// All iterates over the grids in insertion order.
func (c *Grids) All() iter.Seq2[int, *Grid] {
	return func(yield func(int, *Grid) bool) {
		for i, g := range c.list {
			if !yield(i, g) {
				return
			}
		}
	}
}

// Slice returns the grids in insertion order.
func (c *Grids) Slice() []*Grid {
	out := make([]*Grid, len(c.list))
	copy(out, c.list)
	return out
}

// Clone returns a shallow copy: a new set over the same grids.
func (c *Grids) Clone() *Grids {
	return NewGrids(c.list...)
}

// SetFolding runs SetFolding on every grid.
func (c *Grids) SetFolding(d *dims.Dimensions) {
	for _, g := range c.list {
		g.SetFolding(d)
	}
}
