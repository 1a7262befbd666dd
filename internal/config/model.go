package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of one stencil
// solution: its dimensions, grids, equation packs and an optional scan.
type Model struct {
	Solution   *Solution
	Dimensions *Dimensions
	Grids      []*Grid
	Packs      []*Pack
	Scan       *Scan
}

// Solution names the solution.
type Solution struct {
	Name        string
	Description string
}

// Dimensions classifies the dimension names and carries the vector-fold and
// cluster shapes, keyed by domain dimension.
type Dimensions struct {
	Step    string
	Domain  []string
	Misc    []string
	Fold    map[string]int
	Cluster map[string]int
}

// Grid is the format-agnostic representation of a `grid` block.
type Grid struct {
	Name             string
	Dims             []string
	Scratch          bool
	StepAlloc        int
	DynamicStepAlloc bool
}

// Pack is a named group of equations.
type Pack struct {
	Name      string
	Equations []*Equation
}

// Equation holds the untranslated sides of "lhs = rhs".
type Equation struct {
	Name string
	LHS  hcl.Expression
	RHS  hcl.Expression
}

// Scan describes a run-time walk: the domain size and, per tiling level,
// the tile size and optional group size, all keyed by domain dimension.
type Scan struct {
	Domain map[string]int
	Levels []map[string]int
	Groups []map[string]int
}

// Pack returns the pack with the given name, if any.
func (m *Model) Pack(name string) (*Pack, bool) {
	for _, p := range m.Packs {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
