package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Solutions  []*SolutionBlock   `hcl:"solution,block"`
	Dimensions []*DimensionsBlock `hcl:"dimensions,block"`
	Grids      []*GridBlock       `hcl:"grid,block"`
	Packs      []*PackBlock       `hcl:"pack,block"`
	Scans      []*ScanBlock       `hcl:"scan,block"`
}

// SolutionBlock maps to a `solution "<name>"` block.
type SolutionBlock struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}

// DimensionsBlock maps to the `dimensions` block.
type DimensionsBlock struct {
	Step    string         `hcl:"step,optional"`
	Domain  []string       `hcl:"domain"`
	Misc    []string       `hcl:"misc,optional"`
	Fold    hcl.Expression `hcl:"fold,optional"`
	Cluster hcl.Expression `hcl:"cluster,optional"`
}

// GridBlock maps to a `grid "<name>"` block.
type GridBlock struct {
	Name             string   `hcl:"name,label"`
	Dims             []string `hcl:"dims"`
	Scratch          bool     `hcl:"scratch,optional"`
	StepAlloc        int      `hcl:"step_alloc,optional"`
	DynamicStepAlloc bool     `hcl:"dynamic_step_alloc,optional"`
}

// PackBlock maps to a `pack "<name>"` block.
type PackBlock struct {
	Name      string           `hcl:"name,label"`
	Equations []*EquationBlock `hcl:"equation,block"`
}

// EquationBlock maps to an `equation "<name>"` block inside a pack.
type EquationBlock struct {
	Name string         `hcl:"name,label"`
	LHS  hcl.Expression `hcl:"lhs"`
	RHS  hcl.Expression `hcl:"rhs"`
}

// ScanBlock maps to the optional `scan` block.
type ScanBlock struct {
	Domain hcl.Expression `hcl:"domain"`
	Levels hcl.Expression `hcl:"levels,optional"`
	Groups hcl.Expression `hcl:"groups,optional"`
}
