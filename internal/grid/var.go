package grid

import (
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/tuple"
)

// Var is the read surface of a stencil variable offered to code generation
// and reporting.
type Var interface {
	Name() string
	Descr() string
	Dims() []*dims.Dim
	NumDims() int
	DimName(n int) string
	DimNames() []string
	StepDim() *dims.Dim
	IsScratch() bool

	HaloSizes(pack string, side Side) tuple.IntTuple
	HaloSize(dim string, side Side) int
	HaloPacks() []string
	MinIndices() tuple.IntTuple
	MaxIndices() tuple.IntTuple

	NumFoldableDims() int
	IsFoldable() bool

	StepAllocSize() int
	SetStepAllocSize(size int)
	IsDynamicStepAlloc() bool
	SetDynamicStepAlloc(enable bool)

	At(args ...expr.NumExpr) *Point
	NewRelativePoint(offsets ...int) *Point
}

var _ Var = (*Grid)(nil)
