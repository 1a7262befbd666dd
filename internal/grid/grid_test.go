package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/tuple"
)

type testSoln string

func (s testSoln) Name() string { return string(s) }

// newTestDims returns t(step), x, y(domain), m(misc) with a fold over x and y.
func newTestDims(t *testing.T) *dims.Dimensions {
	t.Helper()
	d, err := dims.NewDimensions("t", []string{"x", "y"}, []string{"m"})
	require.NoError(t, err)
	d.Fold = tuple.New(tuple.Entry{Name: "x", Val: 4}, tuple.Entry{Name: "y", Val: 2})
	require.NoError(t, d.Validate())
	return d
}

func dim(t *testing.T, d *dims.Dimensions, name string) *dims.Dim {
	t.Helper()
	found, ok := d.Lookup(name)
	require.True(t, ok, "dimension %q", name)
	return found
}

func offsets(entries ...tuple.Entry) tuple.IntTuple { return tuple.New(entries...) }

func e(name string, v int) tuple.Entry { return tuple.Entry{Name: name, Val: v} }

func TestNew_Validation(t *testing.T) {
	d := newTestDims(t)
	tt, x := dim(t, d, "t"), dim(t, d, "x")
	other := dims.New("t2", dims.Step)

	assert.Panics(t, func() { New("u", false, nil, tt, x, other) }, "two step dims")
	assert.Panics(t, func() { New("u", false, nil, x, x) }, "repeated dim")
	assert.Panics(t, func() { New("u", false, nil, x, nil) }, "nil dim")

	g := New("u", false, testSoln("heat"), tt, x, dim(t, d, "y"))
	assert.Equal(t, "u(t, x, y)", g.Descr())
	assert.Equal(t, 3, g.NumDims())
	assert.Equal(t, "x", g.DimName(1))
	assert.Panics(t, func() { g.DimName(3) })
	assert.Same(t, tt, g.StepDim())
	assert.Equal(t, "heat", g.Soln().Name())

	g.SetName("v")
	assert.Equal(t, "v", g.Name())
}

func TestFolding(t *testing.T) {
	d := newTestDims(t)
	g := New("u", false, nil, dim(t, d, "x"), dim(t, d, "y"), dim(t, d, "t"))
	misc := New("coef", false, nil, dim(t, d, "m"))
	partial := New("v", false, nil, dim(t, d, "t"), dim(t, d, "x"))

	assert.Panics(t, func() { g.NumFoldableDims() })
	assert.Panics(t, func() { g.IsFoldable() })

	NewGrids(g, misc, partial).SetFolding(d)

	assert.Equal(t, 2, g.NumFoldableDims())
	assert.True(t, g.IsFoldable())
	assert.Equal(t, 0, misc.NumFoldableDims())
	assert.False(t, misc.IsFoldable())
	assert.Equal(t, 1, partial.NumFoldableDims())
	assert.True(t, partial.IsFoldable())
}

func TestAt_MinMaxAccumulation(t *testing.T) {
	d := newTestDims(t)
	x := dim(t, d, "x")

	orders := [][]int{{-2, 0, 3, 1}, {3, 1, 0, -2}, {1, -2, 3, 0}}
	for _, order := range orders {
		g := New("a", false, nil, x)
		for _, o := range order {
			g.At(expr.Offset(x, o))
		}
		assert.Equal(t, -2, g.MinIndices().Get("x"))
		assert.Equal(t, 3, g.MaxIndices().Get("x"))
	}
}

func TestAt_ClassifiesArgs(t *testing.T) {
	d := newTestDims(t)
	tt, x, y, m := dim(t, d, "t"), dim(t, d, "x"), dim(t, d, "y"), dim(t, d, "m")
	g := New("u", false, nil, tt, x, y, m)

	sym := expr.Binary(expr.Mul, expr.Const(2), expr.Index(y))
	p := g.At(expr.Offset(tt, 1), expr.Offset(x, -1), sym, expr.Const(3))

	assert.Equal(t, "t=1, x=-1", p.Offsets().DimValString())
	assert.Equal(t, "m=3", p.Consts().DimValString())
	step, ok := p.StepOffset()
	require.True(t, ok)
	assert.Equal(t, 1, step)
	assert.Equal(t, "u(t + 1, x - 1, 2 * y, 3)", p.String())

	assert.Equal(t, "t=1, x=-1, m=3", g.MinIndices().DimValString())
	assert.Panics(t, func() { g.At(expr.Index(tt)) }, "too few args")
	assert.Panics(t, func() { g.At(expr.Index(tt), expr.Index(x), expr.Index(y), expr.Const(0), expr.Const(0)) }, "too many args")
}

func TestAt_AbsIndicesTrackedApart(t *testing.T) {
	d := newTestDims(t)
	tt, x := dim(t, d, "t"), dim(t, d, "x")
	g := New("u", false, nil, tt, x)

	g.At(expr.Index(tt), expr.Offset(x, -1))
	g.At(expr.Const(0), expr.Offset(x, 2))
	g.At(expr.Index(tt), expr.Const(100))

	assert.Equal(t, "t=0, x=-1", g.MinIndices().DimValString())
	assert.Equal(t, "t=0, x=2", g.MaxIndices().DimValString())
	assert.Equal(t, "t=0, x=100", g.MinAbsIndices().DimValString())
	assert.Equal(t, "t=0, x=100", g.MaxAbsIndices().DimValString())
}

func TestNewRelativePoint(t *testing.T) {
	d := newTestDims(t)
	g := New("u", false, nil, dim(t, d, "t"), dim(t, d, "x"), dim(t, d, "m"))

	p := g.NewRelativePoint(-1, 2, 5)
	assert.Equal(t, "u(t - 1, x + 2, 5)", p.String())
	assert.Equal(t, "t=-1, x=2", p.Offsets().DimValString())
	assert.Equal(t, "m=5", p.Consts().DimValString())
	assert.Panics(t, func() { g.NewRelativePoint(1) })
}

func TestUpdateHalo_SidesAndSteps(t *testing.T) {
	d := newTestDims(t)
	g := New("u", false, nil, dim(t, d, "t"), dim(t, d, "x"), dim(t, d, "y"))

	g.UpdateHalo("p", offsets(e("t", 0), e("x", -2), e("y", 0)))
	g.UpdateHalo("p", offsets(e("t", 0), e("x", 1), e("y", 3)))
	g.UpdateHalo("p", offsets(e("t", -1), e("x", -4)))
	g.UpdateHalo("q", offsets(e("t", 0), e("y", -1)))

	assert.Equal(t, "x=4", g.HaloSizes("p", Left).DimValString())
	assert.Equal(t, "x=1, y=3", g.HaloSizes("p", Right).DimValString())
	assert.Equal(t, "y=1", g.HaloSizes("q", Left).DimValString())
	assert.True(t, g.HaloSizes("q", Right).IsEmpty())
	assert.True(t, g.HaloSizes("missing", Left).IsEmpty())

	assert.Equal(t, 4, g.HaloSize("x", Left))
	assert.Equal(t, 1, g.HaloSize("y", Left))
	assert.Equal(t, 3, g.HaloSize("y", Right))
	assert.Equal(t, 0, g.HaloSize("t", Left), "no halo is kept in the step dim")

	want := []HaloKey{
		{Pack: "p", Side: Left, Step: -1},
		{Pack: "p", Side: Left, Step: 0},
		{Pack: "p", Side: Right, Step: 0},
		{Pack: "q", Side: Left, Step: 0},
	}
	if diff := cmp.Diff(want, g.HaloKeys()); diff != "" {
		t.Errorf("HaloKeys() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"p", "q"}, g.HaloPacks())
	assert.Panics(t, func() { g.UpdateHalo("p", offsets(e("m", 1))) })
}

func TestUpdateHalo_Monotonic(t *testing.T) {
	d := newTestDims(t)
	g := New("u", false, nil, dim(t, d, "t"), dim(t, d, "x"))

	seq := []tuple.IntTuple{
		offsets(e("t", 0), e("x", -3)),
		offsets(e("t", 1), e("x", -1)),
		offsets(e("t", -1), e("x", 2)),
		offsets(e("t", 0), e("x", 5)),
		offsets(e("t", 0), e("x", -2)),
	}
	for i, o := range seq {
		g.UpdateHalo("p", o)
		for _, prev := range seq[:i+1] {
			v := prev.Get("x")
			side := Right
			if v < 0 {
				side = Left
				v = -v
			}
			assert.GreaterOrEqual(t, g.HaloSizes("p", side).Get("x"), v)
		}
	}
	assert.Equal(t, 3, g.HaloSize("x", Left))
	assert.Equal(t, 5, g.HaloSize("x", Right))
}

func TestUpdateHaloFrom(t *testing.T) {
	d := newTestDims(t)
	tt, x, y := dim(t, d, "t"), dim(t, d, "x"), dim(t, d, "y")
	a := New("a", false, nil, tt, x, y)
	b := New("b", false, nil, tt, x, y)

	a.UpdateHalo("p", offsets(e("t", 0), e("x", -1), e("y", 4)))
	b.UpdateHalo("p", offsets(e("t", 0), e("x", -3), e("y", 2)))
	b.UpdateHalo("p", offsets(e("t", 1), e("y", -2)))
	b.UpdateHalo("r", offsets(e("t", 0), e("x", 1)))

	oldLeft := a.HaloSizes("p", Left)
	oldRight := a.HaloSizes("p", Right)
	a.UpdateHaloFrom(b)

	assert.Equal(t, oldLeft.MakeUnionWith(b.HaloSizes("p", Left)).MaxElements(b.HaloSizes("p", Left), false),
		a.HaloSizes("p", Left))
	assert.Equal(t, "y=4", oldRight.DimValString())
	assert.Equal(t, "y=4", a.HaloSizes("p", Right).DimValString())
	assert.Equal(t, "x=3, y=2", a.HaloSizes("p", Left).DimValString())
	assert.Equal(t, "x=1", a.HaloSizes("r", Right).DimValString())
	assert.Equal(t, []int{0, 1}, a.StepOffsets())

	// a now covers b; b does not cover a's wider right halo.
	assert.False(t, a.IsHaloSame(b))

	c := New("c", false, nil, tt, x, y)
	c.UpdateHaloFrom(b)
	assert.True(t, c.IsHaloSame(b))
	assert.True(t, b.IsHaloSame(c))

	other := New("o", false, nil, x, y)
	assert.Panics(t, func() { a.UpdateHaloFrom(other) })
	assert.Panics(t, func() { a.IsHaloSame(other) })
}

func TestIsHaloSame_IgnoresStepSplit(t *testing.T) {
	d := newTestDims(t)
	tt, x := dim(t, d, "t"), dim(t, d, "x")
	a := New("a", false, nil, tt, x)
	b := New("b", false, nil, tt, x)

	a.UpdateHalo("p", offsets(e("t", 0), e("x", 2)))
	a.UpdateHalo("p", offsets(e("t", 1), e("x", 1)))
	b.UpdateHalo("p", offsets(e("t", -1), e("x", 2)))

	assert.True(t, a.IsHaloSame(b))
	b.UpdateHalo("q", offsets(e("t", 0), e("x", -1)))
	assert.False(t, a.IsHaloSame(b))
}

func TestAreDimsSame(t *testing.T) {
	d1 := newTestDims(t)
	d2 := newTestDims(t)

	a := New("a", false, nil, dim(t, d1, "t"), dim(t, d1, "x"))
	b := New("b", false, nil, dim(t, d1, "t"), dim(t, d1, "x"))
	c := New("c", false, nil, dim(t, d2, "t"), dim(t, d2, "x"))
	e := New("e", false, nil, dim(t, d1, "x"), dim(t, d1, "t"))

	assert.True(t, a.AreDimsSame(b))
	assert.False(t, a.AreDimsSame(c), "equal names from another classification are different dims")
	assert.True(t, a.AreDimsEqual(c))
	assert.False(t, a.AreDimsSame(e))
	assert.False(t, a.AreDimsEqual(e))
}

func TestUpdateHalo_OffsetOutOfRange(t *testing.T) {
	d := newTestDims(t)
	g := New("u", false, nil, dim(t, d, "t"), dim(t, d, "x"))

	assert.Panics(t, func() { g.UpdateHalo("p", offsets(e("x", -expr.MaxIndex-1))) })
	assert.Panics(t, func() { g.UpdateHalo("p", offsets(e("t", 1), e("x", expr.MaxIndex+1))) })
	assert.Empty(t, g.HaloKeys())
	assert.Empty(t, g.StepOffsets())

	g.UpdateHalo("p", offsets(e("x", -expr.MaxIndex)))
	assert.Equal(t, expr.MaxIndex, g.HaloSize("x", Left))
}

func TestUpdateHalo_SymbolicStepIndex(t *testing.T) {
	d := newTestDims(t)
	tt, x := dim(t, d, "t"), dim(t, d, "x")
	g := New("u", false, nil, tt, x)

	// u(2*t, x - 1) has no step offset.
	p := g.At(expr.Binary(expr.Mul, expr.Const(2), expr.Index(tt)), expr.Offset(x, -1))
	_, ok := p.StepOffset()
	require.False(t, ok)
	g.UpdateHalo("p", p.Offsets())
	g.UpdateHalo("p", offsets(e("t", 1), e("x", 0)))
	g.UpdateHalo("p", offsets(e("t", 2), e("x", 0)))

	assert.Equal(t, []int{1, 2}, g.StepOffsets())
	assert.Equal(t, 2, g.StepDimSize())
	assert.Equal(t, 1, g.HaloSize("x", Left))
}

func TestStepDimSize(t *testing.T) {
	d := newTestDims(t)
	tt, x := dim(t, d, "t"), dim(t, d, "x")

	g := New("u", false, nil, tt, x)
	assert.Equal(t, 1, g.StepDimSize())

	// A pure time shift has no spatial halo but still needs two steps.
	g.UpdateHalo("p", offsets(e("t", 1), e("x", 0)))
	g.UpdateHalo("p", offsets(e("t", 0), e("x", 0)))
	assert.Equal(t, 2, g.StepDimSize())

	g.UpdateHalo("q", offsets(e("t", -1), e("x", 1)))
	assert.Equal(t, 3, g.StepDimSize())
	assert.Equal(t, 3, g.StepAllocSize())

	g.SetStepAllocSize(5)
	assert.Equal(t, 5, g.StepAllocSize())
	g.SetStepAllocSize(0)
	assert.Equal(t, 3, g.StepAllocSize())
	assert.Panics(t, func() { g.SetStepAllocSize(-1) })

	assert.False(t, g.IsDynamicStepAlloc())
	g.SetDynamicStepAlloc(true)
	assert.True(t, g.IsDynamicStepAlloc())
	assert.Equal(t, 3, g.StepAllocSize())

	noStep := New("c", false, nil, x)
	noStep.UpdateHalo("p", offsets(e("x", 2)))
	assert.Equal(t, 1, noStep.StepDimSize())
	assert.Equal(t, []HaloKey{{Pack: "p", Side: Right, Step: 0}}, noStep.HaloKeys())
}

func TestPoints(t *testing.T) {
	d := newTestDims(t)
	x := dim(t, d, "x")
	a := New("a", false, nil, x)
	b := New("b", false, nil, x)

	pa := a.At(expr.Offset(x, 1))
	pb := b.At(expr.Index(x))
	rhs := expr.Binary(expr.Add, pa, expr.Binary(expr.Mul, expr.Const(2), pb))

	assert.Equal(t, []*Point{pa, pb}, Points(rhs))
	assert.Equal(t, "(a(x + 1) + (2 * b(x)))", rhs.String())
}

func TestGrids(t *testing.T) {
	d := newTestDims(t)
	x := dim(t, d, "x")
	a := New("a", false, nil, x)
	b := New("b", true, nil, x)

	c := NewGrids(a, b, a)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Insert(b))
	assert.True(t, c.Contains(a))
	assert.Same(t, b, c.At(1))

	found, ok := c.Lookup("b")
	require.True(t, ok)
	assert.Same(t, b, found)

	var names []string
	for _, g := range c.All() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	clone := c.Clone()
	clone.Insert(New("z", false, nil, x))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, clone.Len())
	assert.Same(t, c.At(0), clone.At(0), "clones share descriptors")

	var zero Grids
	assert.False(t, zero.Contains(a))
	assert.True(t, zero.Insert(a))
}
