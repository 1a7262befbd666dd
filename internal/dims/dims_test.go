package dims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencilgrid/internal/tuple"
)

func TestNewDimensions(t *testing.T) {
	d, err := NewDimensions("t", []string{"x", "y"}, []string{"m"})
	require.NoError(t, err)

	assert.Equal(t, "t", d.StepDimName())
	assert.Equal(t, Step, d.StepDim().Type())
	assert.Equal(t, []string{"x", "y"}, d.DomainDimNames())
	require.Len(t, d.MiscDims(), 1)
	assert.Equal(t, Misc, d.MiscDims()[0].Type())
	assert.Len(t, d.StencilDims(), 3)
	assert.Len(t, d.All(), 4)

	x, ok := d.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Domain, x.Type())

	_, ok = d.Lookup("z")
	assert.False(t, ok)
}

func TestNewDimensions_Duplicates(t *testing.T) {
	_, err := NewDimensions("t", []string{"x", "t"}, nil)
	assert.ErrorContains(t, err, `"t" declared more than once`)

	_, err = NewDimensions("", []string{""}, nil)
	assert.Error(t, err)
}

func TestDim_IdentityVersusValue(t *testing.T) {
	a, err := NewDimensions("", []string{"x"}, nil)
	require.NoError(t, err)
	b, err := NewDimensions("", []string{"x"}, nil)
	require.NoError(t, err)

	xa, xb := a.DomainDims()[0], b.DomainDims()[0]
	assert.False(t, xa.IsSame(xb))
	assert.True(t, xa.Equal(xb))
	assert.True(t, xa.IsSame(a.DomainDims()[0]))
}

func TestDimensions_Validate(t *testing.T) {
	d, err := NewDimensions("t", []string{"x", "y"}, []string{"m"})
	require.NoError(t, err)

	d.Fold = tuple.New(tuple.Entry{Name: "x", Val: 4}, tuple.Entry{Name: "y", Val: 2})
	d.Cluster = tuple.New(tuple.Entry{Name: "y", Val: 2})
	require.NoError(t, d.Validate())
	assert.Equal(t, 8, d.VecLen())
	assert.Equal(t, "x=4, y=4", d.ClusterPts().DimValString())
	assert.True(t, d.IsFoldDim("x"))
	assert.False(t, d.IsFoldDim("t"))

	d.Fold = tuple.New(tuple.Entry{Name: "t", Val: 2}, tuple.Entry{Name: "q", Val: 2}, tuple.Entry{Name: "x", Val: 0})
	err = d.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `fold dimension "t" must be a domain dimension`)
	assert.ErrorContains(t, err, `fold dimension "q" is not declared`)
	assert.ErrorContains(t, err, `fold size for "x" must be at least 1`)
}

func TestDimensions_CheckDimType(t *testing.T) {
	d, err := NewDimensions("t", []string{"x"}, []string{"m"})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		dim     string
		step    bool
		domain  bool
		misc    bool
		wantErr string
	}{
		{"domain allowed", "x", false, true, false, ""},
		{"step rejected", "t", false, true, true, "step dimension"},
		{"misc rejected", "m", true, true, false, "misc dimension"},
		{"domain rejected", "x", true, false, true, "domain dimension"},
		{"unknown", "z", true, true, true, "not a recognized dimension"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := d.CheckDimType(tc.dim, "set_halo", tc.step, tc.domain, tc.misc)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
			assert.ErrorContains(t, err, "set_halo")
		})
	}
}
