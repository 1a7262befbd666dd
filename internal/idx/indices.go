// Package idx provides the fixed-capacity index vector and the per-level
// scan descriptor used by the run-time tiled loops.
//
// Both types are plain values: they never allocate, copy by assignment and
// can live on the stack of the innermost loop.
package idx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/stencilgrid/internal/tuple"
)

// MaxIdxs is the capacity of an Indices vector. One slot is reserved for the
// step dimension.
const MaxIdxs = 8

// Idx is the element type of an index vector.
type Idx = int64

// Indices holds up to MaxIdxs signed indices. Unused slots hold zero (or the
// constant the vector was built from); all operations cover every slot.
type Indices [MaxIdxs]Idx

// FromTuple copies the values of t into a new vector, zero-filling the tail.
func FromTuple(t tuple.IntTuple) Indices {
	checkLen(t.Size())
	var out Indices
	for i := 0; i < t.Size(); i++ {
		out[i] = Idx(t.Val(i))
	}
	return out
}

// FromSlice copies src into a new vector, zero-filling the tail.
func FromSlice(src []Idx) Indices {
	checkLen(len(src))
	var out Indices
	copy(out[:], src)
	return out
}

// FromArray copies the first n values of src, zero-filling the tail.
func FromArray(n int, src []Idx) Indices {
	checkLen(n)
	if n > len(src) {
		panic(fmt.Sprintf("idx: %d elements requested from a source of %d", n, len(src)))
	}
	var out Indices
	copy(out[:n], src[:n])
	return out
}

// Of builds a vector from the listed values.
func Of(vals ...Idx) Indices {
	return FromSlice(vals)
}

// FromConst returns a vector with every slot set to val.
func FromConst(val Idx) Indices {
	var out Indices
	for i := range out {
		out[i] = val
	}
	return out
}

func checkLen(n int) {
	if n < 0 || n > MaxIdxs {
		panic(fmt.Sprintf("idx: %d elements exceed capacity %d", n, MaxIdxs))
	}
}

func checkPos(i int) {
	if i < 0 || i >= MaxIdxs {
		panic(fmt.Sprintf("idx: position %d out of range [0, %d)", i, MaxIdxs))
	}
}

// At returns the value at position i.
func (v *Indices) At(i int) Idx {
	checkPos(i)
	return v[i]
}

// Set stores val at position i.
func (v *Indices) Set(i int, val Idx) {
	checkPos(i)
	v[i] = val
}

// SetTupleVals writes the leading values of v into the existing
// dimensions of t, in order.
func (v Indices) SetTupleVals(t *tuple.IntTuple) {
	checkLen(t.Size())
	for i := 0; i < t.Size(); i++ {
		t.SetVal(t.Name(i), int(v[i]))
	}
}

// Less orders vectors lexicographically over all slots.
func (v Indices) Less(o Indices) bool {
	for i := range v {
		if v[i] < o[i] {
			return true
		} else if v[i] > o[i] {
			return false
		}
	}
	return false
}

// Greater orders vectors lexicographically over all slots.
func (v Indices) Greater(o Indices) bool {
	for i := range v {
		if v[i] > o[i] {
			return true
		} else if v[i] < o[i] {
			return false
		}
	}
	return false
}

// MinElements returns the element-wise minimum.
func (v Indices) MinElements(o Indices) Indices {
	var out Indices
	for i := range v {
		out[i] = min(v[i], o[i])
	}
	return out
}

// MaxElements returns the element-wise maximum.
func (v Indices) MaxElements(o Indices) Indices {
	var out Indices
	for i := range v {
		out[i] = max(v[i], o[i])
	}
	return out
}

// AddElements adds n to every slot.
func (v Indices) AddElements(n Idx) Indices {
	var out Indices
	for i := range v {
		out[i] = v[i] + n
	}
	return out
}

// DimValString renders the vector like "x=4, y=8" using one name per
// meaningful slot.
func (v Indices) DimValString(names []string) string {
	return v.FormatDimVals(names, ", ", "=", "", "")
}

// FormatDimVals renders one entry per name as prefix+name+infix+value+suffix.
func (v Indices) FormatDimVals(names []string, sep, infix, prefix, suffix string) string {
	checkLen(len(names))
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = prefix + n + infix + strconv.FormatInt(v[i], 10) + suffix
	}
	return strings.Join(parts, sep)
}

// ValString renders the first n values like "4, 3, 2".
func (v Indices) ValString(n int) string {
	return v.FormatVals(n, ", ", "", "")
}

// FormatVals renders the first n values as prefix+value+suffix joined by sep.
func (v Indices) FormatVals(n int, sep, prefix, suffix string) string {
	checkLen(n)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = prefix + strconv.FormatInt(v[i], 10) + suffix
	}
	return strings.Join(parts, sep)
}
