// Package tuple provides IntTuple, an ordered list of named integers.
//
// Tuples are used wherever a value must be attached to a dimension name:
// access offsets, halo widths, fold and cluster shapes. Order of insertion is
// preserved and is significant for rendering and for equality.
package tuple

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Entry is one named value in a tuple.
type Entry struct {
	Name string
	Val  int
}

// IntTuple is an ordered set of named integers. The zero value is an empty
// tuple ready to use. Methods that return a tuple never alias the receiver.
type IntTuple struct {
	entries []Entry
}

// New builds a tuple from alternating entries.
func New(entries ...Entry) IntTuple {
	var t IntTuple
	for _, e := range entries {
		t.AddDimBack(e.Name, e.Val)
	}
	return t
}

// FromNames builds a tuple with every name set to val.
func FromNames(names []string, val int) IntTuple {
	var t IntTuple
	for _, n := range names {
		t.AddDimBack(n, val)
	}
	return t
}

// FromMap lays m out with the names in order first, then any remaining keys
// sorted. Names in order that m lacks are skipped.
func FromMap(order []string, m map[string]int) IntTuple {
	var t IntTuple
	for _, name := range order {
		if v, ok := m[name]; ok {
			t.AddDimBack(name, v)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if !t.Has(name) {
			t.AddDimBack(name, m[name])
		}
	}
	return t
}

// Size returns the number of dimensions in the tuple.
func (t IntTuple) Size() int { return len(t.entries) }

// IsEmpty reports whether the tuple has no dimensions.
func (t IntTuple) IsEmpty() bool { return len(t.entries) == 0 }

// Entries returns a copy of the entries in order.
func (t IntTuple) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the dimension names in order.
func (t IntTuple) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Name
	}
	return out
}

// Vals returns the values in order.
func (t IntTuple) Vals() []int {
	out := make([]int, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Val
	}
	return out
}

// Name returns the name at position i.
func (t IntTuple) Name(i int) string {
	if i < 0 || i >= len(t.entries) {
		panic(fmt.Sprintf("tuple: position %d out of range [0, %d)", i, len(t.entries)))
	}
	return t.entries[i].Name
}

// Val returns the value at position i.
func (t IntTuple) Val(i int) int {
	if i < 0 || i >= len(t.entries) {
		panic(fmt.Sprintf("tuple: position %d out of range [0, %d)", i, len(t.entries)))
	}
	return t.entries[i].Val
}

// Lookup returns the value for name and whether it exists.
func (t IntTuple) Lookup(name string) (int, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e.Val, true
		}
	}
	return 0, false
}

// Has reports whether name is one of the tuple's dimensions.
func (t IntTuple) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Get returns the value for name, or 0 when the name is absent.
func (t IntTuple) Get(name string) int {
	v, _ := t.Lookup(name)
	return v
}

// AddDimBack appends a new dimension. Adding an existing name panics.
func (t *IntTuple) AddDimBack(name string, val int) {
	if t.Has(name) {
		panic(fmt.Sprintf("tuple: dimension %q already exists", name))
	}
	t.entries = append(t.entries, Entry{Name: name, Val: val})
}

// SetVal updates an existing dimension or appends it when missing.
func (t *IntTuple) SetVal(name string, val int) {
	for i := range t.entries {
		if t.entries[i].Name == name {
			t.entries[i].Val = val
			return
		}
	}
	t.entries = append(t.entries, Entry{Name: name, Val: val})
}

// Clone returns a deep copy.
func (t IntTuple) Clone() IntTuple {
	return IntTuple{entries: t.Entries()}
}

// MakeUnionWith returns a copy of t extended with the dimensions of other
// that t does not have. Values of new dimensions come from other.
func (t IntTuple) MakeUnionWith(other IntTuple) IntTuple {
	out := t.Clone()
	for _, e := range other.entries {
		if !out.Has(e.Name) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// MaxElements returns the element-wise maximum of t and other, matched by
// name. When strict is true both tuples must have the same dimensions in the
// same order. When strict is false dimensions missing from t are ignored.
func (t IntTuple) MaxElements(other IntTuple, strict bool) IntTuple {
	return t.combine(other, strict, func(a, b int) int { return max(a, b) })
}

// MinElements is the element-wise minimum counterpart of MaxElements.
func (t IntTuple) MinElements(other IntTuple, strict bool) IntTuple {
	return t.combine(other, strict, func(a, b int) int { return min(a, b) })
}

func (t IntTuple) combine(other IntTuple, strict bool, fn func(a, b int) int) IntTuple {
	if strict && !t.AreDimsSame(other) {
		panic(fmt.Sprintf("tuple: dims differ: %s vs %s", t, other))
	}
	out := t.Clone()
	for i := range out.entries {
		if v, ok := other.Lookup(out.entries[i].Name); ok {
			out.entries[i].Val = fn(out.entries[i].Val, v)
		}
	}
	return out
}

// AreDimsSame reports whether both tuples have the same names in the same order.
func (t IntTuple) AreDimsSame(other IntTuple) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for i := range t.entries {
		if t.entries[i].Name != other.entries[i].Name {
			return false
		}
	}
	return true
}

// Equal reports whether both tuples have identical names and values in order.
func (t IntTuple) Equal(other IntTuple) bool {
	if !t.AreDimsSame(other) {
		return false
	}
	for i := range t.entries {
		if t.entries[i].Val != other.entries[i].Val {
			return false
		}
	}
	return true
}

// Product multiplies all values. The product of an empty tuple is 1.
func (t IntTuple) Product() int {
	p := 1
	for _, e := range t.entries {
		p *= e.Val
	}
	return p
}

// ToMap returns the tuple as a map; ordering is lost.
func (t IntTuple) ToMap() map[string]int {
	out := make(map[string]int, len(t.entries))
	for _, e := range t.entries {
		out[e.Name] = e.Val
	}
	return out
}

// DimValString renders the tuple like "x=4, y=8".
func (t IntTuple) DimValString() string {
	return t.FormatDimVals(", ", "=", "", "")
}

// FormatDimVals renders each entry as prefix+name+infix+value+suffix joined by sep.
func (t IntTuple) FormatDimVals(sep, infix, prefix, suffix string) string {
	parts := make([]string, len(t.entries))
	for i, e := range t.entries {
		parts[i] = prefix + e.Name + infix + strconv.Itoa(e.Val) + suffix
	}
	return strings.Join(parts, sep)
}

// ValString renders values only, like "4, 8".
func (t IntTuple) ValString() string {
	return t.FormatVals(", ", "", "")
}

// FormatVals renders each value as prefix+value+suffix joined by sep.
func (t IntTuple) FormatVals(sep, prefix, suffix string) string {
	parts := make([]string, len(t.entries))
	for i, e := range t.entries {
		parts[i] = prefix + strconv.Itoa(e.Val) + suffix
	}
	return strings.Join(parts, sep)
}

// String implements fmt.Stringer.
func (t IntTuple) String() string {
	return "(" + t.DimValString() + ")"
}
