// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package dims defines the dimensions of a stencil solution and how they
// are classified.
//
// A Dim is created once per solution and shared by reference: grids and
// index expressions hold the same *Dim, so two dims are "the same" when they
// are the same pointer. Dimensions is the classification record consumed by
// the grid analysis: which dim is the step dim, which are domain and misc
// dims, and the vector-fold and cluster shapes chosen for code generation.
package dims

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/stencilgrid/internal/tuple"
)

// Type tags a dimension.
type Type int

const (
	// Step is the temporal/iteration dimension.
	Step Type = iota
	// Domain is a spatial dimension that can carry halos and be folded.
	Domain
	// Misc is any other dimension, indexed by constants only.
	Misc
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Step:
		return "step"
	case Domain:
		return "domain"
	case Misc:
		return "misc"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Dim is a named dimension.
type Dim struct {
	name string
	typ  Type
}

// New creates a dimension.
func New(name string, typ Type) *Dim {
	if name == "" {
		panic("dims: empty dimension name")
	}
	return &Dim{name: name, typ: typ}
}

// Name returns the dimension name.
func (d *Dim) Name() string { return d.name }

// Type returns the dimension type tag.
func (d *Dim) Type() Type { return d.typ }

// IsSame reports whether d and other are the same dimension object.
func (d *Dim) IsSame(other *Dim) bool { return d == other }

// Equal reports whether d and other have the same name and type.
func (d *Dim) Equal(other *Dim) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.name == other.name && d.typ == other.typ
}

// String implements fmt.Stringer.
func (d *Dim) String() string { return d.name }

// Dimensions is the classification of a solution's dimensions.
type Dimensions struct {
	stepDim *Dim
	domain  []*Dim
	misc    []*Dim

	// Fold is the vector-fold shape: points per fold dimension.
	Fold tuple.IntTuple
	// Cluster is the unroll shape in vectors per dimension.
	Cluster tuple.IntTuple
}

// NewDimensions creates the dimension objects for a solution. step may be
// empty when the solution has no step dimension.
func NewDimensions(step string, domain, misc []string) (*Dimensions, error) {
	d := &Dimensions{}
	seen := make(map[string]struct{})
	add := func(name string) error {
		if name == "" {
			return errors.New("dimension name cannot be empty")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("dimension %q declared more than once", name)
		}
		seen[name] = struct{}{}
		return nil
	}

	if step != "" {
		if err := add(step); err != nil {
			return nil, err
		}
		d.stepDim = New(step, Step)
	}
	for _, n := range domain {
		if err := add(n); err != nil {
			return nil, err
		}
		d.domain = append(d.domain, New(n, Domain))
	}
	for _, n := range misc {
		if err := add(n); err != nil {
			return nil, err
		}
		d.misc = append(d.misc, New(n, Misc))
	}
	return d, nil
}

// StepDim returns the step dimension or nil.
func (d *Dimensions) StepDim() *Dim { return d.stepDim }

// StepDimName returns the step dimension name or "".
func (d *Dimensions) StepDimName() string {
	if d.stepDim == nil {
		return ""
	}
	return d.stepDim.name
}

// DomainDims returns the domain dimensions in declaration order.
func (d *Dimensions) DomainDims() []*Dim { return slices.Clone(d.domain) }

// MiscDims returns the misc dimensions in declaration order.
func (d *Dimensions) MiscDims() []*Dim { return slices.Clone(d.misc) }

// DomainDimNames returns the domain dimension names in declaration order.
func (d *Dimensions) DomainDimNames() []string {
	out := make([]string, len(d.domain))
	for i, dim := range d.domain {
		out[i] = dim.name
	}
	return out
}

// StencilDims returns the step dim (if any) followed by the domain dims.
func (d *Dimensions) StencilDims() []*Dim {
	var out []*Dim
	if d.stepDim != nil {
		out = append(out, d.stepDim)
	}
	return append(out, d.domain...)
}

// All returns every dimension: step, domain, then misc.
func (d *Dimensions) All() []*Dim {
	return append(d.StencilDims(), d.misc...)
}

// Lookup finds a dimension by name.
func (d *Dimensions) Lookup(name string) (*Dim, bool) {
	for _, dim := range d.All() {
		if dim.name == name {
			return dim, true
		}
	}
	return nil, false
}

// IsFoldDim reports whether name is part of the fold shape.
func (d *Dimensions) IsFoldDim(name string) bool { return d.Fold.Has(name) }

// VecLen returns the number of points in one folded vector.
func (d *Dimensions) VecLen() int { return d.Fold.Product() }

// ClusterPts returns the number of points per dimension in one cluster:
// fold points times cluster multiplier.
func (d *Dimensions) ClusterPts() tuple.IntTuple {
	var out tuple.IntTuple
	for _, dim := range d.domain {
		f, ok := d.Fold.Lookup(dim.name)
		if !ok {
			f = 1
		}
		c, ok := d.Cluster.Lookup(dim.name)
		if !ok {
			c = 1
		}
		out.AddDimBack(dim.name, f*c)
	}
	return out
}

// Validate checks the fold and cluster shapes against the declared dims.
func (d *Dimensions) Validate() error {
	var errs []error
	for _, shape := range []struct {
		what string
		t    tuple.IntTuple
	}{{"fold", d.Fold}, {"cluster", d.Cluster}} {
		for _, e := range shape.t.Entries() {
			dim, ok := d.Lookup(e.Name)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s dimension %q is not declared", shape.what, e.Name))
			case dim.typ != Domain:
				errs = append(errs, fmt.Errorf("%s dimension %q must be a domain dimension, not %s", shape.what, e.Name, dim.typ))
			case e.Val < 1:
				errs = append(errs, fmt.Errorf("%s size for %q must be at least 1, got %d", shape.what, e.Name, e.Val))
			}
		}
	}
	return errors.Join(errs...)
}

// CheckDimType verifies that dim exists and has one of the allowed types.
// fnName names the calling operation in the error.
func (d *Dimensions) CheckDimType(dim, fnName string, stepOK, domainOK, miscOK bool) error {
	found, ok := d.Lookup(dim)
	if !ok {
		return fmt.Errorf("%s: %q is not a recognized dimension", fnName, dim)
	}
	switch found.typ {
	case Step:
		if !stepOK {
			return fmt.Errorf("%s: %q is the step dimension, which is not allowed here", fnName, dim)
		}
	case Domain:
		if !domainOK {
			return fmt.Errorf("%s: %q is a domain dimension, which is not allowed here", fnName, dim)
		}
	case Misc:
		if !miscOK {
			return fmt.Errorf("%s: %q is a misc dimension, which is not allowed here", fnName, dim)
		}
	}
	return nil
}
