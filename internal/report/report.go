// Package report describes an analysed solution as plain data and renders it
// as a text table, JSON, YAML or msgpack.
package report

import (
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/vk/stencilgrid/internal/grid"
	"github.com/vk/stencilgrid/internal/soln"
)

// TimeLayout is the strftime layout of Report.GeneratedAt.
const TimeLayout = "%Y-%m-%dT%H:%M:%SZ"

// Report is the serialisable view of one analysed solution.
type Report struct {
	Solution    string       `cty:"solution" json:"solution" yaml:"solution" msgpack:"solution"`
	Description string       `cty:"description" json:"description" yaml:"description" msgpack:"description"`
	GeneratedAt string       `cty:"generated_at" json:"generated_at" yaml:"generated_at" msgpack:"generated_at"`
	Dimensions  Dimensions   `cty:"dimensions" json:"dimensions" yaml:"dimensions" msgpack:"dimensions"`
	Grids       []Grid       `cty:"grids" json:"grids" yaml:"grids" msgpack:"grids"`
	Packs       []Pack       `cty:"packs" json:"packs" yaml:"packs" msgpack:"packs"`
	Scans       []ScanResult `cty:"scans" json:"scans" yaml:"scans" msgpack:"scans"`
}

// Dimensions is the dimension classification with the fold and cluster
// shapes.
type Dimensions struct {
	Step    string         `cty:"step" json:"step" yaml:"step" msgpack:"step"`
	Domain  []string       `cty:"domain" json:"domain" yaml:"domain" msgpack:"domain"`
	Misc    []string       `cty:"misc" json:"misc" yaml:"misc" msgpack:"misc"`
	Fold    map[string]int `cty:"fold" json:"fold" yaml:"fold" msgpack:"fold"`
	Cluster map[string]int `cty:"cluster" json:"cluster" yaml:"cluster" msgpack:"cluster"`
	VecLen  int            `cty:"vec_len" json:"vec_len" yaml:"vec_len" msgpack:"vec_len"`
}

// Grid is everything the analysis inferred about one grid.
type Grid struct {
	Name             string         `cty:"name" json:"name" yaml:"name" msgpack:"name"`
	Dims             []string       `cty:"dims" json:"dims" yaml:"dims" msgpack:"dims"`
	Scratch          bool           `cty:"scratch" json:"scratch" yaml:"scratch" msgpack:"scratch"`
	Foldable         bool           `cty:"foldable" json:"foldable" yaml:"foldable" msgpack:"foldable"`
	FoldableDims     int            `cty:"foldable_dims" json:"foldable_dims" yaml:"foldable_dims" msgpack:"foldable_dims"`
	StepAlloc        int            `cty:"step_alloc" json:"step_alloc" yaml:"step_alloc" msgpack:"step_alloc"`
	DynamicStepAlloc bool           `cty:"dynamic_step_alloc" json:"dynamic_step_alloc" yaml:"dynamic_step_alloc" msgpack:"dynamic_step_alloc"`
	StepOffsets      []int          `cty:"step_offsets" json:"step_offsets" yaml:"step_offsets" msgpack:"step_offsets"`
	MinIndices       map[string]int `cty:"min_indices" json:"min_indices" yaml:"min_indices" msgpack:"min_indices"`
	MaxIndices       map[string]int `cty:"max_indices" json:"max_indices" yaml:"max_indices" msgpack:"max_indices"`
	HaloLeft         map[string]int `cty:"halo_left" json:"halo_left" yaml:"halo_left" msgpack:"halo_left"`
	HaloRight        map[string]int `cty:"halo_right" json:"halo_right" yaml:"halo_right" msgpack:"halo_right"`
	PackHalos        []PackHalo     `cty:"pack_halos" json:"pack_halos" yaml:"pack_halos" msgpack:"pack_halos"`
}

// PackHalo is the halo one pack needs on each side of a grid, reduced over
// step offsets.
type PackHalo struct {
	Pack  string         `cty:"pack" json:"pack" yaml:"pack" msgpack:"pack"`
	Left  map[string]int `cty:"left" json:"left" yaml:"left" msgpack:"left"`
	Right map[string]int `cty:"right" json:"right" yaml:"right" msgpack:"right"`
}

// Pack lists the equations of one pack.
type Pack struct {
	Name      string     `cty:"name" json:"name" yaml:"name" msgpack:"name"`
	Equations []Equation `cty:"equations" json:"equations" yaml:"equations" msgpack:"equations"`
}

// Equation is one equation in source form.
type Equation struct {
	Name string `cty:"name" json:"name" yaml:"name" msgpack:"name"`
	Text string `cty:"text" json:"text" yaml:"text" msgpack:"text"`
}

// ScanResult summarises a run-time walk over one grid's padded domain.
type ScanResult struct {
	Grid     string  `cty:"grid" json:"grid" yaml:"grid" msgpack:"grid"`
	Range    string  `cty:"range" json:"range" yaml:"range" msgpack:"range"`
	Tiles    []int64 `cty:"tiles" json:"tiles" yaml:"tiles" msgpack:"tiles"`
	Points   int64   `cty:"points" json:"points" yaml:"points" msgpack:"points"`
	Verified bool    `cty:"verified" json:"verified" yaml:"verified" msgpack:"verified"`
}

// New builds the report of an analysed solution.
func New(s *soln.Solution, now time.Time) *Report {
	d := s.Dims()
	r := &Report{
		Solution:    s.Name(),
		Description: s.Description(),
		GeneratedAt: timefmt.Format(now.UTC(), TimeLayout),
		Dimensions: Dimensions{
			Step:    d.StepDimName(),
			Domain:  d.DomainDimNames(),
			Misc:    names(d.MiscDims()),
			Fold:    d.Fold.ToMap(),
			Cluster: d.Cluster.ToMap(),
			VecLen:  d.VecLen(),
		},
		Grids: []Grid{},
		Packs: []Pack{},
		Scans: []ScanResult{},
	}

	for _, g := range s.Grids().All() {
		r.Grids = append(r.Grids, newGrid(g))
	}
	for _, p := range s.Packs() {
		pk := Pack{Name: p.Name, Equations: []Equation{}}
		for _, eq := range p.Equations {
			pk.Equations = append(pk.Equations, Equation{Name: eq.Name, Text: eq.String()})
		}
		r.Packs = append(r.Packs, pk)
	}
	return r
}

func newGrid(g *grid.Grid) Grid {
	out := Grid{
		Name:             g.Name(),
		Dims:             g.DimNames(),
		Scratch:          g.IsScratch(),
		Foldable:         g.IsFoldable(),
		FoldableDims:     g.NumFoldableDims(),
		StepAlloc:        g.StepAllocSize(),
		DynamicStepAlloc: g.IsDynamicStepAlloc(),
		StepOffsets:      g.StepOffsets(),
		MinIndices:       g.MinIndices().ToMap(),
		MaxIndices:       g.MaxIndices().ToMap(),
		HaloLeft:         map[string]int{},
		HaloRight:        map[string]int{},
		PackHalos:        []PackHalo{},
	}
	if out.Dims == nil {
		out.Dims = []string{}
	}
	if out.StepOffsets == nil {
		out.StepOffsets = []int{}
	}
	for _, name := range out.Dims {
		if h := g.HaloSize(name, grid.Left); h > 0 {
			out.HaloLeft[name] = h
		}
		if h := g.HaloSize(name, grid.Right); h > 0 {
			out.HaloRight[name] = h
		}
	}
	for _, p := range g.HaloPacks() {
		out.PackHalos = append(out.PackHalos, PackHalo{
			Pack:  p,
			Left:  g.HaloSizes(p, grid.Left).ToMap(),
			Right: g.HaloSizes(p, grid.Right).ToMap(),
		})
	}
	return out
}

// AddScan appends the result of a scan walk.
func (r *Report) AddScan(res ScanResult) {
	r.Scans = append(r.Scans, res)
}

func names[T interface{ Name() string }](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}
