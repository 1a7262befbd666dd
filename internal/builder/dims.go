package builder

import (
	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/tuple"
)

// buildDimensions classifies the dimension names and lays the fold and
// cluster shapes out in domain order. Sizes keyed by a name that is not a
// domain dimension are kept, after the domain ones, so that validation can
// report them.
func buildDimensions(def *config.Dimensions) (*dims.Dimensions, error) {
	d, err := dims.NewDimensions(def.Step, def.Domain, def.Misc)
	if err != nil {
		return nil, err
	}
	d.Fold = tuple.FromMap(def.Domain, def.Fold)
	d.Cluster = tuple.FromMap(def.Domain, def.Cluster)
	return d, nil
}
