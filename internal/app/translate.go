package app

import (
	"fmt"

	"github.com/tourstat/compass/internal/config"
	"github.com/tourstat/compass/internal/domain/composite"
	"github.com/tourstat/compass/internal/domain/indicator"
	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/tier"
)

// buildFormulas converts configured indicators into domain formulas.
func buildFormulas(in []config.Indicator) ([]indicator.Formula, error) {
	out := make([]indicator.Formula, len(in))
	for i, c := range in {
		out[i] = indicator.Formula{
			Name:       c.Name,
			Metric:     model.Metric(c.Metric),
			Kind:       indicator.Kind(c.Kind),
			MinPeriods: c.MinPeriods,
			Cap:        c.Cap,
			Sample:     c.Sample,
		}
	}
	return out, nil
}

// buildScheme converts a configured scheme into a domain scheme plus its
// sort direction.
func buildScheme(in config.Scheme) (composite.Scheme, model.SortOrder, error) {
	components := make([]composite.Component, len(in.Components))
	for i, c := range in.Components {
		components[i] = composite.Component{
			Indicator: c.Indicator,
			Weight:    c.Weight,
			Ascending: c.Ascending,
		}
	}

	mode := composite.Mode(in.Mode)
	if in.Mode == "" {
		mode = composite.ModeWeighted
	}
	missing := composite.MissingPolicy(in.Missing)
	if in.Missing == "" {
		missing = composite.MissingExclude
	}

	var order model.SortOrder
	switch in.Direction {
	case "", "desc":
		order = model.Descending
	case "asc":
		order = model.Ascending
	default:
		return composite.Scheme{}, 0, fmt.Errorf("%w: scheme %q has unknown direction %q",
			composite.ErrInvalidScheme, in.ID, in.Direction)
	}

	scheme := composite.Scheme{
		ID:         in.ID,
		Mode:       mode,
		Components: components,
		Missing:    missing,
		Order:      order,
		RankTiles:  in.RankTiles,
	}
	return scheme, order, nil
}

func buildBands(in []config.Band) []tier.Band {
	out := make([]tier.Band, len(in))
	for i, b := range in {
		out[i] = tier.Band{Lower: b.Lower, Label: b.Label}
	}
	return out
}
