package filter

import (
	"fmt"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Controller applies user actions to filter states within a fixed Universe.
// Every operation returns a new State and leaves its input untouched.
type Controller struct {
	universe Universe
}

// NewController creates a controller for the given universe.
func NewController(universe Universe) *Controller {
	return &Controller{universe: universe}
}

// Universe returns the filter domain.
func (c *Controller) Universe() Universe {
	return c.universe
}

// Default selects every year, platform and genre.
func (c *Controller) Default() State {
	return State{
		Years:     c.universe.Years,
		Platforms: normalize(c.universe.Platforms),
		Genres:    normalize(c.universe.Genres),
	}
}

// Reset is Default under the name of the user action.
func (c *Controller) Reset() State {
	return c.Default()
}

// SetYearRange replaces the year range and clears the peak year focus.
func (c *Controller) SetYearRange(s State, min, max int) (State, error) {
	if err := c.checkRange(min, max); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Years = YearRange{Min: min, Max: max}
	next.PeakYear = nil
	return next, nil
}

// ApplyPeakYear narrows the range to the single year and focuses on it.
func (c *Controller) ApplyPeakYear(s State, year int) (State, error) {
	if err := c.checkRange(year, year); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Years = YearRange{Min: year, Max: year}
	next.PeakYear = &year
	return next, nil
}

// RestoreAllYears widens the range to the full dataset bounds regardless of
// any earlier custom range, and clears the peak year focus.
func (c *Controller) RestoreAllYears(s State) State {
	next := s.Clone()
	next.Years = c.universe.Years
	next.PeakYear = nil
	return next
}

// Clear empties the selection of dim.
func (c *Controller) Clear(s State, dim domain.Dimension) (State, error) {
	return c.replace(s, dim, []string{})
}

// SelectAll selects every value of dim present in the base dataset.
func (c *Controller) SelectAll(s State, dim domain.Dimension) (State, error) {
	all, err := c.universe.Values(dim)
	if err != nil {
		return s, err
	}
	return c.replace(s, dim, all)
}

// SetSelection overwrites the selection of dim. Values unknown to the base
// dataset are rejected.
func (c *Controller) SetSelection(s State, dim domain.Dimension, values []string) (State, error) {
	all, err := c.universe.Values(dim)
	if err != nil {
		return s, err
	}
	known := toSet(all)
	var unknown []string
	for _, v := range values {
		if _, ok := known[v]; !ok {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		return s, apperrors.NewAppValidationError(
			fmt.Sprintf("unknown %s values: %v", dim, normalize(unknown)))
	}
	return c.replace(s, dim, values)
}

// Validate checks that s fits the universe: a range inside the bounds,
// selections drawn from the base dataset and a peak focus matching the range.
func (c *Controller) Validate(s State) error {
	if err := c.checkRange(s.Years.Min, s.Years.Max); err != nil {
		return err
	}
	for _, dim := range []domain.Dimension{domain.DimensionPlatform, domain.DimensionGenre} {
		selected, _ := s.Selection(dim)
		if _, err := c.SetSelection(s, dim, selected); err != nil {
			return err
		}
	}
	if s.PeakYear != nil && (s.Years.Min != *s.PeakYear || s.Years.Max != *s.PeakYear) {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("peak year %d requires the year range [%d, %d]", *s.PeakYear, *s.PeakYear, *s.PeakYear))
	}
	return nil
}

func (c *Controller) replace(s State, dim domain.Dimension, values []string) (State, error) {
	next := s.Clone()
	switch dim {
	case domain.DimensionPlatform:
		next.Platforms = normalize(values)
	case domain.DimensionGenre:
		next.Genres = normalize(values)
	default:
		return s, unsupportedDimension(dim)
	}
	return next, nil
}

func (c *Controller) checkRange(min, max int) error {
	bounds := c.universe.Years
	if min > max {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("year range start %d is after its end %d", min, max))
	}
	if !bounds.Contains(min) || !bounds.Contains(max) {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("year range [%d, %d] is outside the dataset bounds [%d, %d]", min, max, bounds.Min, bounds.Max))
	}
	return nil
}
