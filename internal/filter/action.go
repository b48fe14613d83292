package filter

import (
	"fmt"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/validation"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// ActionType names a user action on the filter state.
type ActionType string

const (
	ActionSetYearRange    ActionType = "set_year_range"
	ActionClear           ActionType = "clear"
	ActionSelectAll       ActionType = "select_all"
	ActionSetSelection    ActionType = "set_selection"
	ActionApplyPeakYear   ActionType = "apply_peak_year"
	ActionRestoreAllYears ActionType = "restore_all_years"
	ActionReset           ActionType = "reset"
)

// Action is one serializable user action. Which fields are required depends
// on Type.
type Action struct {
	Type      ActionType       `json:"type" validate:"required,oneof=set_year_range clear select_all set_selection apply_peak_year restore_all_years reset"`
	Min       *int             `json:"min,omitempty" validate:"omitempty,min=1950"`
	Max       *int             `json:"max,omitempty" validate:"omitempty,min=1950"`
	Dimension domain.Dimension `json:"dimension,omitempty" validate:"omitempty,oneof=Console Genero"`
	Values    []string         `json:"values,omitempty" validate:"omitempty,dive,required"`
	Year      *int             `json:"year,omitempty" validate:"omitempty,min=1950"`
}

// Validate checks the action's fields against its type.
func (a Action) Validate() error {
	if err := validation.Struct(a); err != nil {
		return err
	}

	switch a.Type {
	case ActionSetYearRange:
		if a.Min == nil || a.Max == nil {
			return apperrors.NewAppValidationError("set_year_range requires min and max")
		}
	case ActionClear, ActionSelectAll:
		if a.Dimension == "" {
			return apperrors.NewAppValidationError(fmt.Sprintf("%s requires a dimension", a.Type))
		}
	case ActionSetSelection:
		if a.Dimension == "" {
			return apperrors.NewAppValidationError("set_selection requires a dimension")
		}
	case ActionApplyPeakYear:
		if a.Year == nil {
			return apperrors.NewAppValidationError("apply_peak_year requires a year")
		}
	}
	return nil
}

// Dispatch validates a and applies it to s.
func (c *Controller) Dispatch(s State, a Action) (State, error) {
	if err := a.Validate(); err != nil {
		return s, err
	}

	switch a.Type {
	case ActionSetYearRange:
		return c.SetYearRange(s, *a.Min, *a.Max)
	case ActionClear:
		return c.Clear(s, a.Dimension)
	case ActionSelectAll:
		return c.SelectAll(s, a.Dimension)
	case ActionSetSelection:
		return c.SetSelection(s, a.Dimension, a.Values)
	case ActionApplyPeakYear:
		return c.ApplyPeakYear(s, *a.Year)
	case ActionRestoreAllYears:
		return c.RestoreAllYears(s), nil
	case ActionReset:
		return c.Reset(), nil
	}
	return s, apperrors.NewAppValidationError(fmt.Sprintf("unsupported action %q", a.Type))
}
