package filter

import (
	"errors"
	"fmt"
	"sort"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// ErrNoData is returned by Apply when the filters match no record. It is a
// recoverable warning, not a failure.
var ErrNoData = errors.New("no records match the selected filters")

// NoDataWarning is the message shown in place of an empty view.
const NoDataWarning = "Nenhum dado encontrado com os filtros selecionados. Por favor, ajuste os filtros."

// YearRange is an inclusive range of release years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// State is the complete filter state of a dashboard session. Selections are
// kept sorted and deduplicated. PeakYear is set only while the range is
// narrowed to that single year by the peak year shortcut.
type State struct {
	Years     YearRange `json:"years"`
	Platforms []string  `json:"platforms"`
	Genres    []string  `json:"genres"`
	PeakYear  *int      `json:"peak_year,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Years:     s.Years,
		Platforms: append([]string{}, s.Platforms...),
		Genres:    append([]string{}, s.Genres...),
	}
	if s.PeakYear != nil {
		year := *s.PeakYear
		out.PeakYear = &year
	}
	return out
}

// Selection returns the selected values of dim.
func (s State) Selection(dim domain.Dimension) ([]string, error) {
	switch dim {
	case domain.DimensionPlatform:
		return s.Platforms, nil
	case domain.DimensionGenre:
		return s.Genres, nil
	}
	return nil, unsupportedDimension(dim)
}

// Universe holds the domain of every filter, derived once from the base
// dataset.
type Universe struct {
	Years     YearRange `json:"years"`
	Platforms []string  `json:"platforms"`
	Genres    []string  `json:"genres"`
}

// NewUniverse derives the filter domain from ds. An empty dataset has none.
func NewUniverse(ds *domain.Dataset) (Universe, error) {
	min, max, ok := ds.YearBounds()
	if !ok {
		return Universe{}, apperrors.NewAppValidationError("cannot derive filters from an empty dataset")
	}
	return Universe{
		Years:     YearRange{Min: min, Max: max},
		Platforms: ds.Distinct(domain.DimensionPlatform),
		Genres:    ds.Distinct(domain.DimensionGenre),
	}, nil
}

// Values returns every value of dim.
func (u Universe) Values(dim domain.Dimension) ([]string, error) {
	switch dim {
	case domain.DimensionPlatform:
		return u.Platforms, nil
	case domain.DimensionGenre:
		return u.Genres, nil
	}
	return nil, unsupportedDimension(dim)
}

// Apply keeps the records of ds inside the year range whose platform and
// genre are selected. An empty result returns ErrNoData with an empty dataset.
func Apply(ds *domain.Dataset, s State) (*domain.Dataset, error) {
	platforms := toSet(s.Platforms)
	genres := toSet(s.Genres)

	filtered := ds.Filter(func(r domain.GameSale) bool {
		if !s.Years.Contains(r.Year) {
			return false
		}
		if _, ok := platforms[r.Platform]; !ok {
			return false
		}
		_, ok := genres[r.Genre]
		return ok
	})

	if filtered.Empty() {
		return filtered, ErrNoData
	}
	return filtered, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// normalize returns a sorted, deduplicated copy of values, never nil.
func normalize(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func unsupportedDimension(dim domain.Dimension) error {
	return apperrors.NewAppValidationError(
		fmt.Sprintf("filter dimension must be %s or %s, got %q", domain.DimensionPlatform, domain.DimensionGenre, dim))
}
