package analytics

import (
	"fmt"
	"sort"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// DefaultShareTopN is the number of categories shown by default in the
// market share view.
const DefaultShareTopN = 7

type categoryYear struct {
	category string
	year     int
}

// MarketShare computes, for every year and every category present in that
// year, the category's percentage of the year's global sales. Years whose
// total is zero are excluded. Rows are ordered by year, then share
// descending, then category.
func MarketShare(ds *domain.Dataset, dim domain.Dimension) ([]domain.ShareRow, error) {
	if dim != domain.DimensionGenre && dim != domain.DimensionPlatform {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("market share category must be %s or %s, got %q", domain.DimensionGenre, domain.DimensionPlatform, dim))
	}

	yearTotals := make(map[int]float64)
	sums := make(map[categoryYear]float64)
	ds.Each(func(r domain.GameSale) {
		yearTotals[r.Year] += r.SalesGlobal
		sums[categoryYear{category: r.Value(dim), year: r.Year}] += r.SalesGlobal
	})

	rows := make([]domain.ShareRow, 0, len(sums))
	for key, value := range sums {
		total := yearTotals[key.year]
		if total <= 0 {
			continue
		}
		rows = append(rows, domain.ShareRow{
			Category:  key.category,
			Year:      key.year,
			Value:     value,
			YearTotal: total,
			Share:     value / total * 100,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].Share != rows[j].Share {
			return rows[i].Share > rows[j].Share
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// DefaultShareCategories returns the top min(n, categories) categories of dim
// by total global sales.
func DefaultShareCategories(ds *domain.Dataset, dim domain.Dimension, n int) []string {
	totals := CategoryTotals(ds, dim, domain.MetricGlobal, n)
	out := make([]string, len(totals))
	for i, t := range totals {
		out[i] = t.Category
	}
	return out
}

// RestrictShare keeps the rows of the selected categories, preserving order.
func RestrictShare(rows []domain.ShareRow, categories []string) []domain.ShareRow {
	keep := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		keep[c] = struct{}{}
	}

	out := make([]domain.ShareRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := keep[row.Category]; ok {
			out = append(out, row)
		}
	}
	return out
}

// ShareCoverage sums the shown percentages per year, ordered by year. A year
// whose categories are all shown covers 100.
func ShareCoverage(rows []domain.ShareRow) []domain.YearTotal {
	sums := make(map[int]float64)
	for _, row := range rows {
		sums[row.Year] += row.Share
	}

	out := make([]domain.YearTotal, 0, len(sums))
	for year, value := range sums {
		out = append(out, domain.YearTotal{Year: year, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ExcludedCategories lists the categories of rows missing from selected,
// sorted by name.
func ExcludedCategories(rows []domain.ShareRow, selected []string) []string {
	chosen := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		chosen[c] = struct{}{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range rows {
		if _, ok := chosen[row.Category]; ok {
			continue
		}
		if _, ok := seen[row.Category]; ok {
			continue
		}
		seen[row.Category] = struct{}{}
		out = append(out, row.Category)
	}
	sort.Strings(out)
	return out
}
