package analytics

import (
	"fmt"

	"github.com/montanaflynn/stats"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Limits of the region detail and comparison views.
const (
	DefaultRegionTop     = 10
	MinRegionTop         = 5
	MaxRegionTop         = 30
	MaxCompareItems      = 3
	PublisherPlatformTop = 10
)

// PublisherDrilldown is the breakdown of one publisher's sales.
type PublisherDrilldown struct {
	Publisher string                 `json:"publisher"`
	Empty     bool                   `json:"empty"`
	Total     float64                `json:"total"`
	Genres    []domain.CategoryTotal `json:"genres"`
	Platforms []domain.CategoryTotal `json:"platforms"`
}

// PublisherBreakdown restricts ds to publisher and totals global sales by
// genre (every genre) and by platform (top topPlatforms).
func PublisherBreakdown(ds *domain.Dataset, publisher string, topPlatforms int) PublisherDrilldown {
	restricted := ds.Filter(func(r domain.GameSale) bool { return r.Publisher == publisher })
	out := PublisherDrilldown{
		Publisher: publisher,
		Empty:     restricted.Empty(),
		Genres:    CategoryTotals(restricted, domain.DimensionGenre, domain.MetricGlobal, 0),
		Platforms: CategoryTotals(restricted, domain.DimensionPlatform, domain.MetricGlobal, topPlatforms),
	}
	for _, g := range out.Genres {
		out.Total += g.Value
	}
	return out
}

// Metrics are the headline figures of a filtered dataset.
type Metrics struct {
	Records          int     `json:"records"`
	TotalGlobal      float64 `json:"total_global_sales"`
	MeanGlobal       float64 `json:"mean_global_sales"`
	MedianGlobal     float64 `json:"median_global_sales"`
	UniqueGames      int     `json:"unique_games"`
	UniquePublishers int     `json:"unique_publishers"`
}

// KeyMetrics summarizes global sales and counts distinct games and
// publishers.
func KeyMetrics(ds *domain.Dataset) Metrics {
	sales := make(stats.Float64Data, 0, ds.Len())
	ds.Each(func(r domain.GameSale) {
		sales = append(sales, r.SalesGlobal)
	})

	m := Metrics{
		Records:          ds.Len(),
		UniqueGames:      len(ds.Distinct(domain.DimensionName)),
		UniquePublishers: len(ds.Distinct(domain.DimensionPublisher)),
	}
	if len(sales) == 0 {
		return m
	}

	m.TotalGlobal, _ = stats.Sum(sales)
	m.MeanGlobal, _ = stats.Mean(sales)
	m.MedianGlobal, _ = stats.Median(sales)
	return m
}

// RegionDetailView ranks one region's sales either by category or by game.
type RegionDetailView struct {
	Region domain.Region          `json:"region"`
	Label  string                 `json:"label"`
	By     domain.Dimension       `json:"by"`
	Totals []domain.CategoryTotal `json:"totals,omitempty"`
	Games  []domain.GameSale      `json:"games,omitempty"`
}

// RegionDetail totals region by genre or platform (every category), or lists
// the top records by that region when by is the game name.
func RegionDetail(ds *domain.Dataset, region domain.Region, by domain.Dimension, topGames int) (RegionDetailView, error) {
	if !domain.IsRegion(region) {
		return RegionDetailView{}, apperrors.NewAppValidationError(fmt.Sprintf("unknown region %q", region))
	}

	view := RegionDetailView{Region: region, Label: domain.RegionName(region), By: by}
	switch by {
	case domain.DimensionGenre, domain.DimensionPlatform:
		view.Totals = CategoryTotals(ds, by, region, 0)
	case domain.DimensionName:
		if topGames <= 0 {
			topGames = DefaultRegionTop
		}
		if topGames < MinRegionTop || topGames > MaxRegionTop {
			return RegionDetailView{}, apperrors.NewAppValidationError(
				fmt.Sprintf("top games must be between %d and %d", MinRegionTop, MaxRegionTop))
		}
		view.Games = TopRecords(ds, region, topGames)
	default:
		return RegionDetailView{}, apperrors.NewAppValidationError(fmt.Sprintf("region detail cannot group by %q", by))
	}
	return view, nil
}

// Compare builds a per-year global sales series for each item of dim. Points
// follow the item order given, then year ascending.
func Compare(ds *domain.Dataset, dim domain.Dimension, items []string) ([]domain.SeriesPoint, error) {
	if dim != domain.DimensionGenre && dim != domain.DimensionPlatform {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("comparison must be by %s or %s, got %q", domain.DimensionGenre, domain.DimensionPlatform, dim))
	}
	if len(items) > MaxCompareItems {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("at most %d items can be compared", MaxCompareItems))
	}

	points := []domain.SeriesPoint{}
	for _, item := range items {
		subset := ds.Filter(func(r domain.GameSale) bool { return r.Value(dim) == item })
		for _, yt := range YearTrend(subset, domain.MetricGlobal) {
			points = append(points, domain.SeriesPoint{Item: item, Year: yt.Year, Value: yt.Value})
		}
	}
	return points, nil
}

