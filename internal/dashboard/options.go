package dashboard

import (
	"github.com/wilbersoares/projeto-fatec/internal/analytics"
	"github.com/wilbersoares/projeto-fatec/internal/config"
	"github.com/wilbersoares/projeto-fatec/internal/validation"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Limits are the ranking sizes used by the renderer.
type Limits struct {
	PlatformTopN          int
	PublisherTopN         int
	PeakYears             int
	MarketShareTopN       int
	TopGames              int
	PublisherPlatformTopN int
	RegionTopDefault      int
	MaxCompareItems       int
}

// DefaultLimits returns the sizes of the original dashboard.
func DefaultLimits() Limits {
	return Limits{
		PlatformTopN:          analytics.PlatformTopN,
		PublisherTopN:         analytics.PublisherTopN,
		PeakYears:             analytics.PeakYearCount,
		MarketShareTopN:       analytics.DefaultShareTopN,
		TopGames:              analytics.TopGamesCount,
		PublisherPlatformTopN: analytics.PublisherPlatformTop,
		RegionTopDefault:      analytics.DefaultRegionTop,
		MaxCompareItems:       analytics.MaxCompareItems,
	}
}

// LimitsFrom reads the limits from configuration. Non-positive values keep
// the defaults and the comparison never exceeds analytics.MaxCompareItems.
func LimitsFrom(cfg config.DashboardConfig) Limits {
	l := DefaultLimits()
	pick := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	pick(&l.PlatformTopN, cfg.PlatformTopN)
	pick(&l.PublisherTopN, cfg.PublisherTopN)
	pick(&l.PeakYears, cfg.PeakYears)
	pick(&l.MarketShareTopN, cfg.MarketShareTopN)
	pick(&l.TopGames, cfg.TopGames)
	pick(&l.PublisherPlatformTopN, cfg.PublisherPlatform)
	pick(&l.RegionTopDefault, cfg.RegionTopDefault)
	pick(&l.MaxCompareItems, cfg.MaxCompareItems)

	if l.MaxCompareItems > analytics.MaxCompareItems {
		l.MaxCompareItems = analytics.MaxCompareItems
	}
	if l.RegionTopDefault < analytics.MinRegionTop || l.RegionTopDefault > analytics.MaxRegionTop {
		l.RegionTopDefault = analytics.DefaultRegionTop
	}
	return l
}

// Options are the per-view settings that are not filters.
//
// A nil ShareCategories selects the default categories; an empty, non-nil
// slice is an explicit empty selection.
type Options struct {
	TreemapDetail   domain.Dimension `json:"treemap_detail" validate:"omitempty,oneof=Genero Console"`
	Region          domain.Region    `json:"region" validate:"omitempty,oneof=vendas_na vendas_eu vendas_jp vendas_outros"`
	RegionBy        domain.Dimension `json:"region_by" validate:"omitempty,oneof=Genero Console Nome"`
	RegionTop       int              `json:"region_top" validate:"omitempty,min=5,max=30"`
	CompareBy       domain.Dimension `json:"compare_by" validate:"omitempty,oneof=Genero Console"`
	CompareItems    []string         `json:"compare_items" validate:"max=3,dive,required"`
	ShareBy         domain.Dimension `json:"share_by" validate:"omitempty,oneof=Genero Console"`
	ShareCategories []string         `json:"share_categories" validate:"omitempty,dive,required"`
	Publisher       string           `json:"publisher,omitempty"`
}

// DefaultOptions returns the options a new session starts with.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills every unset option.
func (o Options) WithDefaults() Options {
	if o.TreemapDetail == "" {
		o.TreemapDetail = domain.DimensionGenre
	}
	if o.Region == "" {
		o.Region = domain.MetricNA
	}
	if o.RegionBy == "" {
		o.RegionBy = domain.DimensionGenre
	}
	if o.RegionTop == 0 {
		o.RegionTop = analytics.DefaultRegionTop
	}
	if o.CompareBy == "" {
		o.CompareBy = domain.DimensionGenre
	}
	if o.CompareItems == nil {
		o.CompareItems = []string{}
	}
	if o.ShareBy == "" {
		o.ShareBy = domain.DimensionGenre
	}
	return o
}

// Validate checks the option values.
func (o Options) Validate() error {
	return validation.Struct(o)
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	out := o
	if o.CompareItems != nil {
		out.CompareItems = append([]string{}, o.CompareItems...)
	}
	if o.ShareCategories != nil {
		out.ShareCategories = append([]string{}, o.ShareCategories...)
	}
	return out
}
