package dashboard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wilbersoares/projeto-fatec/internal/analytics"
	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Renderer renders views over one immutable base dataset. It is safe for
// concurrent use.
type Renderer struct {
	base       *domain.Dataset
	limits     Limits
	controller *filter.Controller
	peaks      []domain.YearTotal
	publishers []string
	notes      Notes
}

// NewRenderer precomputes the filter universe, the peak years and the
// publisher list of base. An empty base dataset cannot be rendered.
func NewRenderer(base *domain.Dataset, limits Limits) (*Renderer, error) {
	universe, err := filter.NewUniverse(base)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		base:       base,
		limits:     limits,
		controller: filter.NewController(universe),
		peaks:      analytics.PeakYears(analytics.YearTrend(base, domain.MetricGlobal), limits.PeakYears),
		publishers: base.Distinct(domain.DimensionPublisher),
		notes:      DefaultNotes(),
	}, nil
}

// Controller returns the filter controller bound to the base dataset.
func (r *Renderer) Controller() *filter.Controller {
	return r.controller
}

// Base returns the unfiltered dataset.
func (r *Renderer) Base() *domain.Dataset {
	return r.base
}

// PeakYears returns the best selling years of the base dataset.
func (r *Renderer) PeakYears() []domain.YearTotal {
	return append([]domain.YearTotal{}, r.peaks...)
}

// Publishers returns every publisher of the base dataset, sorted.
func (r *Renderer) Publishers() []string {
	return append([]string{}, r.publishers...)
}

// DefaultOptions returns the default options with the configured region top.
func (r *Renderer) DefaultOptions() Options {
	return r.withDefaults(Options{})
}

func (r *Renderer) withDefaults(opts Options) Options {
	if opts.RegionTop == 0 {
		opts.RegionTop = r.limits.RegionTopDefault
	}
	return opts.WithDefaults()
}

// Filtered validates state and applies it to the base dataset. It returns
// filter.ErrNoData when nothing matches.
func (r *Renderer) Filtered(state filter.State) (*domain.Dataset, error) {
	if err := r.controller.Validate(state); err != nil {
		return nil, err
	}
	return filter.Apply(r.base, state)
}

// Render builds the view model of state and opts. An empty filtered view is
// not an error: the model carries NoData and the warning instead of
// sections.
func (r *Renderer) Render(state filter.State, opts Options) (*ViewModel, error) {
	opts = r.withDefaults(opts.Clone())
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.CompareItems) > r.limits.MaxCompareItems {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("at most %d items can be compared", r.limits.MaxCompareItems))
	}
	if opts.Publisher != "" && !contains(r.publishers, opts.Publisher) {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown publisher %q", opts.Publisher))
	}

	vm := &ViewModel{
		State:      state.Clone(),
		Options:    opts,
		Universe:   r.controller.Universe(),
		PeakYears:  r.PeakYears(),
		Publishers: r.Publishers(),
		Notes:      r.notes,
	}

	filtered, err := r.Filtered(state)
	if errors.Is(err, filter.ErrNoData) {
		vm.NoData = true
		vm.Warning = filter.NoDataWarning
		return vm, nil
	}
	if err != nil {
		return nil, err
	}

	sections, err := r.sections(filtered, state, opts)
	if err != nil {
		return nil, err
	}
	vm.Sections = sections
	return vm, nil
}

func (r *Renderer) sections(ds *domain.Dataset, state filter.State, opts Options) (*Sections, error) {
	s := &Sections{
		Metrics:         analytics.KeyMetrics(ds),
		GenreTotals:     analytics.CategoryTotals(ds, domain.DimensionGenre, domain.MetricGlobal, 0),
		PlatformTotals:  analytics.CategoryTotals(ds, domain.DimensionPlatform, domain.MetricGlobal, r.limits.PlatformTopN),
		PublisherTotals: analytics.CategoryTotals(ds, domain.DimensionPublisher, domain.MetricGlobal, r.limits.PublisherTopN),
		Trend:           analytics.YearTrend(ds, domain.MetricGlobal),
		Regional:        analytics.RegionalSplit(ds),
	}

	var err error
	if s.Hierarchy, err = analytics.Hierarchy(ds, opts.TreemapDetail); err != nil {
		return nil, err
	}
	if s.RegionDetail, err = analytics.RegionDetail(ds, opts.Region, opts.RegionBy, opts.RegionTop); err != nil {
		return nil, err
	}
	if state.PeakYear != nil {
		s.PeakFocus = &PeakFocus{
			Year:   *state.PeakYear,
			Genres: s.GenreTotals,
		}
	}
	if s.Compare, err = r.compare(ds, opts); err != nil {
		return nil, err
	}
	if s.MarketShare, err = r.marketShare(ds, opts); err != nil {
		return nil, err
	}

	s.TopGames = TopGamesView{Games: analytics.TopRecords(ds, domain.MetricGlobal, r.limits.TopGames)}
	if len(s.TopGames.Games) == 0 {
		s.TopGames.Info = TopGamesEmptyInfo
	}

	s.Publisher = r.publisher(ds, opts.Publisher)
	return s, nil
}

// compare keeps only the requested items still present in the filtered data.
func (r *Renderer) compare(ds *domain.Dataset, opts Options) (CompareView, error) {
	available := ds.Distinct(opts.CompareBy)
	view := CompareView{
		By:        opts.CompareBy,
		Available: available,
		Items:     intersect(opts.CompareItems, available),
		Series:    []domain.SeriesPoint{},
	}
	if len(view.Items) == 0 {
		view.Info = CompareInfo
		return view, nil
	}

	series, err := analytics.Compare(ds, opts.CompareBy, view.Items)
	if err != nil {
		return CompareView{}, err
	}
	view.Series = series
	return view, nil
}

func (r *Renderer) marketShare(ds *domain.Dataset, opts Options) (ShareView, error) {
	rows, err := analytics.MarketShare(ds, opts.ShareBy)
	if err != nil {
		return ShareView{}, err
	}

	available := ds.Distinct(opts.ShareBy)
	view := ShareView{
		By:        opts.ShareBy,
		Available: available,
		Excluded:  []string{},
		Rows:      []domain.ShareRow{},
		Coverage:  []domain.YearTotal{},
	}

	if opts.ShareCategories == nil {
		view.Selected = analytics.DefaultShareCategories(ds, opts.ShareBy, r.limits.MarketShareTopN)
		if len(view.Selected) == 0 {
			view.Selected = available
		}
	} else {
		view.Selected = intersect(opts.ShareCategories, available)
	}
	if len(view.Selected) == 0 {
		view.Info = ShareEmptyInfo
		return view, nil
	}

	view.Rows = analytics.RestrictShare(rows, view.Selected)
	view.Excluded = analytics.ExcludedCategories(rows, view.Selected)
	view.Coverage = analytics.ShareCoverage(view.Rows)
	return view, nil
}

func (r *Renderer) publisher(ds *domain.Dataset, name string) PublisherView {
	if name == "" {
		return PublisherView{Info: PublisherPromptInfo}
	}

	drill := analytics.PublisherBreakdown(ds, name, r.limits.PublisherPlatformTopN)
	view := PublisherView{Drilldown: &drill}
	if drill.Empty {
		view.Info = PublisherEmptyInfo
	}
	return view
}

// intersect keeps the values of want that appear in sorted, in want's order,
// without duplicates.
func intersect(want, sorted []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(want))
	for _, v := range want {
		if _, dup := seen[v]; dup || !contains(sorted, v) {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func contains(sorted []string, v string) bool {
	i := sort.SearchStrings(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
