package dashboard

import (
	"github.com/wilbersoares/projeto-fatec/internal/analytics"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Info messages shown in place of an empty section.
const (
	CompareInfo         = "Selecione 1 a 3 itens para ver o comparativo."
	ShareEmptyInfo      = "Selecione pelo menos um item para visualizar a participação de mercado."
	TopGamesEmptyInfo   = "Nenhum jogo encontrado no Top 20 com os filtros atuais."
	PublisherEmptyInfo  = "Nenhum dado para a editora selecionada com os filtros atuais."
	PublisherPromptInfo = "Selecione uma editora para ver o detalhamento."
)

// ViewModel is everything a client needs to draw the dashboard. Sections is
// nil when the filters match no record.
type ViewModel struct {
	State      filter.State       `json:"state"`
	Options    Options            `json:"options"`
	Universe   filter.Universe    `json:"universe"`
	PeakYears  []domain.YearTotal `json:"peak_years"`
	Publishers []string           `json:"publishers"`
	Notes      Notes              `json:"notes"`
	NoData     bool               `json:"no_data"`
	Warning    string             `json:"warning,omitempty"`
	Sections   *Sections          `json:"sections,omitempty"`
}

// Sections holds the aggregates of a non-empty filtered view.
type Sections struct {
	Metrics         analytics.Metrics          `json:"metrics"`
	GenreTotals     []domain.CategoryTotal     `json:"genre_totals"`
	PlatformTotals  []domain.CategoryTotal     `json:"platform_totals"`
	PublisherTotals []domain.CategoryTotal     `json:"publisher_totals"`
	Trend           []domain.YearTotal         `json:"trend"`
	Regional        []domain.RegionTotal       `json:"regional"`
	Hierarchy       domain.HierarchyNode       `json:"hierarchy"`
	RegionDetail    analytics.RegionDetailView `json:"region_detail"`
	PeakFocus       *PeakFocus                 `json:"peak_focus,omitempty"`
	Compare         CompareView                `json:"compare"`
	MarketShare     ShareView                  `json:"market_share"`
	TopGames        TopGamesView               `json:"top_games"`
	Publisher       PublisherView              `json:"publisher"`
}

// PeakFocus breaks the focused peak year down by genre.
type PeakFocus struct {
	Year   int                    `json:"year"`
	Genres []domain.CategoryTotal `json:"genres"`
}

// CompareView is the per-year series of the compared items.
type CompareView struct {
	By        domain.Dimension     `json:"by"`
	Available []string             `json:"available"`
	Items     []string             `json:"items"`
	Series    []domain.SeriesPoint `json:"series"`
	Info      string               `json:"info,omitempty"`
}

// ShareView is the market share chart and its coverage.
type ShareView struct {
	By        domain.Dimension   `json:"by"`
	Available []string           `json:"available"`
	Selected  []string           `json:"selected"`
	Excluded  []string           `json:"excluded"`
	Rows      []domain.ShareRow  `json:"rows"`
	Coverage  []domain.YearTotal `json:"coverage"`
	Info      string             `json:"info,omitempty"`
}

// TopGamesView lists the best selling records.
type TopGamesView struct {
	Games []domain.GameSale `json:"games"`
	Info  string            `json:"info,omitempty"`
}

// PublisherView is the drill-down of the selected publisher.
type PublisherView struct {
	Drilldown *analytics.PublisherDrilldown `json:"drilldown,omitempty"`
	Info      string                        `json:"info,omitempty"`
}
