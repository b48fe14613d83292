package domain

// MinPlausibleYear is the earliest release year accepted into a Dataset.
const MinPlausibleYear = 1950

// Internal canonical column names.
const (
	ColumnName        = "Nome"
	ColumnPlatform    = "Console"
	ColumnYear        = "Ano"
	ColumnGenre       = "Genero"
	ColumnPublisher   = "Editora"
	ColumnSalesNA     = "vendas_na"
	ColumnSalesEU     = "vendas_eu"
	ColumnSalesJP     = "vendas_jp"
	ColumnSalesOther  = "vendas_outros"
	ColumnSalesGlobal = "vendas_globais"
)

// CanonicalColumns lists the internal schema in table order.
var CanonicalColumns = []string{
	ColumnName, ColumnPlatform, ColumnYear, ColumnGenre, ColumnPublisher,
	ColumnSalesNA, ColumnSalesEU, ColumnSalesJP, ColumnSalesOther, ColumnSalesGlobal,
}

// GameSale is one platform-specific sales observation. Sales are in millions
// of units and are never negative.
type GameSale struct {
	Name        string  `json:"Nome"`
	Platform    string  `json:"Console"`
	Year        int     `json:"Ano"`
	Genre       string  `json:"Genero"`
	Publisher   string  `json:"Editora"`
	SalesNA     float64 `json:"vendas_na"`
	SalesEU     float64 `json:"vendas_eu"`
	SalesJP     float64 `json:"vendas_jp"`
	SalesOther  float64 `json:"vendas_outros"`
	SalesGlobal float64 `json:"vendas_globais"`
}

// Dimension is a categorical column records can be grouped by.
type Dimension string

const (
	DimensionName      Dimension = ColumnName
	DimensionPlatform  Dimension = ColumnPlatform
	DimensionGenre     Dimension = ColumnGenre
	DimensionPublisher Dimension = ColumnPublisher
)

// Valid reports whether d names a known categorical column.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionName, DimensionPlatform, DimensionGenre, DimensionPublisher:
		return true
	}
	return false
}

// Label returns the display name used in chart titles.
func (d Dimension) Label() string {
	switch d {
	case DimensionName:
		return "Jogo"
	case DimensionPlatform:
		return "Plataforma"
	case DimensionGenre:
		return "Gênero"
	case DimensionPublisher:
		return "Editora"
	}
	return string(d)
}

// Value returns the record's value for dimension d.
func (s GameSale) Value(d Dimension) string {
	switch d {
	case DimensionName:
		return s.Name
	case DimensionPlatform:
		return s.Platform
	case DimensionGenre:
		return s.Genre
	case DimensionPublisher:
		return s.Publisher
	}
	return ""
}

// Metric is a numeric sales column.
type Metric string

const (
	MetricNA     Metric = ColumnSalesNA
	MetricEU     Metric = ColumnSalesEU
	MetricJP     Metric = ColumnSalesJP
	MetricOther  Metric = ColumnSalesOther
	MetricGlobal Metric = ColumnSalesGlobal
)

// Metrics lists every sales column, regional first.
var Metrics = []Metric{MetricNA, MetricEU, MetricJP, MetricOther, MetricGlobal}

// Valid reports whether m names a known sales column.
func (m Metric) Valid() bool {
	switch m {
	case MetricNA, MetricEU, MetricJP, MetricOther, MetricGlobal:
		return true
	}
	return false
}

// Amount returns the record's sales for metric m.
func (s GameSale) Amount(m Metric) float64 {
	switch m {
	case MetricNA:
		return s.SalesNA
	case MetricEU:
		return s.SalesEU
	case MetricJP:
		return s.SalesJP
	case MetricOther:
		return s.SalesOther
	case MetricGlobal:
		return s.SalesGlobal
	}
	return 0
}

// Region is one of the four regional sales columns.
type Region = Metric

// Regions lists the regional columns in display order.
var Regions = []Region{MetricNA, MetricEU, MetricJP, MetricOther}

var regionNames = map[Region]string{
	MetricNA:    "América do Norte (NA)",
	MetricEU:    "Europa (EU)",
	MetricJP:    "Japão (JP)",
	MetricOther: "Outras Regiões",
}

// IsRegion reports whether m is one of the four regional columns.
func IsRegion(m Metric) bool {
	_, ok := regionNames[m]
	return ok
}

// RegionName returns the display name of a regional column.
func RegionName(r Region) string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return string(r)
}
