package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// ColumnRenames maps every external column to its internal name. Columns
// outside the map (Rank) are ignored.
var ColumnRenames = map[string]string{
	"Name":         domain.ColumnName,
	"Platform":     domain.ColumnPlatform,
	"Year":         domain.ColumnYear,
	"Genre":        domain.ColumnGenre,
	"Publisher":    domain.ColumnPublisher,
	"NA_Sales":     domain.ColumnSalesNA,
	"EU_Sales":     domain.ColumnSalesEU,
	"JP_Sales":     domain.ColumnSalesJP,
	"Other_Sales":  domain.ColumnSalesOther,
	"Global_Sales": domain.ColumnSalesGlobal,
}

// SourceColumns lists the external schema in file order.
var SourceColumns = []string{
	"Name", "Platform", "Year", "Genre", "Publisher",
	"NA_Sales", "EU_Sales", "JP_Sales", "Other_Sales", "Global_Sales",
}

// GenreTranslations maps the source genre labels to display labels. Labels
// outside the table pass through unchanged.
var GenreTranslations = map[string]string{
	"Action":       "Ação",
	"Sports":       "Esportes",
	"Platform":     "Plataforma",
	"Racing":       "Corrida",
	"Role-Playing": "RPG",
	"Misc":         "Diversos",
	"Simulation":   "Simulação",
	"Shooter":      "Tiro",
	"Adventure":    "Aventura",
	"Fighting":     "Luta",
	"Strategy":     "Estratégia",
	"Puzzle":       "Quebra-cabeça",
}

// missingTokens are cell values read as missing.
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Reasons a row is dropped during normalization.
const (
	DropMissingYear      = "missing_year"
	DropMissingPublisher = "missing_publisher"
	DropInvalidYear      = "invalid_year"
	DropImplausibleYear  = "implausible_year"
	DropInvalidSales     = "invalid_sales"
)

// NormalizeStats summarizes row-level outcomes of a normalization run.
type NormalizeStats struct {
	InputRows int            `json:"input_rows"`
	KeptRows  int            `json:"kept_rows"`
	Dropped   map[string]int `json:"dropped"`
}

// DroppedRows returns the total number of dropped rows.
func (s NormalizeStats) DroppedRows() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// IsMissing reports whether a cell holds no value.
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// ParseYear accepts integral years written as "2006" or "2006.0".
func ParseYear(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if year, err := strconv.Atoi(cell); err == nil {
		return year, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ParseSales reads a sales figure, accepting a decimal comma. NA tokens,
// unparseable text, NaN, infinities and negative values are missing.
func ParseSales(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cell), ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// TranslateGenre maps a source genre label to its display label.
func TranslateGenre(genre string) string {
	if translated, ok := GenreTranslations[genre]; ok {
		return translated
	}
	return genre
}

// Normalize renames the raw columns to the internal schema, coerces types and
// drops invalid rows. A missing source column fails the whole table.
func Normalize(raw *RawTable) (*domain.Dataset, NormalizeStats, error) {
	stats := NormalizeStats{Dropped: make(map[string]int)}
	if raw == nil {
		return nil, stats, apperrors.NewSchemaMismatchError("no table to normalize", nil)
	}
	stats.InputRows = len(raw.Rows)

	index, err := columnIndex(raw.Header)
	if err != nil {
		return nil, stats, err
	}

	records := make([]domain.GameSale, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		rec, reason := normalizeRow(row, index)
		if reason != "" {
			stats.Dropped[reason]++
			continue
		}
		records = append(records, rec)
	}

	stats.KeptRows = len(records)
	return domain.NewDataset(records), stats, nil
}

func columnIndex(header []string) (map[string]int, error) {
	present := make(map[string]int, len(header))
	trimmed := make([]string, len(header))
	for i, name := range header {
		trimmed[i] = strings.TrimSpace(name)
		present[trimmed[i]] = i
	}

	index := make(map[string]int, len(ColumnRenames))
	var missing []string
	for _, source := range SourceColumns {
		i, ok := present[source]
		if !ok {
			missing = append(missing, source)
			continue
		}
		index[ColumnRenames[source]] = i
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NewSchemaMismatchError(
			fmt.Sprintf("columns %v not found in input; present columns: %v", missing, trimmed), nil).
			WithContext("missing_columns", missing).
			WithContext("present_columns", trimmed)
	}
	return index, nil
}

func normalizeRow(row []string, index map[string]int) (domain.GameSale, string) {
	cell := func(column string) string {
		i := index[column]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	yearCell := cell(domain.ColumnYear)
	if IsMissing(yearCell) {
		return domain.GameSale{}, DropMissingYear
	}
	if IsMissing(cell(domain.ColumnPublisher)) {
		return domain.GameSale{}, DropMissingPublisher
	}

	year, ok := ParseYear(yearCell)
	if !ok {
		return domain.GameSale{}, DropInvalidYear
	}
	if year < domain.MinPlausibleYear {
		return domain.GameSale{}, DropImplausibleYear
	}

	var sales [5]float64
	for i, column := range []string{
		domain.ColumnSalesNA, domain.ColumnSalesEU, domain.ColumnSalesJP,
		domain.ColumnSalesOther, domain.ColumnSalesGlobal,
	} {
		v, ok := ParseSales(cell(column))
		if !ok {
			return domain.GameSale{}, DropInvalidSales
		}
		sales[i] = v
	}

	return domain.GameSale{
		Name:        cell(domain.ColumnName),
		Platform:    cell(domain.ColumnPlatform),
		Year:        year,
		Genre:       TranslateGenre(cell(domain.ColumnGenre)),
		Publisher:   cell(domain.ColumnPublisher),
		SalesNA:     sales[0],
		SalesEU:     sales[1],
		SalesJP:     sales[2],
		SalesOther:  sales[3],
		SalesGlobal: sales[4],
	}, ""
}
