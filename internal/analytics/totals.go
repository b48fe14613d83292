package analytics

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Dashboard truncation defaults.
const (
	PlatformTopN  = 15
	PublisherTopN = 10
	PeakYearCount = 3
	TopGamesCount = 20
)

// CategoryTotals groups ds by dim and sums metric. Rows are sorted by value
// descending with ties broken by category name. topN <= 0 keeps every row.
func CategoryTotals(ds *domain.Dataset, dim domain.Dimension, metric domain.Metric, topN int) []domain.CategoryTotal {
	sums := make(map[string]float64)
	ds.Each(func(r domain.GameSale) {
		sums[r.Value(dim)] += r.Amount(metric)
	})

	rows := make([]domain.CategoryTotal, 0, len(sums))
	for category, value := range sums {
		rows = append(rows, domain.CategoryTotal{Category: category, Value: value})
	}
	sortTotals(rows)

	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func sortTotals(rows []domain.CategoryTotal) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Category < rows[j].Category
	})
}

// YearTrend sums metric per release year, ordered by year ascending.
func YearTrend(ds *domain.Dataset, metric domain.Metric) []domain.YearTotal {
	sums := make(map[int]float64)
	ds.Each(func(r domain.GameSale) {
		sums[r.Year] += r.Amount(metric)
	})

	rows := make([]domain.YearTotal, 0, len(sums))
	for year, value := range sums {
		rows = append(rows, domain.YearTotal{Year: year, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// PeakYears returns the n years of trend with the largest value. Equal values
// keep their order in trend, so the earlier year wins a tie.
func PeakYears(trend []domain.YearTotal, n int) []domain.YearTotal {
	ranked := make([]domain.YearTotal, len(trend))
	copy(ranked, trend)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RegionalSplit sums each regional column independently. Rows follow the
// fixed region order NA, EU, JP, Other.
func RegionalSplit(ds *domain.Dataset) []domain.RegionTotal {
	columns := make([][]float64, len(domain.Regions))
	ds.Each(func(r domain.GameSale) {
		for i, region := range domain.Regions {
			columns[i] = append(columns[i], r.Amount(region))
		}
	})

	rows := make([]domain.RegionTotal, len(domain.Regions))
	for i, region := range domain.Regions {
		rows[i] = domain.RegionTotal{
			Region: region,
			Label:  domain.RegionName(region),
			Value:  floats.Sum(columns[i]),
		}
	}
	return rows
}

// TopRecords returns the first n records sorted by metric descending. Records
// with equal values keep dataset order. n <= 0 returns every record.
func TopRecords(ds *domain.Dataset, metric domain.Metric, n int) []domain.GameSale {
	records := ds.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Amount(metric) > records[j].Amount(metric)
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	if records == nil {
		records = []domain.GameSale{}
	}
	return records
}
