package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

func sale(name, platform, genre, publisher string, year int, na, eu, jp, other float64) domain.GameSale {
	return domain.GameSale{
		Name: name, Platform: platform, Genre: genre, Publisher: publisher, Year: year,
		SalesNA: na, SalesEU: eu, SalesJP: jp, SalesOther: other,
		SalesGlobal: na + eu + jp + other,
	}
}

func fixture() *domain.Dataset {
	return domain.NewDataset([]domain.GameSale{
		sale("Alpha", "PS2", "Ação", "Sony", 2000, 1, 0.5, 0, 0.5),
		sale("Beta", "PS2", "Esportes", "EA", 2000, 2, 1, 0, 1),
		sale("Gamma", "Wii", "Ação", "Nintendo", 2001, 0.5, 0.5, 1, 0),
		sale("Delta", "Wii", "Plataforma", "Nintendo", 2001, 3, 1, 2, 0),
		sale("Alpha", "PC", "Ação", "Sony", 2002, 0.2, 0.1, 0, 0.1),
		sale("Epsilon", "DS", "Plataforma", "Nintendo", 2003, 0, 0, 0, 0),
	})
}

func totalGlobal(ds *domain.Dataset) float64 {
	var sum float64
	ds.Each(func(r domain.GameSale) { sum += r.SalesGlobal })
	return sum
}

func TestCategoryTotals(t *testing.T) {
	ds := fixture()

	tests := []struct {
		name string
		dim  domain.Dimension
		topN int
		want []string
	}{
		{name: "genre untruncated", dim: domain.DimensionGenre, want: []string{"Plataforma", "Ação", "Esportes"}},
		{name: "platform top 2", dim: domain.DimensionPlatform, topN: 2, want: []string{"Wii", "PS2"}},
		{name: "publisher", dim: domain.DimensionPublisher, want: []string{"Nintendo", "EA", "Sony"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := CategoryTotals(ds, tt.dim, domain.MetricGlobal, tt.topN)
			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = r.Category
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryTotalsSumPreserving(t *testing.T) {
	ds := fixture()
	for _, dim := range []domain.Dimension{domain.DimensionGenre, domain.DimensionPlatform, domain.DimensionPublisher, domain.DimensionName} {
		var sum float64
		for _, r := range CategoryTotals(ds, dim, domain.MetricGlobal, 0) {
			sum += r.Value
		}
		assert.InDelta(t, totalGlobal(ds), sum, 1e-9, string(dim))
	}
}

func TestCategoryTotalsTieBreak(t *testing.T) {
	ds := domain.NewDataset([]domain.GameSale{
		sale("a", "Zeta", "g", "p", 2000, 1, 0, 0, 0),
		sale("b", "Alpha", "g", "p", 2000, 1, 0, 0, 0),
	})
	rows := CategoryTotals(ds, domain.DimensionPlatform, domain.MetricGlobal, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].Category)
	assert.Equal(t, "Zeta", rows[1].Category)
}

func TestYearTrendAndPeakYears(t *testing.T) {
	ds := domain.NewDataset([]domain.GameSale{
		{Year: 2000, Genre: "GenreX", SalesGlobal: 1.0},
		{Year: 2000, Genre: "GenreY", SalesGlobal: 3.0},
		{Year: 2001, Genre: "GenreX", SalesGlobal: 2.0},
	})

	trend := YearTrend(ds, domain.MetricGlobal)
	assert.Equal(t, []domain.YearTotal{{Year: 2000, Value: 4.0}, {Year: 2001, Value: 2.0}}, trend)

	peaks := PeakYears(trend, 1)
	require.Len(t, peaks, 1)
	assert.Equal(t, 2000, peaks[0].Year)
}

func TestPeakYearsTiesKeepEarlierYear(t *testing.T) {
	trend := []domain.YearTotal{
		{Year: 1999, Value: 5},
		{Year: 2000, Value: 7},
		{Year: 2001, Value: 5},
		{Year: 2002, Value: 7},
	}

	peaks := PeakYears(trend, 3)
	assert.Equal(t, []int{2000, 2002, 1999}, []int{peaks[0].Year, peaks[1].Year, peaks[2].Year})
	assert.Len(t, PeakYears(trend, 10), 4)
}

func TestRegionalSplit(t *testing.T) {
	rows := RegionalSplit(fixture())
	require.Len(t, rows, 4)

	assert.Equal(t, domain.MetricNA, rows[0].Region)
	assert.Equal(t, domain.MetricEU, rows[1].Region)
	assert.Equal(t, domain.MetricJP, rows[2].Region)
	assert.Equal(t, domain.MetricOther, rows[3].Region)
	assert.Equal(t, "Outras Regiões", rows[3].Label)
	assert.InDelta(t, 6.7, rows[0].Value, 1e-9)
	assert.InDelta(t, 3.0, rows[2].Value, 1e-9)

	empty := RegionalSplit(domain.EmptyDataset())
	require.Len(t, empty, 4)
	assert.Zero(t, empty[0].Value)
}

func TestMeltAndHierarchy(t *testing.T) {
	ds := fixture()

	melted := Melt(ds)
	for _, row := range melted {
		assert.Greater(t, row.Value, 0.0)
	}
	// zero-valued regional cells are dropped
	assert.Len(t, melted, 15)

	root, err := Hierarchy(ds, domain.DimensionGenre)
	require.NoError(t, err)
	assert.Equal(t, HierarchyRoot, root.Label)
	assert.InDelta(t, totalGlobal(ds), root.Value, 1e-9)
	require.Len(t, root.Children, 4)
	assert.Equal(t, "América do Norte (NA)", root.Children[0].Label)
	for _, region := range root.Children {
		var sum float64
		for i, leaf := range region.Children {
			sum += leaf.Value
			if i > 0 {
				assert.GreaterOrEqual(t, region.Children[i-1].Value, leaf.Value)
			}
		}
		assert.InDelta(t, region.Value, sum, 1e-9)
	}

	_, err = Hierarchy(ds, domain.DimensionPublisher)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestMarketShare(t *testing.T) {
	ds := fixture()

	rows, err := MarketShare(ds, domain.DimensionGenre)
	require.NoError(t, err)

	for _, cov := range ShareCoverage(rows) {
		assert.InDelta(t, 100.0, cov.Value, 1e-9, "year %d", cov.Year)
	}
	for _, row := range rows {
		assert.NotEqual(t, 2003, row.Year, "zero-total year must be excluded")
		assert.GreaterOrEqual(t, row.Share, 0.0)
		assert.LessOrEqual(t, row.Share, 100.0)
	}

	// Ordered by year, then share descending.
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		assert.True(t, prev.Year < cur.Year || (prev.Year == cur.Year && prev.Share >= cur.Share))
	}

	require.NotEmpty(t, rows)
	assert.Equal(t, 2000, rows[0].Year)
	assert.Equal(t, "Esportes", rows[0].Category)
	assert.InDelta(t, 66.6666667, rows[0].Share, 1e-6)

	_, err = MarketShare(ds, domain.DimensionName)
	assert.Error(t, err)
}

func TestRestrictedShareCoverage(t *testing.T) {
	ds := fixture()
	rows, err := MarketShare(ds, domain.DimensionGenre)
	require.NoError(t, err)

	selected := DefaultShareCategories(ds, domain.DimensionGenre, 1)
	assert.Equal(t, []string{"Plataforma"}, selected)

	restricted := RestrictShare(rows, selected)
	for _, cov := range ShareCoverage(restricted) {
		assert.LessOrEqual(t, cov.Value, 100.0+1e-9)
	}
	assert.Equal(t, []string{"Ação", "Esportes"}, ExcludedCategories(rows, selected))

	assert.Len(t, DefaultShareCategories(ds, domain.DimensionGenre, DefaultShareTopN), 3)
}

func TestTopRecords(t *testing.T) {
	ds := fixture()

	top := TopRecords(ds, domain.MetricGlobal, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Delta", top[0].Name)
	assert.Equal(t, "Beta", top[1].Name)

	assert.Len(t, TopRecords(ds, domain.MetricJP, 0), ds.Len())
	assert.Empty(t, TopRecords(domain.EmptyDataset(), domain.MetricGlobal, 5))
}

func TestPublisherBreakdown(t *testing.T) {
	ds := fixture()

	nintendo := PublisherBreakdown(ds, "Nintendo", PublisherPlatformTop)
	assert.False(t, nintendo.Empty)
	assert.InDelta(t, 8.0, nintendo.Total, 1e-9)
	require.Len(t, nintendo.Genres, 2)
	assert.Equal(t, "Plataforma", nintendo.Genres[0].Category)
	require.Len(t, nintendo.Platforms, 2)
	assert.Equal(t, "Wii", nintendo.Platforms[0].Category)

	unknown := PublisherBreakdown(ds, "Nobody", PublisherPlatformTop)
	assert.True(t, unknown.Empty)
	assert.Empty(t, unknown.Genres)
}

func TestKeyMetrics(t *testing.T) {
	m := KeyMetrics(fixture())
	assert.Equal(t, 6, m.Records)
	assert.InDelta(t, 14.4, m.TotalGlobal, 1e-9)
	assert.InDelta(t, 2.4, m.MeanGlobal, 1e-9)
	assert.InDelta(t, 2.0, m.MedianGlobal, 1e-9)
	assert.Equal(t, 5, m.UniqueGames)
	assert.Equal(t, 3, m.UniquePublishers)

	assert.Equal(t, Metrics{}, KeyMetrics(domain.EmptyDataset()))
}

func TestRegionDetail(t *testing.T) {
	ds := fixture()

	byGenre, err := RegionDetail(ds, domain.MetricJP, domain.DimensionGenre, 0)
	require.NoError(t, err)
	require.Len(t, byGenre.Totals, 3)
	assert.Equal(t, "Plataforma", byGenre.Totals[0].Category)
	assert.Equal(t, "Japão (JP)", byGenre.Label)

	byGame, err := RegionDetail(ds, domain.MetricNA, domain.DimensionName, 5)
	require.NoError(t, err)
	require.Len(t, byGame.Games, 5)
	assert.Equal(t, "Delta", byGame.Games[0].Name)

	_, err = RegionDetail(ds, domain.MetricGlobal, domain.DimensionGenre, 0)
	assert.Error(t, err)
	_, err = RegionDetail(ds, domain.MetricNA, domain.DimensionName, 31)
	assert.Error(t, err)
	_, err = RegionDetail(ds, domain.MetricNA, domain.DimensionPublisher, 10)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	ds := fixture()

	points, err := Compare(ds, domain.DimensionGenre, []string{"Plataforma", "Ação"})
	require.NoError(t, err)
	assert.Equal(t, []domain.SeriesPoint{
		{Item: "Plataforma", Year: 2001, Value: 6},
		{Item: "Plataforma", Year: 2003, Value: 0},
		{Item: "Ação", Year: 2000, Value: 2},
		{Item: "Ação", Year: 2001, Value: 2},
		{Item: "Ação", Year: 2002, Value: 0.4},
	}, roundPoints(points))

	_, err = Compare(ds, domain.DimensionGenre, []string{"a", "b", "c", "d"})
	assert.Error(t, err)
	_, err = Compare(ds, domain.DimensionPublisher, []string{"Sony"})
	assert.Error(t, err)
}

func roundPoints(points []domain.SeriesPoint) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, len(points))
	for i, p := range points {
		p.Value = float64(int(p.Value*1e6+0.5)) / 1e6
		out[i] = p
	}
	return out
}
