package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []GameSale {
	return []GameSale{
		{Name: "Wii Sports", Platform: "Wii", Year: 2006, Genre: "Esportes", Publisher: "Nintendo", SalesNA: 41.49, SalesEU: 29.02, SalesJP: 3.77, SalesOther: 8.46, SalesGlobal: 82.74},
		{Name: "Super Mario Bros.", Platform: "NES", Year: 1985, Genre: "Plataforma", Publisher: "Nintendo", SalesNA: 29.08, SalesEU: 3.58, SalesJP: 6.81, SalesOther: 0.77, SalesGlobal: 40.24},
		{Name: "Grand Theft Auto V", Platform: "PS3", Year: 2013, Genre: "Ação", Publisher: "Take-Two Interactive", SalesNA: 7.01, SalesEU: 9.27, SalesJP: 0.97, SalesOther: 4.14, SalesGlobal: 21.4},
	}
}

func TestDatasetIsImmutable(t *testing.T) {
	records := sampleRecords()
	ds := NewDataset(records)

	records[0].Name = "changed"
	assert.Equal(t, "Wii Sports", ds.At(0).Name)

	out := ds.Records()
	out[1].Name = "changed"
	assert.Equal(t, "Super Mario Bros.", ds.At(1).Name)
}

func TestDatasetFilter(t *testing.T) {
	ds := NewDataset(sampleRecords())

	nintendo := ds.Filter(func(s GameSale) bool { return s.Publisher == "Nintendo" })
	require.Equal(t, 2, nintendo.Len())
	assert.Equal(t, "Wii Sports", nintendo.At(0).Name)
	assert.Equal(t, "Super Mario Bros.", nintendo.At(1).Name)
	assert.Equal(t, 3, ds.Len())

	none := ds.Filter(func(GameSale) bool { return false })
	assert.True(t, none.Empty())
}

func TestDatasetYearBounds(t *testing.T) {
	tests := []struct {
		name    string
		ds      *Dataset
		wantMin int
		wantMax int
		wantOK  bool
	}{
		{name: "populated", ds: NewDataset(sampleRecords()), wantMin: 1985, wantMax: 2013, wantOK: true},
		{name: "empty", ds: EmptyDataset()},
		{name: "nil", ds: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, ok := tt.ds.YearBounds()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMin, min)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestDatasetDistinctAndSlice(t *testing.T) {
	ds := NewDataset(sampleRecords())

	assert.Equal(t, []string{"Nintendo", "Take-Two Interactive"}, ds.Distinct(DimensionPublisher))
	assert.Equal(t, []string{"NES", "PS3", "Wii"}, ds.Distinct(DimensionPlatform))

	assert.Len(t, ds.Slice(1, 10), 2)
	assert.Empty(t, ds.Slice(5, 10))
	assert.Empty(t, ds.Slice(0, 0))
}

func TestDimensionAndMetricAccessors(t *testing.T) {
	rec := sampleRecords()[0]

	assert.Equal(t, "Wii", rec.Value(DimensionPlatform))
	assert.Equal(t, "Esportes", rec.Value(DimensionGenre))
	assert.Equal(t, 41.49, rec.Amount(MetricNA))
	assert.Equal(t, 82.74, rec.Amount(MetricGlobal))

	assert.True(t, DimensionGenre.Valid())
	assert.False(t, Dimension("Ano").Valid())
	assert.True(t, MetricJP.Valid())
	assert.False(t, Metric("vendas_br").Valid())

	assert.True(t, IsRegion(MetricEU))
	assert.False(t, IsRegion(MetricGlobal))
	assert.Equal(t, "Japão (JP)", RegionName(MetricJP))
}
