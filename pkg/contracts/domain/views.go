package domain

// CategoryTotal is one row of a group-by-sum view.
type CategoryTotal struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// YearTotal is one row of a per-year view.
type YearTotal struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// RegionTotal is one row of the regional split.
type RegionTotal struct {
	Region Region  `json:"region"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
}

// RegionalSale is one record's sales in one region (long form).
type RegionalSale struct {
	Name     string  `json:"Nome"`
	Genre    string  `json:"Genero"`
	Platform string  `json:"Console"`
	Region   Region  `json:"region"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}

// HierarchyNode is a node of the region/category proportional-area tree.
type HierarchyNode struct {
	Label    string          `json:"label"`
	Value    float64         `json:"value"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// ShareRow is one category's share of a year's total.
type ShareRow struct {
	Category  string  `json:"category"`
	Year      int     `json:"year"`
	Value     float64 `json:"value"`
	YearTotal float64 `json:"year_total"`
	Share     float64 `json:"share"`
}

// SeriesPoint is one point of a per-item yearly series.
type SeriesPoint struct {
	Item  string  `json:"item"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}
