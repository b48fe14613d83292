// Package api contains the HTTP request contracts of the dashboard API.
// Version v1 represents the current stable API version.
package api

// PaginationRequest selects a page of the filtered data table
type PaginationRequest struct {
	Offset int `json:"offset" query:"offset" validate:"min=0"`
	Limit  int `json:"limit" query:"limit" validate:"min=1,max=500"`
}

// ExportRequest selects the download format of the filtered data table
type ExportRequest struct {
	Format string `json:"format" query:"format" validate:"required,oneof=csv xlsx"`
}

// ViewQuery carries a complete filter state and view options as query
// parameters for the stateless view endpoint. Unset fields fall back to the
// defaults derived from the dataset.
type ViewQuery struct {
	YearMin   *int     `query:"year_min" validate:"omitempty,min=1950"`
	YearMax   *int     `query:"year_max" validate:"omitempty,min=1950"`
	Platforms []string `query:"platform"`
	Genres    []string `query:"genre"`
	PeakYear  *int     `query:"peak_year" validate:"omitempty,min=1950"`

	TreemapDetail   string   `query:"treemap_detail" validate:"omitempty,oneof=Genero Console"`
	Region          string   `query:"region" validate:"omitempty,oneof=vendas_na vendas_eu vendas_jp vendas_outros"`
	RegionBy        string   `query:"region_by" validate:"omitempty,oneof=Genero Console Nome"`
	RegionTop       int      `query:"region_top" validate:"omitempty,min=5,max=30"`
	CompareBy       string   `query:"compare_by" validate:"omitempty,oneof=Genero Console"`
	CompareItems    []string `query:"compare_item" validate:"max=3"`
	ShareBy         string   `query:"share_by" validate:"omitempty,oneof=Genero Console"`
	ShareCategories []string `query:"share_category"`
	Publisher       string   `query:"publisher"`
}

