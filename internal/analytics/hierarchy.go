package analytics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// HierarchyRoot labels the root node of the region/category tree.
const HierarchyRoot = "Vendas Globais"

// Melt reshapes the regional columns into long form: one row per record per
// region. Rows with zero sales are discarded.
func Melt(ds *domain.Dataset) []domain.RegionalSale {
	rows := make([]domain.RegionalSale, 0, ds.Len())
	ds.Each(func(r domain.GameSale) {
		for _, region := range domain.Regions {
			value := r.Amount(region)
			if value <= 0 {
				continue
			}
			rows = append(rows, domain.RegionalSale{
				Name:     r.Name,
				Genre:    r.Genre,
				Platform: r.Platform,
				Region:   region,
				Label:    domain.RegionName(region),
				Value:    value,
			})
		}
	})
	return rows
}

// Hierarchy groups the melted rows by region, then by detail (genre or
// platform). Siblings are sorted by value descending, ties by label.
func Hierarchy(ds *domain.Dataset, detail domain.Dimension) (domain.HierarchyNode, error) {
	if detail != domain.DimensionGenre && detail != domain.DimensionPlatform {
		return domain.HierarchyNode{}, apperrors.NewAppValidationError(
			fmt.Sprintf("hierarchy detail must be %s or %s, got %q", domain.DimensionGenre, domain.DimensionPlatform, detail))
	}

	byRegion := make(map[domain.Region]map[string][]float64)
	for _, row := range Melt(ds) {
		category := row.Genre
		if detail == domain.DimensionPlatform {
			category = row.Platform
		}
		if byRegion[row.Region] == nil {
			byRegion[row.Region] = make(map[string][]float64)
		}
		byRegion[row.Region][category] = append(byRegion[row.Region][category], row.Value)
	}

	root := domain.HierarchyNode{Label: HierarchyRoot, Children: []domain.HierarchyNode{}}
	for _, region := range domain.Regions {
		categories, ok := byRegion[region]
		if !ok {
			continue
		}

		node := domain.HierarchyNode{Label: domain.RegionName(region)}
		for category, parts := range categories {
			node.Children = append(node.Children, domain.HierarchyNode{Label: category, Value: floats.Sum(parts)})
		}
		sortNodes(node.Children)
		node.Value = sumNodes(node.Children)
		root.Children = append(root.Children, node)
	}
	sortNodes(root.Children)
	root.Value = sumNodes(root.Children)

	return root, nil
}

func sortNodes(nodes []domain.HierarchyNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Value != nodes[j].Value {
			return nodes[i].Value > nodes[j].Value
		}
		return nodes[i].Label < nodes[j].Label
	})
}

// sumNodes adds node values in slice order so the result does not depend on
// map iteration.
func sumNodes(nodes []domain.HierarchyNode) float64 {
	values := make([]float64, len(nodes))
	for i, n := range nodes {
		values[i] = n.Value
	}
	return floats.Sum(values)
}
