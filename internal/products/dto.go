package products

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// ProductSummary is one search hit.
type ProductSummary struct {
	ID       int64                 `json:"id"`
	StoreID  int64                 `json:"storeId"`
	Name     string                `json:"name"`
	Category enums.ProductCategory `json:"category"`
	Price    decimal.Decimal       `json:"price"`
}

// CategoryGroup lists the hits of one category.
type CategoryGroup struct {
	Category enums.ProductCategory `json:"category"`
	Products []ProductSummary      `json:"products"`
}

// SearchResult groups hits by category in catalog order. Categories without
// hits are omitted.
type SearchResult struct {
	Query  string          `json:"query"`
	Groups []CategoryGroup `json:"groups"`
}

func summaryFromModel(m models.Product) ProductSummary {
	return ProductSummary{
		ID:       m.ID,
		StoreID:  m.StoreID,
		Name:     m.Name,
		Category: m.Category,
		Price:    m.Price,
	}
}

func groupByCategory(rows []models.Product) []CategoryGroup {
	byCategory := make(map[enums.ProductCategory][]ProductSummary, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = append(byCategory[row.Category], summaryFromModel(row))
	}
	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, category := range enums.ProductCategories() {
		if hits := byCategory[category]; len(hits) > 0 {
			groups = append(groups, CategoryGroup{Category: category, Products: hits})
		}
	}
	return groups
}
