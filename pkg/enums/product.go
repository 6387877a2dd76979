package enums

import "fmt"

// ProductCategory represents the product categories of the storefront catalog.
type ProductCategory string

const (
	ProductCategorySkateboards ProductCategory = "skateboards"
	ProductCategoryClothing    ProductCategory = "clothing"
	ProductCategoryShoes       ProductCategory = "shoes"
	ProductCategoryAccessories ProductCategory = "accessories"
)

var validProductCategories = []ProductCategory{
	ProductCategorySkateboards,
	ProductCategoryClothing,
	ProductCategoryShoes,
	ProductCategoryAccessories,
}

// ProductCategories returns the categories in catalog order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
