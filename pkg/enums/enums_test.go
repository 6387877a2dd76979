package enums

import "testing"

func TestParsePlanTier(t *testing.T) {
	tier, err := ParsePlanTier("standard")
	if err != nil || tier != PlanTierStandard {
		t.Fatalf("expected standard, got %q (%v)", tier, err)
	}
	if _, err := ParsePlanTier("enterprise"); err == nil {
		t.Fatalf("expected unknown tier to fail")
	}
	if PlanTier("gold").IsValid() {
		t.Fatalf("gold should not be valid")
	}
}

func TestProductCategoriesOrder(t *testing.T) {
	got := ProductCategories()
	want := []ProductCategory{ProductCategorySkateboards, ProductCategoryClothing, ProductCategoryShoes, ProductCategoryAccessories}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d: expected %s got %s", i, want[i], got[i])
		}
	}

	got[0] = "mutated"
	if ProductCategories()[0] != ProductCategorySkateboards {
		t.Fatalf("ProductCategories must return a copy")
	}
	if _, err := ParseProductCategory("flower"); err == nil {
		t.Fatalf("expected unknown category to fail")
	}
}
