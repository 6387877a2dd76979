package subscriptions

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Plan is one entry of the static subscription catalog.
type Plan struct {
	ID            enums.PlanTier  `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	StripePriceID string          `json:"stripePriceId"`
	Price         decimal.Decimal `json:"price"`
	// Structured limits. The feature strings above are display copy.
	FeaturedStores   int `json:"featuredStores"`
	FeaturedProducts int `json:"featuredProducts"`
}

// FeatureCounts returns the structured limits of the plan.
func (p Plan) FeatureCounts() FeatureCounts {
	return FeatureCounts{FeaturedStoreCount: p.FeaturedStores, FeaturedProductCount: p.FeaturedProducts}
}

// Catalog is the ordered, immutable plan list. The first plan is the free default.
type Catalog struct {
	plans []Plan
}

// NewCatalog builds the basic/standard/pro catalog with price ids from config.
func NewCatalog(cfg config.StripeConfig) *Catalog {
	return &Catalog{plans: []Plan{
		{
			ID:               enums.PlanTierBasic,
			Name:             "Basic",
			Description:      "Perfect for a small store starting out.",
			Features:         []string{"Create up to 1 store", "Create up to 20 products"},
			Price:            decimal.Zero,
			FeaturedStores:   1,
			FeaturedProducts: 20,
		},
		{
			ID:               enums.PlanTierStandard,
			Name:             "Standard",
			Description:      "Perfect for a growing business with a couple of stores.",
			Features:         []string{"Create up to 2 stores", "Create up to 20 products/store"},
			StripePriceID:    strings.TrimSpace(cfg.StandardPriceID),
			Price:            decimal.NewFromInt(10),
			FeaturedStores:   2,
			FeaturedProducts: 20,
		},
		{
			ID:               enums.PlanTierPro,
			Name:             "Pro",
			Description:      "Perfect for a large business with multiple stores.",
			Features:         []string{"Create up to 3 stores", "Create up to 20 products/store"},
			StripePriceID:    strings.TrimSpace(cfg.ProPriceID),
			Price:            decimal.NewFromInt(20),
			FeaturedStores:   3,
			FeaturedProducts: 20,
		},
	}}
}

// Plans returns a copy of the catalog in display order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Default returns the first (free) plan.
func (c *Catalog) Default() Plan {
	return c.plans[0]
}

// ByPriceID returns the plan carrying the Stripe price id.
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	if priceID == "" {
		return Plan{}, false
	}
	for _, p := range c.plans {
		if p.StripePriceID == priceID {
			return p, true
		}
	}
	return Plan{}, false
}

// ByID returns the plan of the given tier.
func (c *Catalog) ByID(id enums.PlanTier) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
