package subscriptions

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const (
	BillingPath  = "/dashboard/billing"
	NewStorePath = "/dashboard/stores/new"
)

// minStoresForTier is the store count at which the billing page becomes the
// dashboard landing page.
var minStoresForTier = map[enums.PlanTier]int64{
	enums.PlanTierBasic:    1,
	enums.PlanTierStandard: 2,
	enums.PlanTierPro:      3,
}

// DashboardRedirectPath routes to the billing page when the plan period is
// still running and the user owns at least the tier's minimum of stores, and
// to store creation otherwise. A nil plan counts as basic.
func DashboardRedirectPath(storeCount int64, plan *UserSubscriptionPlan, now time.Time) string {
	tier := enums.PlanTierBasic
	var periodEnd *time.Time
	if plan != nil {
		periodEnd = plan.StripeCurrentPeriodEnd
		if plan.Plan != nil && plan.Plan.ID.IsValid() {
			tier = plan.Plan.ID
		}
	}

	active := periodEnd != nil && periodEnd.After(now)
	if active && storeCount >= minStoresForTier[tier] {
		return BillingPath
	}
	return NewStorePath
}
