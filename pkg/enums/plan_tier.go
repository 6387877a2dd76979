package enums

import "fmt"

// PlanTier identifies a subscription tier of the plan catalog.
type PlanTier string

const (
	PlanTierBasic    PlanTier = "basic"
	PlanTierStandard PlanTier = "standard"
	PlanTierPro      PlanTier = "pro"
)

var validPlanTiers = []PlanTier{
	PlanTierBasic,
	PlanTierStandard,
	PlanTierPro,
}

// String implements fmt.Stringer.
func (p PlanTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanTier.
func (p PlanTier) IsValid() bool {
	for _, candidate := range validPlanTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanTier converts raw input into a PlanTier.
func ParsePlanTier(value string) (PlanTier, error) {
	for _, candidate := range validPlanTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan tier %q", value)
}
