package subscriptions

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// FeatureCounts holds the numeric limits derived for a plan.
type FeatureCounts struct {
	FeaturedStoreCount   int `json:"featuredStoreCount"`
	FeaturedProductCount int `json:"featuredProductCount"`
}

var (
	storeFeatureRe   = regexp.MustCompile(`(?i)store`)
	productFeatureRe = regexp.MustCompile(`(?i)product`)
	digitsRe         = regexp.MustCompile(`\d+`)
)

// ScrapeFeatureCounts reads limits out of free-text feature strings. Every
// feature is split on ","; the first fragment mentioning "store" (resp.
// "product") contributes its first run of digits, 0 when there is none.
//
// Brittle: copy edits to the features change the limits. Prefer
// Plan.FeatureCounts.
func ScrapeFeatureCounts(features []string) FeatureCounts {
	var fragments []string
	for _, feature := range features {
		fragments = append(fragments, strings.Split(feature, ",")...)
	}
	return FeatureCounts{
		FeaturedStoreCount:   firstNumberIn(fragments, storeFeatureRe),
		FeaturedProductCount: firstNumberIn(fragments, productFeatureRe),
	}
}

func firstNumberIn(fragments []string, keyword *regexp.Regexp) int {
	for _, fragment := range fragments {
		if !keyword.MatchString(fragment) {
			continue
		}
		n, err := strconv.Atoi(digitsRe.FindString(fragment))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// FeaturedStoreAndProductCounts scrapes the counts of a catalog plan. Unknown
// plans yield zero counts.
func (c *Catalog) FeaturedStoreAndProductCounts(planID enums.PlanTier) FeatureCounts {
	plan, ok := c.ByID(planID)
	if !ok {
		return FeatureCounts{}
	}
	return ScrapeFeatureCounts(plan.Features)
}
