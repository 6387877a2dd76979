package subscriptions

import (
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Private metadata keys written by the billing webhook of the auth provider.
const (
	metaPriceID          = "stripePriceId"
	metaCustomerID       = "stripeCustomerId"
	metaSubscriptionID   = "stripeSubscriptionId"
	metaCurrentPeriodEnd = "stripeCurrentPeriodEnd"
)

// SubscriptionMetadata is the billing view of a user's private metadata.
type SubscriptionMetadata struct {
	StripePriceID          string
	StripeCustomerID       string
	StripeSubscriptionID   string
	StripeCurrentPeriodEnd *time.Time
}

// ParseSubscriptionMetadata validates the shape of the billing keys. Absent
// and null keys are empty; any other non-string value is a validation error.
// The period end accepts an RFC3339 string or epoch milliseconds.
func ParseSubscriptionMetadata(md map[string]any) (SubscriptionMetadata, error) {
	var out SubscriptionMetadata
	var err error

	if out.StripePriceID, err = stringField(md, metaPriceID); err != nil {
		return out, err
	}
	if out.StripeCustomerID, err = stringField(md, metaCustomerID); err != nil {
		return out, err
	}
	if out.StripeSubscriptionID, err = stringField(md, metaSubscriptionID); err != nil {
		return out, err
	}
	if out.StripeCurrentPeriodEnd, err = timeField(md, metaCurrentPeriodEnd); err != nil {
		return out, err
	}
	return out, nil
}

// IsSubscribed reports an active paid plan: a price id is present and the
// period end plus a 24h grace window is after now.
func (m SubscriptionMetadata) IsSubscribed(now time.Time) bool {
	if m.StripePriceID == "" || m.StripeCurrentPeriodEnd == nil {
		return false
	}
	return m.StripeCurrentPeriodEnd.Add(gracePeriod).After(now)
}

// clearSubscriptionPatch nulls the four billing keys.
func clearSubscriptionPatch() map[string]any {
	return map[string]any{
		metaPriceID:          nil,
		metaCustomerID:       nil,
		metaSubscriptionID:   nil,
		metaCurrentPeriodEnd: nil,
	}
}

func stringField(md map[string]any, key string) (string, error) {
	raw, ok := md[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidMetadata(key, raw)
	}
	return s, nil
}

func timeField(md map[string]any, key string) (*time.Time, error) {
	raw, ok := md[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, invalidMetadata(key, raw)
		}
		return &t, nil
	case float64:
		t := time.UnixMilli(int64(v)).UTC()
		return &t, nil
	default:
		return nil, invalidMetadata(key, raw)
	}
}

func invalidMetadata(key string, value any) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid user private metadata").
		WithDetails(map[string]any{"field": key, "type": fmt.Sprintf("%T", value)})
}
