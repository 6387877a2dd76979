package stripe

import (
	"errors"

	"github.com/stripe/stripe-go/v84"
)

// ErrorCode extracts the Stripe error code from err, or "" when err did not
// come from the Stripe API.
func ErrorCode(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return string(stripeErr.Code)
	}
	return ""
}

// IsResourceMissing reports whether Stripe answered resource_missing.
func IsResourceMissing(err error) bool {
	return ErrorCode(err) == string(stripe.ErrorCodeResourceMissing)
}
