package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/subscriptions"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type userLister interface {
	ListAfter(ctx context.Context, afterID string, limit int) ([]models.User, error)
}

type planResolver interface {
	GetUserSubscriptionPlan(ctx context.Context, userID string) (*subscriptions.UserSubscriptionPlan, error)
}

// SubscriptionSweepJobParams configures the subscription sweep.
type SubscriptionSweepJobParams struct {
	Logger    *logger.Logger
	Users     userLister
	Resolver  planResolver
	BatchSize int
}

// NewSubscriptionSweepJob builds a job that re-resolves every stored Stripe
// subscription so records Stripe no longer knows are cleared without waiting
// for the user to visit billing.
func NewSubscriptionSweepJob(params SubscriptionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lister required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("plan resolver required")
	}
	return &subscriptionSweepJob{
		logg:     params.Logger,
		users:    params.Users,
		resolver: params.Resolver,
		batch:    pagination.Sweep.Normalize(params.BatchSize),
	}, nil
}

type subscriptionSweepJob struct {
	logg     *logger.Logger
	users    userLister
	resolver planResolver
	batch    int
}

func (j *subscriptionSweepJob) Name() string { return "subscription-sweep" }

func (j *subscriptionSweepJob) Run(ctx context.Context) error {
	var (
		errs     error
		afterID  string
		scanned  int
		resolved int
		cleared  int
	)
	for {
		page, err := j.users.ListAfter(ctx, afterID, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list users after %q: %w", afterID, err))
		}
		for i := range page {
			user := &page[i]
			scanned++
			wasCleared, checked, err := j.sweepUser(ctx, user)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if checked {
				resolved++
			}
			if wasCleared {
				cleared++
			}
		}
		if len(page) < j.batch {
			break
		}
		afterID = page[len(page)-1].ID
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":  scanned,
		"resolved": resolved,
		"cleared":  cleared,
	})
	j.logg.Info(reportCtx, "subscription sweep complete")
	return errs
}

// sweepUser reports whether the stored subscription was cleared and whether
// the user had one to check at all.
func (j *subscriptionSweepJob) sweepUser(ctx context.Context, user *models.User) (bool, bool, error) {
	md, err := subscriptions.ParseSubscriptionMetadata(user.PrivateMetadata)
	if err != nil {
		return false, false, fmt.Errorf("user %s: %w", user.ID, err)
	}
	if md.StripeSubscriptionID == "" {
		return false, false, nil
	}
	plan, err := j.resolver.GetUserSubscriptionPlan(ctx, user.ID)
	if err != nil {
		return false, true, fmt.Errorf("user %s: %w", user.ID, err)
	}
	if plan == nil {
		j.logg.Info(j.logg.WithUserID(ctx, user.ID), "stale subscription cleared")
		return true, true, nil
	}
	return false, true, nil
}
