package cron

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/subscriptions"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type sliceUsers struct {
	users []models.User
	pages int
}

func (s *sliceUsers) ListAfter(ctx context.Context, afterID string, limit int) ([]models.User, error) {
	s.pages++
	sort.Slice(s.users, func(i, j int) bool { return s.users[i].ID < s.users[j].ID })
	out := []models.User{}
	for _, u := range s.users {
		if u.ID > afterID && len(out) < limit {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubResolver struct {
	stale  map[string]bool
	failed map[string]bool
	calls  []string
}

func (s *stubResolver) GetUserSubscriptionPlan(ctx context.Context, userID string) (*subscriptions.UserSubscriptionPlan, error) {
	s.calls = append(s.calls, userID)
	if s.failed[userID] {
		return nil, errors.New("metadata write failed")
	}
	if s.stale[userID] {
		return nil, nil
	}
	return &subscriptions.UserSubscriptionPlan{IsSubscribed: true}, nil
}

func subscribedUser(id string) models.User {
	return models.User{ID: id, PrivateMetadata: map[string]any{"stripeSubscriptionId": "sub_" + id}}
}

func TestSubscriptionSweepResolvesOnlySubscribedUsers(t *testing.T) {
	users := &sliceUsers{users: []models.User{
		subscribedUser("u1"),
		{ID: "u2", PrivateMetadata: map[string]any{}},
		subscribedUser("u3"),
		subscribedUser("u4"),
		{ID: "u5"},
	}}
	resolver := &stubResolver{stale: map[string]bool{"u3": true}}
	job, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{
		Logger:    testLogger(),
		Users:     users,
		Resolver:  resolver,
		BatchSize: 2,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, []string{"u1", "u3", "u4"}, resolver.calls)
	require.Equal(t, 3, users.pages)
}

func TestSubscriptionSweepCollectsErrorsAndContinues(t *testing.T) {
	users := &sliceUsers{users: []models.User{
		subscribedUser("u1"),
		{ID: "u2", PrivateMetadata: map[string]any{"stripeSubscriptionId": 42}},
		subscribedUser("u3"),
	}}
	resolver := &stubResolver{failed: map[string]bool{"u1": true}}
	job, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{
		Logger:   testLogger(),
		Users:    users,
		Resolver: resolver,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "user u1")
	require.Contains(t, err.Error(), "user u2")
	require.Equal(t, []string{"u1", "u3"}, resolver.calls)
}

func TestNewSubscriptionSweepJobValidates(t *testing.T) {
	_, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{})
	require.Error(t, err)
	_, err = NewSubscriptionSweepJob(SubscriptionSweepJobParams{Logger: testLogger(), Users: &sliceUsers{}})
	require.Error(t, err)
}
