package newsletter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/email"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type recordingSender struct {
	sent []email.SendEmailParams
	err  error
}

func (r *recordingSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, params)
	return nil
}

// staleRepo reports every address as new so the insert hits the unique index.
type staleRepo struct {
	*Repository
}

func (staleRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func newTestService(t *testing.T, conn *gorm.DB, repo subscriptionRepository, sender email.Sender) Service {
	t.Helper()
	userSvc, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(conn),
		TxRunner: db.NewFromGorm(conn),
	})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Users:     userSvc,
		Sender:    sender,
		FromEmail: "hello@skateshop.example",
		SiteURL:   "https://shop.example.com",
	})
	require.NoError(t, err)
	return svc
}

func TestSubscribeSendsWelcomeAndStoresRow(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.MustCreateUser(t, conn, "user_1", "member@example.com", true, nil)
	sender := &recordingSender{}
	svc := newTestService(t, conn, NewRepository(conn), sender)

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "  Reader@Example.com ", UserID: "user_1"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.Equal(t, "reader@example.com", msg.SendTo)
	require.Equal(t, "Welcome to the newsletter!", msg.Subject)
	require.Equal(t, "newsletter_welcome", msg.Tag)
	require.Contains(t, msg.BodyHTML, "Hi Test,")
	require.Contains(t, msg.BodyHTML, "hello@skateshop.example")

	var row models.NewsletterSubscription
	require.NoError(t, conn.First(&row, "email = ?", "reader@example.com").Error)
	require.NotNil(t, row.UserID)
	require.Equal(t, "user_1", *row.UserID)
}

func TestSubscribeAnonymous(t *testing.T) {
	conn := dbtest.Open(t)
	sender := &recordingSender{}
	svc := newTestService(t, conn, NewRepository(conn), sender)

	require.NoError(t, svc.Subscribe(context.Background(), SubscribeInput{Email: "anon@example.com"}))
	require.Contains(t, sender.sent[0].BodyHTML, "Hi there,")

	var row models.NewsletterSubscription
	require.NoError(t, conn.First(&row, "email = ?", "anon@example.com").Error)
	require.Nil(t, row.UserID)
}

func TestSubscribeRejectsDuplicateWithoutSending(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Create(&models.NewsletterSubscription{Email: "reader@example.com"}).Error)
	sender := &recordingSender{}
	svc := newTestService(t, conn, NewRepository(conn), sender)

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "READER@example.com"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.Empty(t, sender.sent)
}

func TestSubscribeInsertRaceIsConflict(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Create(&models.NewsletterSubscription{Email: "reader@example.com"}).Error)
	svc := newTestService(t, conn, staleRepo{NewRepository(conn)}, &recordingSender{})

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "reader@example.com"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestSubscribeInvalidEmail(t *testing.T) {
	conn := dbtest.Open(t)
	sender := &recordingSender{}
	svc := newTestService(t, conn, NewRepository(conn), sender)

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "not-an-email"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	require.Empty(t, sender.sent)
}

func TestSubscribeSendFailureSkipsInsert(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn, NewRepository(conn), &recordingSender{err: errors.New("postmark down")})

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "reader@example.com"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)

	exists, err := NewRepository(conn).ExistsByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWelcomeEmailEscapesInput(t *testing.T) {
	var sb strings.Builder
	err := WelcomeEmail(WelcomeEmailProps{FirstName: "<b>Tony</b>", FromEmail: "hello@example.com"}).Render(context.Background(), &sb)
	require.NoError(t, err)
	require.NotContains(t, sb.String(), "<b>Tony</b>")
	require.Contains(t, sb.String(), "&lt;b&gt;Tony&lt;/b&gt;")
}
