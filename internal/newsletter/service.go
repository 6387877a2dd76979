package newsletter

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/email"
	"github.com/angelmondragon/storefront-backend/pkg/email/templates"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Unique index on email, as named by postgres and by sqlite.
const (
	subscriptionsEmailKey    = "newsletter_subscriptions_email_key"
	subscriptionsEmailColumn = "newsletter_subscriptions.email"
)

type subscriptionRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, sub *models.NewsletterSubscription) error
}

type userDirectory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Service signs visitors up for the newsletter.
type Service interface {
	Subscribe(ctx context.Context, input SubscribeInput) error
}

// ServiceParams groups dependencies for the newsletter service.
type ServiceParams struct {
	Repo      subscriptionRepository
	Users     userDirectory
	Sender    email.Sender
	FromEmail string
	SiteURL   string
}

// SubscribeInput is a signup request. UserID is set when the visitor is signed in.
type SubscribeInput struct {
	Email  string `json:"email" validate:"required,email"`
	UserID string `json:"-"`
}

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

type service struct {
	repo    subscriptionRepository
	users   userDirectory
	sender  email.Sender
	from    string
	siteURL string
}

// NewService builds a newsletter service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("newsletter repository required")
	}
	if params.Users == nil {
		return nil, errors.New("user directory required")
	}
	if params.Sender == nil {
		return nil, errors.New("email sender required")
	}
	if strings.TrimSpace(params.FromEmail) == "" {
		return nil, errors.New("from email required")
	}
	return &service{
		repo:    params.Repo,
		users:   params.Users,
		sender:  params.Sender,
		from:    params.FromEmail,
		siteURL: params.SiteURL,
	}, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Subscribe sends the welcome email and records the subscription. The row is
// written only after the email was accepted.
func (s *service) Subscribe(ctx context.Context, input SubscribeInput) error {
	input.Email = NormalizeEmail(input.Email)
	if err := inputValidator.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid email")
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subscription")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "you are already subscribed to the newsletter")
	}

	var userID *string
	firstName := ""
	if id := strings.TrimSpace(input.UserID); id != "" {
		user, err := s.users.GetUser(ctx, id)
		if err != nil {
			return err
		}
		userID = &user.ID
		if user.FirstName != nil {
			firstName = *user.FirstName
		}
	}

	body, err := templates.Render(ctx, WelcomeEmail(WelcomeEmailProps{
		FirstName: firstName,
		FromEmail: s.from,
		SiteURL:   s.siteURL,
	}))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render welcome email")
	}
	if err := s.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   input.Email,
		Subject:  welcomeSubject,
		BodyHTML: body,
		Tag:      welcomeTag,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send welcome email")
	}

	sub := &models.NewsletterSubscription{Email: input.Email, UserID: userID}
	if err := s.repo.Create(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, subscriptionsEmailKey) || db.IsUniqueViolation(err, subscriptionsEmailColumn) {
			return pkgerrors.New(pkgerrors.CodeConflict, "you are already subscribed to the newsletter")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
	}
	return nil
}
