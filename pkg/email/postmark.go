package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender delivers transactional email through Postmark.
type PostmarkSender struct {
	api     postmarkAPI
	from    string
	replyTo string
	metrics *metrics.ProviderMetrics
}

// NewPostmarkSender validates the email config and builds a Postmark-backed sender.
func NewPostmarkSender(cfg config.EmailConfig, m *metrics.ProviderMetrics) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark account token is required", ErrInvalidConfig)
	}
	if !validAddress(cfg.FromAddress) {
		return nil, fmt.Errorf("%w: from address must be a valid email address", ErrInvalidConfig)
	}
	replyTo := cfg.SupportAddress
	if replyTo == "" {
		replyTo = cfg.FromAddress
	} else if !validAddress(replyTo) {
		return nil, fmt.Errorf("%w: support address must be a valid email address", ErrInvalidConfig)
	}

	return &PostmarkSender{
		api:     postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:    cfg.FromAddress,
		replyTo: replyTo,
		metrics: m,
	}, nil
}

// SendEmail implements Sender. Opens and HTML link clicks are tracked.
func (s *PostmarkSender) SendEmail(ctx context.Context, params SendEmailParams) (err error) {
	if err := params.Validate(); err != nil {
		return err
	}

	started := time.Now()
	defer func() { s.metrics.Observe("postmark", "send_email", started, err) }()

	resp, err := s.api.SendEmail(ctx, postmark.Email{
		From:       s.from,
		ReplyTo:    s.replyTo,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
