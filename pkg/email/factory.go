package email

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// NewSender picks Postmark when both tokens are configured and the on-disk
// dev sender otherwise. Production refuses to start without Postmark.
func NewSender(app config.AppConfig, cfg config.EmailConfig, m *metrics.ProviderMetrics) (Sender, error) {
	if cfg.UsePostmark() {
		return NewPostmarkSender(cfg, m)
	}
	if app.IsProd() {
		return nil, fmt.Errorf("%w: postmark tokens are required in production", ErrInvalidConfig)
	}
	return NewDevSender(cfg.DevOutboxDir), nil
}
