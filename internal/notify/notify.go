package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"RentScanner/internal/domain"
	"RentScanner/internal/ports"
)

// Dispatcher formats listings and delivers them through a Messenger.
// When the channel is unconfigured every delivery is logged locally
// instead; that still counts as delivered for dedup purposes.
type Dispatcher struct {
	messenger ports.Messenger
	logger    *slog.Logger
	limiter   *rate.Limiter
}

// NewDispatcher wires a messenger and the pacing between remote sends.
// Telegram throttles bots around one message per second, so interval
// defaults to 1.1s when non-positive.
func NewDispatcher(messenger ports.Messenger, interval time.Duration, logger *slog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 1100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		messenger: messenger,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Deliver attempts one notification. StatusFallback is returned with a
// nil error when no channel is configured; StatusFailed carries the
// delivery error so the caller can retry the listing next run.
func (d *Dispatcher) Deliver(ctx context.Context, l domain.Listing) (domain.DeliveryStatus, error) {
	text := FormatMessage(l)

	if d.messenger == nil || !d.messenger.Configured() {
		d.logger.Warn("notification channel not configured, logging instead",
			"listing", l.ID)
		d.logger.Info("would notify", "listing", l.ID, "message", text)
		return domain.StatusFallback, nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return domain.StatusFailed, err
	}

	if err := d.messenger.Send(ctx, text); err != nil {
		d.logger.Error("delivery failed", "listing", l.ID, "error", err)
		return domain.StatusFailed, err
	}

	d.logger.Debug("delivered", "listing", l.ID)
	return domain.StatusSent, nil
}
