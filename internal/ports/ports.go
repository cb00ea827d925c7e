package ports

import (
	"context"
	"time"

	"RentScanner/internal/domain"
)

// ListingSource pulls fresh listings across all configured searches.
// A single failing search is skipped internally; an error is returned
// only when every search failed.
type ListingSource interface {
	FetchAll(ctx context.Context) ([]domain.Listing, error)
}

// Messenger delivers one rendered message to the notification channel.
// Configured reports whether credentials are present; when false the
// pipeline routes sends to the local-log fallback instead.
type Messenger interface {
	Configured() bool
	Send(ctx context.Context, text string) error
}

// SeenStore is the bounded, persistent set of listing IDs already
// notified. Load never fails the run: missing or corrupt state yields
// an empty store.
type SeenStore interface {
	Load() error
	Contains(id string) bool
	Record(id string)
	Len() int
	Save() error
}

// PendingQueue carries listings that passed filtering but exceeded the
// per-run notify cap, across runs. Replace overwrites the whole queue.
type PendingQueue interface {
	Load() error
	Items() []domain.Listing
	Replace(listings []domain.Listing)
	Save() error
}

// ListingArchive keeps a durable record of notified listings for audit.
type ListingArchive interface {
	SaveNotified(ctx context.Context, listing domain.Listing, status domain.DeliveryStatus) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
