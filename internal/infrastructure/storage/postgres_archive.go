package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"RentScanner/internal/domain"
	"RentScanner/internal/ports"
)

// PostgresArchive keeps an audit trail of notified listings. It is
// optional: the dedup state lives in the JSON files, the archive only
// adds queryable history.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ListingArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveNotified upserts one notified listing snapshot.
func (a *PostgresArchive) SaveNotified(ctx context.Context, l domain.Listing, status domain.DeliveryStatus) error {
	if a == nil || a.db == nil {
		return nil
	}

	query, args, err := a.builder.
		Insert("notified_listings").
		Columns("listing_id", "title", "price", "address", "area", "floor",
			"layout", "url", "tags", "search_label", "status").
		Values(l.ID, l.Title, l.Price, l.Address, l.Area, l.Floor,
			l.Layout, l.URL, pq.Array(l.Tags), l.Source, string(status)).
		Suffix(`ON CONFLICT (listing_id) DO UPDATE
		        SET price = EXCLUDED.price,
		            status = EXCLUDED.status,
		            notified_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert notified listing: %w", err)
	}
	return nil
}
