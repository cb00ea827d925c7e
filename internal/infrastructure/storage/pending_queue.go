package storage

import (
	"log/slog"

	"RentScanner/internal/domain"
	"RentScanner/internal/ports"
)

// PendingFile persists listings that passed filtering but exceeded
// the per-run notify cap. The queue is replaced wholesale at the end
// of every run; entries are carried until sent.
type PendingFile struct {
	path   string
	logger *slog.Logger

	items []domain.Listing
}

var _ ports.PendingQueue = (*PendingFile)(nil)

// NewPendingFile wires the file path.
func NewPendingFile(path string, logger *slog.Logger) *PendingFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingFile{path: path, logger: logger}
}

// Load reads the persisted queue. Missing or corrupt state yields an
// empty queue; it never fails the run.
func (p *PendingFile) Load() error {
	p.items = nil

	var listings []domain.Listing
	found, err := readStateFile(p.path, &listings)
	if err != nil {
		p.logger.Warn("pending state unreadable, starting empty",
			"path", p.path, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	for _, l := range listings {
		if l.ID == "" {
			continue
		}
		p.items = append(p.items, l)
	}
	return nil
}

// Items returns the queue contents in stored order.
func (p *PendingFile) Items() []domain.Listing {
	return p.items
}

// Replace overwrites the queue entirely with the new remainder.
func (p *PendingFile) Replace(listings []domain.Listing) {
	p.items = listings
}

// Save persists the queue atomically.
func (p *PendingFile) Save() error {
	if p.items == nil {
		return writeStateFile(p.path, []domain.Listing{})
	}
	return writeStateFile(p.path, p.items)
}
