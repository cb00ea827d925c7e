package storage

import (
	"log/slog"

	"RentScanner/internal/ports"
)

// SeenFile is the persistent set of listing IDs already notified,
// stored as a JSON array in insertion order, oldest first. Capacity
// eviction drops from the front so recently-notified listings are
// never re-announced.
type SeenFile struct {
	path   string
	cap    int
	logger *slog.Logger

	order []string
	index map[string]struct{}
}

var _ ports.SeenStore = (*SeenFile)(nil)

// NewSeenFile wires the file path and the maximum retained IDs.
func NewSeenFile(path string, cap int, logger *slog.Logger) *SeenFile {
	if cap <= 0 {
		cap = 5000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SeenFile{
		path:   path,
		cap:    cap,
		logger: logger,
		index:  map[string]struct{}{},
	}
}

// Load reads the persisted ID sequence. Missing or corrupt state
// yields an empty store; it never fails the run.
func (s *SeenFile) Load() error {
	s.order = nil
	s.index = map[string]struct{}{}

	var ids []string
	found, err := readStateFile(s.path, &ids)
	if err != nil {
		s.logger.Warn("seen state unreadable, starting empty",
			"path", s.path, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return nil
}

// Contains reports whether the ID was already notified.
func (s *SeenFile) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Record appends the ID as most recent. An existing entry is left in
// place: re-appending would reorder it and break eviction fairness.
func (s *SeenFile) Record(id string) {
	if id == "" {
		return
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

// Len returns the number of tracked IDs.
func (s *SeenFile) Len() int {
	return len(s.order)
}

// Save truncates to capacity, oldest first, and persists atomically.
func (s *SeenFile) Save() error {
	if len(s.order) > s.cap {
		evicted := s.order[:len(s.order)-s.cap]
		for _, id := range evicted {
			delete(s.index, id)
		}
		s.order = append([]string(nil), s.order[len(evicted):]...)
		s.logger.Debug("evicted oldest seen ids", "count", len(evicted))
	}

	if s.order == nil {
		return writeStateFile(s.path, []string{})
	}
	return writeStateFile(s.path, s.order)
}
