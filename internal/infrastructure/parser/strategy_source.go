package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"RentScanner/internal/config"
	"RentScanner/internal/domain"
	"RentScanner/internal/ports"
	"RentScanner/internal/scanner"
)

// StrategySource implements ListingSource via registered scanner
// strategies, one scan per configured search.
type StrategySource struct {
	registry *scanner.Registry
	search   config.SearchConfig
	logger   *slog.Logger

	concurrency  int
	fetchTimeout time.Duration
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured
// searches.
func NewStrategySource(reg *scanner.Registry, search config.SearchConfig, log *slog.Logger) *StrategySource {
	if log == nil {
		log = slog.Default()
	}
	concurrency := search.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &StrategySource{
		registry:     reg,
		search:       search,
		logger:       log,
		concurrency:  concurrency,
		fetchTimeout: 5 * time.Minute,
	}
}

// FetchAll executes every configured search and merges the results in
// configuration order, so downstream tie-breaks stay deterministic
// even when searches run concurrently. A failed search is logged and
// skipped; only all searches failing is an error.
func (s *StrategySource) FetchAll(ctx context.Context) ([]domain.Listing, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.search.Configs) == 0 {
		return nil, fmt.Errorf("no searches configured")
	}

	s.logger.Debug("fetch all", "searches", len(s.search.Configs))

	results := make([][]domain.Listing, len(s.search.Configs))
	failures := make([]error, len(s.search.Configs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, cfg := range s.search.Configs {
		i, cfg := i, cfg
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			listings, err := s.fetchOne(fctx, cfg)
			if err != nil {
				s.logger.Error("search failed, skipping",
					"search", cfg.Label, "error", err)
				failures[i] = err
				return nil
			}
			results[i] = listings
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	var lastErr error
	for _, err := range failures {
		if err != nil {
			failed++
			lastErr = err
		}
	}
	if failed == len(s.search.Configs) {
		return nil, fmt.Errorf("all %d searches failed: %w", failed, lastErr)
	}

	var aggregated []domain.Listing
	for i, listings := range results {
		s.logger.Debug("search produced listings",
			"search", s.search.Configs[i].Label, "count", len(listings))
		aggregated = append(aggregated, listings...)
	}

	s.logger.Debug("fetch all done", "total_listings", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) fetchOne(ctx context.Context, cfg config.SearchTarget) ([]domain.Listing, error) {
	name := cfg.Scanner
	if name == "" {
		name = s.search.Scanner
	}

	strategy, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", cfg.Label, err)
	}

	req := scanner.Request{
		Label:   cfg.Label,
		Region:  cfg.Region,
		Section: cfg.Section,
		Params:  s.search.Params,
		Options: cfg.Options,
	}

	listings, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Label, err)
	}

	for i := range listings {
		if listings[i].Source == "" {
			listings[i].Source = cfg.Label
		}
	}
	return listings, nil
}
