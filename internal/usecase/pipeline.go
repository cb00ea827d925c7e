package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"RentScanner/internal/batch"
	"RentScanner/internal/domain"
	"RentScanner/internal/filter"
	"RentScanner/internal/notify"
	"RentScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the run orchestration.
type PipelineDeps struct {
	Source     ports.ListingSource
	Seen       ports.SeenStore
	Pending    ports.PendingQueue
	Dispatcher *notify.Dispatcher
	Archive    ports.ListingArchive
	Rules      filter.Rules
	NotifyCap  int
	Logger     *slog.Logger
}

// Report summarizes one pipeline run.
type Report struct {
	Fetched  int
	Accepted int
	New      int
	Sent     int
	Fallback int
	Failed   int
	Carried  int
}

// Pipeline executes the fetch → filter → dedup → batch → notify →
// persist sequence for a single run.
type Pipeline struct {
	source     ports.ListingSource
	seen       ports.SeenStore
	pending    ports.PendingQueue
	dispatcher *notify.Dispatcher
	archive    ports.ListingArchive
	rules      filter.Rules
	notifyCap  int
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifyCap := deps.NotifyCap
	if notifyCap <= 0 {
		notifyCap = 10
	}
	return &Pipeline{
		source:     deps.Source,
		seen:       deps.Seen,
		pending:    deps.Pending,
		dispatcher: deps.Dispatcher,
		archive:    deps.Archive,
		rules:      deps.Rules,
		notifyCap:  notifyCap,
		logger:     logger,
	}
}

// Run performs one complete run. Persisted state is only touched after
// the notify stage has been reached, so a failed fetch leaves the
// previous run's files intact. Partial delivery failures do not fail
// the run; only unreachable sources or a persistence failure do.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report

	if p.source == nil {
		return report, fmt.Errorf("listing source is not configured")
	}

	if err := p.seen.Load(); err != nil {
		return report, fmt.Errorf("load seen state: %w", err)
	}
	if err := p.pending.Load(); err != nil {
		return report, fmt.Errorf("load pending state: %w", err)
	}
	p.logger.Info("state loaded",
		"seen", p.seen.Len(), "pending", len(p.pending.Items()))

	// FETCH
	fetched, err := p.source.FetchAll(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch listings: %w", err)
	}
	report.Fetched = len(fetched)

	// FILTER
	var accepted []domain.Listing
	for _, l := range fetched {
		if l.ID == "" {
			continue
		}
		keep, reason := p.rules.Evaluate(l)
		if !keep {
			p.logger.Debug("filtered out", "listing", l.ID, "reason", reason)
			continue
		}
		accepted = append(accepted, l)
	}
	report.Accepted = len(accepted)

	// DEDUP against last run's committed state, collapsing within-run
	// duplicates across searches (first fetch wins).
	fresh := make([]domain.Listing, 0, len(accepted))
	inRun := make(map[string]struct{}, len(accepted))
	for _, l := range accepted {
		if p.seen.Contains(l.ID) {
			continue
		}
		if _, ok := inRun[l.ID]; ok {
			continue
		}
		inRun[l.ID] = struct{}{}
		fresh = append(fresh, l)
	}
	report.New = len(fresh)

	// BATCH
	merged := batch.Merge(p.pending.Items(), fresh)
	toNotify, remainder := batch.Split(merged, p.notifyCap)
	p.logger.Info("batch computed",
		"new", len(fresh), "pending", len(p.pending.Items()),
		"to_notify", len(toNotify), "carry", len(remainder))

	// NOTIFY — each delivery is independent; a failure skips the
	// seen-record for that listing so it retries next run.
	var failed []domain.Listing
	for _, l := range toNotify {
		status, _ := p.dispatcher.Deliver(ctx, l)
		switch status {
		case domain.StatusSent:
			report.Sent++
		case domain.StatusFallback:
			report.Fallback++
		case domain.StatusFailed:
			report.Failed++
			failed = append(failed, l)
			continue
		}

		p.seen.Record(l.ID)
		if p.archive != nil {
			if aErr := p.archive.SaveNotified(ctx, l, status); aErr != nil {
				p.logger.Warn("archive write failed", "listing", l.ID, "error", aErr)
			}
		}
	}

	// PERSIST — failed deliveries rejoin the pending queue so they
	// are not lost when the next fetch no longer returns them.
	remainder = append(remainder, failed...)
	report.Carried = len(remainder)

	if err := p.seen.Save(); err != nil {
		return report, fmt.Errorf("save seen state: %w", err)
	}
	p.pending.Replace(remainder)
	if err := p.pending.Save(); err != nil {
		return report, fmt.Errorf("save pending state: %w", err)
	}

	p.logger.Info("run done",
		"fetched", report.Fetched, "accepted", report.Accepted,
		"new", report.New, "sent", report.Sent,
		"fallback", report.Fallback, "failed", report.Failed,
		"carried", report.Carried)
	return report, nil
}
