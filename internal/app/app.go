package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"RentScanner/internal/config"
	"RentScanner/internal/filter"
	"RentScanner/internal/infrastructure/browser"
	"RentScanner/internal/infrastructure/parser"
	"RentScanner/internal/infrastructure/scheduler"
	"RentScanner/internal/infrastructure/storage"
	"RentScanner/internal/infrastructure/telegram"
	"RentScanner/internal/logging"
	"RentScanner/internal/notify"
	"RentScanner/internal/ports"
	"RentScanner/internal/scanner"
	"RentScanner/internal/usecase"
)

// Application wires configuration to the pipeline and its adapters.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	renderer *browser.Renderer
	db       *sql.DB
	lock     *flock.Flock
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	renderer := browser.New(browser.Options{
		ChromeBin:   cfg.Browser.ChromeBin,
		UserAgent:   cfg.Browser.UserAgent,
		Headless:    cfg.Browser.HeadlessMode(),
		PageTimeout: cfg.Browser.PageTimeout(),
	})

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRent591Scanner(renderer,
		baseLogger.With("component", "scanner.rent591")))

	source := parser.NewStrategySource(registry, cfg.Search,
		baseLogger.With("component", "source"))

	messenger := telegram.NewNotifier(
		cfg.Notifications.Telegram.BotToken,
		cfg.Notifications.Telegram.ChatID,
	)
	dispatcher := notify.NewDispatcher(messenger, cfg.Notify.SendInterval(),
		baseLogger.With("component", "notify"))

	seen := storage.NewSeenFile(cfg.State.SeenFile, cfg.State.SeenCap,
		baseLogger.With("component", "seen"))
	pending := storage.NewPendingFile(cfg.State.PendingFile,
		baseLogger.With("component", "pending"))

	var (
		archive ports.ListingArchive
		db      *sql.DB
	)
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			renderer.Close()
			return nil, fmt.Errorf("open archive database: %w", err)
		}
		db = opened
		archive = storage.NewPostgresArchive(db)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Seen:       seen,
		Pending:    pending,
		Dispatcher: dispatcher,
		Archive:    archive,
		Rules:      rulesFromConfig(cfg.Filters),
		NotifyCap:  cfg.Notify.Cap,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		renderer: renderer,
		db:       db,
		lock:     flock.New(cfg.State.LockFile),
	}, nil
}

// Run executes the pipeline once, or loops on the configured interval
// when the built-in scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if !a.cfg.Scheduler.Enabled {
		return a.runOnce(ctx)
	}

	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.Every())
	loop := usecase.NewScheduler(driver, a.pipeline)
	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return loop.Stop(context.Background())
}

// runOnce guards the run with a file lock: overlapping invocations
// from an external scheduler would race the state files, so the loser
// skips cleanly instead.
func (a *Application) runOnce(ctx context.Context) error {
	locked, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		a.logger.Warn("another run holds the lock, skipping",
			"lock", a.cfg.State.LockFile)
		return nil
	}
	defer func() { _ = a.lock.Unlock() }()

	_, err = a.pipeline.Run(ctx)
	return err
}

// Close releases the browser and the archive connection.
func (a *Application) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func rulesFromConfig(cfg config.FilterConfig) filter.Rules {
	rules := filter.DefaultRules()
	if cfg.MinArea > 0 {
		rules.MinArea = cfg.MinArea
	}
	if cfg.MaxFloorNoElevator > 0 {
		rules.MaxFloorNoElevator = cfg.MaxFloorNoElevator
	}
	if len(cfg.OpenPlanMarkers) > 0 {
		rules.OpenPlanMarkers = cfg.OpenPlanMarkers
	}
	if cfg.MaxRent > 0 {
		rules.MaxRent = cfg.MaxRent
	}
	return rules
}
