package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"courtwatch/internal/config"
	"courtwatch/internal/courts"
	"courtwatch/internal/notify"
	"courtwatch/internal/scrape"
	"courtwatch/internal/store"
	"courtwatch/internal/track"
)

// Collaborator contracts, satisfied by the concrete scrape, courts and
// notify implementations and by fakes in tests.
type pageLister interface {
	List(ctx context.Context) ([]track.Observation, error)
}

type courtLookup interface {
	Lookup(ctx context.Context, id string) (track.Assignment, error)
}

type notifier interface {
	Notify(ctx context.Context, ev track.Event) error
}

// Runner orchestrates one reconciliation run: load state, list observed
// matches, look up courts for eligible ids, notify, prune, persist.
type Runner struct {
	cfg      *config.Config
	store    store.Store
	lister   pageLister
	courts   courtLookup
	notifier notifier
	logger   *slog.Logger
}

// NewRunner wires the concrete collaborators from configuration.
func NewRunner(cfg *config.Config, st store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	var streams *notify.StreamChecker
	if !cfg.Stream.Disabled {
		streams = notify.NewStreamChecker(cfg.Stream.SearchURL, logger)
	}

	return &Runner{
		cfg:   cfg,
		store: st,
		lister: scrape.NewLister(
			cfg.Scraper.BaseURL,
			cfg.Player.Slug,
			time.Duration(cfg.Scraper.TimeoutSec)*time.Second,
			logger,
		),
		courts: courts.NewClient(
			cfg.Courts.BaseURL,
			time.Duration(cfg.Courts.TimeoutSec)*time.Second,
			time.Duration(cfg.Courts.DelayMS)*time.Millisecond,
			logger,
		),
		notifier: notify.NewNotifier(
			cfg.GroupMe.APIURL,
			cfg.GroupMe.BotID,
			cfg.Player.Slug,
			streams,
			logger,
		),
		logger: logger,
	}
}

// RunOnce performs a single reconciliation run. The store is read once
// at the start and written once at the end; an interrupted run leaves
// the persisted state at its pre-run value.
func (r *Runner) RunOnce(ctx context.Context) error {
	now := time.Now().UTC()

	state, err := r.store.Load()
	if err != nil {
		// Load is fail-soft by contract; anything here is unexpected.
		return fmt.Errorf("load state: %w", err)
	}

	observed, scrapeErr := r.lister.List(ctx)
	if scrapeErr != nil {
		// Degrade to "nothing new observed". Pruning is skipped below so
		// a bad fetch never empties the store.
		r.logger.Warn("page fetch failed, proceeding with empty observation",
			"player", r.cfg.Player.Slug, "error", scrapeErr.Error())
		observed = nil
	}

	eligible := track.Eligible(state, observed)
	lookups := make(map[string]track.Assignment, len(eligible))
	for _, id := range eligible {
		a, err := r.courts.Lookup(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Transient failure: no entry in the map, retried next run.
			r.logger.Warn("court lookup failed", "match_id", id, "error", err.Error())
			continue
		}
		lookups[id] = a
	}

	res := track.Reconcile(state, observed, lookups, now)

	notified := 0
	for _, ev := range res.Events {
		if err := r.notifier.Notify(ctx, ev); err != nil {
			r.logger.Error("notification failed", "match_id", ev.ID, "court", ev.Court, "error", err.Error())
		}
		// An event counts as sent once attempted: the flag is flipped
		// even on dispatch failure, trading a possibly missed alert for
		// never sending a duplicate.
		track.MarkNotified(state, ev.ID, now)
		notified++
	}

	pruned := 0
	if scrapeErr == nil {
		grace := time.Duration(r.cfg.Store.GraceSec) * time.Second
		pruned = track.Prune(state, observed, now, grace)
	}

	rec := store.RunRecord{
		RunID:     uuid.New().String(),
		Timestamp: now,
		Observed:  len(observed),
		New:       res.New,
		Checked:   len(eligible),
		Assigned:  res.Assigned,
		Notified:  notified,
		Pruned:    pruned,
	}
	track.TrimHistory(state, rec, r.cfg.Store.HistoryCap)

	if err := r.store.Save(state); err != nil {
		// Notifications already went out; surface the failure without
		// pretending the run didn't happen.
		return fmt.Errorf("save state (notifications already dispatched): %w", err)
	}

	r.logger.Info("run completed",
		"run_id", rec.RunID,
		"observed", rec.Observed,
		"new", rec.New,
		"checked", rec.Checked,
		"assigned", rec.Assigned,
		"notified", rec.Notified,
		"pruned", rec.Pruned)
	return nil
}
