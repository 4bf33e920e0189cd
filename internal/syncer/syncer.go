package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"playsync/internal/archive"
	ioutils "playsync/internal/io"
	"playsync/internal/logging"
	"playsync/internal/materialize"
	"playsync/internal/model"
	"playsync/internal/plan"
	"playsync/internal/playlist"
)

// Engine fetches a single item from the remote service into destDir. An
// Engine owns its own retry policy; the orchestrator calls Fetch exactly
// once per deferred item.
type Engine interface {
	Fetch(ctx context.Context, item model.PlaylistItem, format model.Format, destDir string) (model.FetchResult, error)
}

// Listing is a lazily paged stream of playlist items, in collection order.
// It is satisfied by remote.Items.
type Listing interface {
	Title() string
	Next(ctx context.Context) bool
	Item() model.PlaylistItem
	Err() error
	Omitted() int
}

// Source resolves a collection reference into a Listing.
type Source interface {
	Scan(ctx context.Context, ref string) (Listing, error)
}

// Options configures one Orchestrator.
type Options struct {
	Format               model.Format
	DownloadsPath        string
	MaxConcurrentCopies  int
	MaxConcurrentFetches int

	// CreatePlaylist writes a <collection>.m3u file after the run.
	CreatePlaylist bool
	M3UExtended    bool
}

// FailedItem identifies one item that could not be synced.
type FailedItem struct {
	RemoteID string
	Title    string
	Err      error
}

// Report summarizes a completed sync session.
type Report struct {
	SessionID  string
	Collection string
	DestDir    string

	Skipped    int
	Copied     int
	Downloaded int
	Failed     int
	Omitted    int

	FailedItems  []FailedItem
	PlaylistPath string
	Elapsed      time.Duration
}

// Total returns the number of items considered, omitted entries excluded.
func (r *Report) Total() int {
	return r.Skipped + r.Copied + r.Downloaded + r.Failed
}

// Orchestrator drives a sync session through its two phases: reconcile
// (plan every item against the archive, materialize local copies) and
// fetch (download what is left). The archive is flushed after each phase
// so an interrupted session loses at most the phase in progress.
type Orchestrator struct {
	store  *archive.Store
	source Source
	engine Engine
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	recorded map[archive.Fingerprint]bool
}

// New creates an Orchestrator.
func New(store *archive.Store, source Source, engine Engine, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MaxConcurrentCopies < 1 {
		opts.MaxConcurrentCopies = 1
	}
	if opts.MaxConcurrentFetches < 1 {
		opts.MaxConcurrentFetches = 1
	}
	return &Orchestrator{
		store:    store,
		source:   source,
		engine:   engine,
		opts:     opts,
		logger:   logging.WithComponent(logger, "syncer"),
		recorded: make(map[archive.Fingerprint]bool),
	}
}

// Run syncs the collection identified by ref and returns a Report.
//
// An unreachable collection fails the whole run before anything is
// touched on disk. After that point per-item failures are collected into
// the report and the batch continues; only cancellation stops it early,
// and even then completed work is recorded and flushed.
func (o *Orchestrator) Run(ctx context.Context, ref string) (*Report, error) {
	start := time.Now()

	o.mu.Lock()
	o.recorded = make(map[archive.Fingerprint]bool)
	o.mu.Unlock()

	report := &Report{SessionID: uuid.NewString()}
	logger := o.logger.With(slog.String("session_id", report.SessionID))

	listing, err := o.source.Scan(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("scanning collection: %w", err)
	}

	report.Collection = listing.Title()
	report.DestDir = filepath.Join(o.opts.DownloadsPath, model.SanitizeFileName(report.Collection))
	if err := ioutils.EnsureDir(report.DestDir); err != nil {
		return nil, fmt.Errorf("creating destination directory: %w", err)
	}

	logger.Info("sync started",
		slog.String("collection", report.Collection),
		slog.String("dest", report.DestDir))

	entries, deferred, err := o.reconcile(ctx, listing, report, logger)
	if err != nil {
		return nil, err
	}
	report.Omitted = listing.Omitted()

	o.flush(logger, "reconcile")

	o.fetch(ctx, deferred, report, logger)

	o.flush(logger, "fetch")

	if o.opts.CreatePlaylist && ctx.Err() == nil {
		o.writePlaylist(entries, report, logger)
	}

	report.Elapsed = time.Since(start)
	logger.Info("sync finished",
		slog.Int("skipped", report.Skipped),
		slog.Int("copied", report.Copied),
		slog.Int("downloaded", report.Downloaded),
		slog.Int("failed", report.Failed),
		slog.Int("omitted", report.Omitted),
		slog.Duration("elapsed", report.Elapsed))

	return report, ctx.Err()
}

// reconcile is phase one: walk the listing, plan every item, and
// materialize the copy-class decisions through a bounded pool. Planning
// is sequential so the deferred list keeps collection order; downgrades
// coming out of the pool are merged back in by position.
//
// The returned playlist entries use the planner's effective title and
// destination, which may come from a title-matched archive entry rather
// than the listing.
func (o *Orchestrator) reconcile(ctx context.Context, listing Listing, report *Report, logger *slog.Logger) ([]playlist.Entry, []plan.Decision, error) {
	planner := plan.New(o.store, o.opts.Format, report.DestDir, logger)
	mat := materialize.New(logger)

	var (
		entries  []playlist.Entry
		deferred []plan.Decision
		copies   []plan.Decision
	)

	seen := make(map[archive.Fingerprint]bool)
	for listing.Next(ctx) {
		d := planner.Plan(listing.Item())
		entries = append(entries, playlist.Entry{Title: d.Title, Path: d.DestPath})

		// A collection can list the same item twice. The first
		// occurrence wins; later ones are plain skips, so each
		// fingerprint is materialized or fetched at most once per run.
		if seen[d.Fingerprint] {
			report.Skipped++
			continue
		}
		seen[d.Fingerprint] = true

		switch d.Action {
		case plan.Skip:
			report.Skipped++
		case plan.Download:
			deferred = append(deferred, d)
		default:
			copies = append(copies, d)
		}
	}
	if err := listing.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning collection: %w", err)
	}

	var (
		mu         sync.Mutex
		downgraded []plan.Decision
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrentCopies)

	for _, d := range copies {
		d := d
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := mat.Materialize(d)
			switch {
			case err == nil:
				o.record(d.Fingerprint, d.Title, res.Path, res.Size)
				mu.Lock()
				report.Copied++
				mu.Unlock()
			case errors.Is(err, materialize.ErrSourceVanished),
				errors.Is(err, materialize.ErrIntegrityMismatch):
				// The archived copy is unusable after all. Not a
				// failure: the item goes back on the download list.
				logger.Warn("copy downgraded to download",
					slog.String("title", d.Title),
					slog.Any("error", err))
				mu.Lock()
				downgraded = append(downgraded, plan.Decision{
					Action:      plan.Download,
					Item:        d.Item,
					Fingerprint: d.Fingerprint,
					Title:       d.Item.Title,
				})
				mu.Unlock()
			default:
				mu.Lock()
				report.Failed++
				report.FailedItems = append(report.FailedItems, FailedItem{
					RemoteID: d.Item.RemoteID,
					Title:    d.Title,
					Err:      err,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	deferred = append(deferred, downgraded...)
	sort.SliceStable(deferred, func(i, j int) bool {
		return deferred[i].Item.Position < deferred[j].Item.Position
	})

	return entries, deferred, nil
}

// fetch is phase two: hand the deferred items to the engine through a
// bounded pool. Per-item failures are collected and the batch continues.
func (o *Orchestrator) fetch(ctx context.Context, deferred []plan.Decision, report *Report, logger *slog.Logger) {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrentFetches)

	for _, d := range deferred {
		d := d
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := o.engine.Fetch(gctx, d.Item, o.opts.Format, report.DestDir)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				logger.Warn("fetch failed",
					slog.String("remote_id", d.Item.RemoteID),
					slog.String("title", d.Item.Title),
					slog.Any("error", err))
				mu.Lock()
				report.Failed++
				report.FailedItems = append(report.FailedItems, FailedItem{
					RemoteID: d.Item.RemoteID,
					Title:    d.Item.Title,
					Err:      err,
				})
				mu.Unlock()
				return nil
			}
			o.record(d.Fingerprint, d.Item.Title, res.Path, res.Size)
			mu.Lock()
			report.Downloaded++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// record marks a fingerprint completed, at most once per session. A
// second completion for the same fingerprint (duplicate listing entries,
// a copy and a fetch racing) leaves the first record in place.
func (o *Orchestrator) record(fp archive.Fingerprint, title, path string, size int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.recorded[fp] {
		return
	}
	o.recorded[fp] = true
	o.store.Record(archive.Entry{
		Fingerprint: fp,
		Title:       title,
		Format:      o.opts.Format,
		FilePath:    path,
		FileSize:    size,
	})
}

// flush persists the archive at a phase boundary. Persistence trouble
// degrades the session rather than failing it: the in-memory index is
// still correct, so syncing can proceed.
func (o *Orchestrator) flush(logger *slog.Logger, phase string) {
	if err := o.store.Flush(); err != nil {
		logger.Warn("archive flush failed",
			slog.String("phase", phase),
			slog.Any("error", err))
	}
}

func (o *Orchestrator) writePlaylist(entries []playlist.Entry, report *Report, logger *slog.Logger) {
	path, err := playlist.NewWriter(o.opts.M3UExtended).Write(report.DestDir, report.Collection, entries)
	if err != nil {
		logger.Warn("playlist generation failed", slog.Any("error", err))
		return
	}
	report.PlaylistPath = path
}
