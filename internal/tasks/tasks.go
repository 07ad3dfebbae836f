// package tasks implements liked-tracks playlist sync and local library matching.
//
// The core abstraction is Engine, which orchestrates catalog reads, reconciliation, chunked playlist writes,
// and library matching. Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/likesync/internal/matcher"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/reconciler"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// MatchStore persists library match rows (satisfied by repositories.MatchRepository).
type MatchStore interface {
	BatchUpsert(rows []*models.MatchRow) (int, error)
}

// RunRecorder persists sync run summaries (satisfied by repositories.SyncRunRepository).
type RunRecorder interface {
	Create(run *models.SyncRun) error
}

// LibraryLister lists local tracks (satisfied by library.Reader).
type LibraryLister interface {
	ListLocalTracks(ctx context.Context, dir string, recursive bool) ([]models.LibraryEntry, error)
}

// SyncPlan is the read-only outcome of comparing the liked tracks with the target playlist.
type SyncPlan struct {
	PlaylistID string
	Liked      models.Collection // Source of truth
	Playlist   models.Collection // Current playlist contents
	Details    models.Collection // Playlist details overwritten by liked details
	Delta      models.ReconciliationDelta
}

// Describe returns "<name> by <artists>" for id, or "N/A by N/A" when no detail is known.
func (p *SyncPlan) Describe(id string) string {
	return Describe(p.Details, id)
}

// Describe returns "<name> by <artists>" for id using details, or "N/A by N/A" when missing.
func Describe(details models.Collection, id string) string {
	name, artists := "N/A", "N/A"
	if rec, ok := details[id]; ok {
		if rec.Name != "" {
			name = rec.Name
		}
		if len(rec.Artists) > 0 {
			artists = rec.ArtistString()
		}
	}
	return fmt.Sprintf("%s by %s", name, artists)
}

// SyncOptions controls how a plan is applied.
type SyncOptions struct {
	DryRun    bool // Compute and report the delta without writing
	ChunkSize int  // Ids per playlist write; <= 0 uses [reconciler.DefaultChunkSize]
}

// ChunkFailure records a playlist write that failed.
type ChunkFailure struct {
	Op    string   // "add" or "remove"
	Index int      // 1-based chunk number within the operation
	IDs   []string // Ids in the failed chunk
	Err   error
}

// SyncResult contains the plan and everything written while applying it.
type SyncResult struct {
	Plan    *SyncPlan
	Added   []string       // Ids written successfully
	Removed []string       // Ids removed successfully
	Failed  []ChunkFailure // Chunks that could not be written
	DryRun  bool
	RunID   string // Id of the recorded run, empty when no recorder is configured
}

// FailedCount returns the number of ids in failed chunks.
func (r *SyncResult) FailedCount() int {
	n := 0
	for _, f := range r.Failed {
		n += len(f.IDs)
	}
	return n
}

// Changed reports whether the plan required any writes.
func (r *SyncResult) Changed() bool {
	return r.Plan != nil && !r.Plan.Delta.IsEmpty()
}

// MatchOptions controls a library match run.
type MatchOptions struct {
	Tolerance float64 // Duration tolerance in percent, 0 disables the duration filter
	Recursive bool
}

// MatchReport contains one outcome per library entry.
type MatchReport struct {
	Dir     string
	Matches []models.LocalMatch
	Saved   int // Rows written to the match store
}

// MatchedCount returns the number of entries with a catalog match.
func (r *MatchReport) MatchedCount() int {
	n := 0
	for _, m := range r.Matches {
		if m.CatalogID() != "" {
			n++
		}
	}
	return n
}

// FailedCount returns the number of entries whose search failed.
func (r *MatchReport) FailedCount() int {
	n := 0
	for _, m := range r.Matches {
		if m.Failed() {
			n++
		}
	}
	return n
}

// Engine runs sync and match operations against a catalog.
type Engine struct {
	catalog services.Catalog
	library LibraryLister
	matches MatchStore
	runs    RunRecorder
	logger  *log.Logger
	now     func() time.Time
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithLibrary sets the reader used by [Engine.MatchLibrary].
func WithLibrary(l LibraryLister) EngineOption {
	return func(e *Engine) { e.library = l }
}

// WithMatchStore persists match rows after [Engine.MatchLibrary].
func WithMatchStore(s MatchStore) EngineOption {
	return func(e *Engine) { e.matches = s }
}

// WithRunRecorder records a summary after each [Engine.Sync].
func WithRunRecorder(r RunRecorder) EngineOption {
	return func(e *Engine) { e.runs = r }
}

// WithClock overrides the time source used for match rows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine for catalog. A nil logger discards output.
func NewEngine(catalog services.Catalog, logger *log.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{catalog: catalog, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Preview fetches both collections and computes the delta without writing.
func (e *Engine) Preview(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*SyncPlan, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if playlistID == "" {
		return nil, fmt.Errorf("%w: target playlist id", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchLikedUpdate(1, 2))
	liked, err := e.catalog.LikedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked tracks: %w", err)
	}
	e.logger.Info("fetched liked tracks", "count", len(liked))

	e.sendProgress(progress, fetchPlaylistUpdate(2, 2, playlistID))
	current, err := e.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}
	e.logger.Info("fetched playlist tracks", "playlist", playlistID, "count", len(current))

	delta := reconciler.Reconcile(liked, current)
	plan := &SyncPlan{
		PlaylistID: playlistID,
		Liked:      liked,
		Playlist:   current,
		Details:    current.Merge(liked),
		Delta:      delta,
	}

	e.logger.Info("tracks to add", "count", len(delta.ToAdd))
	e.logger.Info("tracks to remove", "count", len(delta.ToRemove))
	e.sendProgress(progress, reconcileUpdate(plan))
	return plan, nil
}

// Sync previews the playlist and applies the delta in chunks.
//
// A failed chunk is recorded in [SyncResult.Failed] and later chunks still run. The returned error is nil
// unless the plan could not be built or the run could not be recorded.
func (e *Engine) Sync(ctx context.Context, playlistID string, opts SyncOptions, progress chan<- ProgressUpdate) (*SyncResult, error) {
	plan, err := e.Preview(ctx, playlistID, progress)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, plan, opts, progress)
}

// Apply writes a previously computed plan.
func (e *Engine) Apply(ctx context.Context, plan *SyncPlan, opts SyncOptions, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: nil sync plan", shared.ErrInvalidInput)
	}

	result := &SyncResult{Plan: plan, DryRun: opts.DryRun, Added: []string{}, Removed: []string{}}
	size := opts.ChunkSize
	if size <= 0 {
		size = reconciler.DefaultChunkSize
	}

	if opts.DryRun {
		e.logger.Info("dry run, skipping playlist writes", "add", len(plan.Delta.ToAdd), "remove", len(plan.Delta.ToRemove))
	} else {
		result.Added = e.writeChunks(ctx, "add", plan, plan.Delta.ToAdd, size, e.catalog.AddTracks, result, progress)
		result.Removed = e.writeChunks(ctx, "remove", plan, plan.Delta.ToRemove, size, e.catalog.RemoveTracks, result, progress)
	}

	e.sendProgress(progress, completeUpdate(result))

	if e.runs != nil {
		run := models.NewSyncRun(plan.PlaylistID, len(result.Added), len(result.Removed), result.FailedCount(), opts.DryRun)
		if err := e.runs.Create(run); err != nil {
			return result, fmt.Errorf("failed to record sync run: %w", err)
		}
		result.RunID = run.ID()
	}
	return result, nil
}

type writeFunc func(ctx context.Context, playlistID string, ids []string) error

func (e *Engine) writeChunks(ctx context.Context, op string, plan *SyncPlan, ids []string, size int, write writeFunc, result *SyncResult, progress chan<- ProgressUpdate) []string {
	done := []string{}
	if len(ids) == 0 {
		e.logger.Infof("no tracks to %s", op)
		return done
	}

	chunks := reconciler.Chunk(ids, size)
	e.logger.Info("writing playlist", "op", op, "tracks", len(ids), "chunks", len(chunks))

	verb := "ADDED"
	if op == "remove" {
		verb = "REMOVED"
	}

	for i, chunk := range chunks {
		e.sendProgress(progress, writeChunkUpdate(op, i+1, len(chunks), len(chunk)))

		if err := write(ctx, plan.PlaylistID, chunk); err != nil {
			e.logger.Error("playlist write failed", "op", op, "chunk", i+1, "of", len(chunks), "playlist", plan.PlaylistID, "err", err)
			for _, id := range chunk {
				e.logger.Error("  failed", "track", plan.Describe(id), "id", id)
			}
			result.Failed = append(result.Failed, ChunkFailure{Op: op, Index: i + 1, IDs: chunk, Err: err})
			continue
		}

		e.logger.Info("playlist chunk written", "op", op, "chunk", i+1, "of", len(chunks), "tracks", len(chunk))
		for _, id := range chunk {
			e.logger.Infof("  %s: %s (%s)", verb, plan.Describe(id), id)
		}
		done = append(done, chunk...)
	}
	return done
}

// CleanTitle drops every word containing an apostrophe, which the catalog search handles poorly.
func CleanTitle(title string) string {
	words := strings.Fields(title)
	kept := words[:0]
	for _, w := range words {
		if !strings.Contains(w, "'") {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// MatchLibrary reads the local library under dir and matches every entry against the catalog.
//
// A failed search is recorded on the entry and matching continues. Validation errors from the matcher abort the run.
func (e *Engine) MatchLibrary(ctx context.Context, dir string, opts MatchOptions, progress chan<- ProgressUpdate) (*MatchReport, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library reader not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Tolerance < 0 || opts.Tolerance > 100 {
		return nil, models.NewValidationError("tolerance", "must be a percentage within [0, 100] (got %v)", opts.Tolerance)
	}

	e.sendProgress(progress, readLibraryUpdate(dir))
	entries, err := e.library.ListLocalTracks(ctx, dir, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to read library %s: %w", dir, err)
	}
	e.logger.Info("read local library", "dir", dir, "files", len(entries))

	report, err := e.MatchEntries(ctx, entries, opts.Tolerance/100, progress)
	if err != nil {
		return nil, err
	}
	report.Dir = dir
	return report, nil
}

// MatchEntries matches already-read library entries. tolerance is a fraction in [0, 1].
func (e *Engine) MatchEntries(ctx context.Context, entries []models.LibraryEntry, tolerance float64, progress chan<- ProgressUpdate) (*MatchReport, error) {
	report := &MatchReport{Matches: make([]models.LocalMatch, 0, len(entries))}
	total := len(entries)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.sendProgress(progress, searchTrackUpdate(i+1, total, entry))

		outcome := models.LocalMatch{Entry: entry}
		query := entry.LocalTrackDescriptor
		query.Title = CleanTitle(entry.Title)
		candidates, err := e.catalog.Search(ctx, query.Artist, query.Title)
		if err != nil {
			e.logger.Warn("search failed", "file", entry.Path(), "err", err)
			outcome.Err = err
			report.Matches = append(report.Matches, outcome)
			continue
		}

		result, err := matcher.Match(query, candidates, tolerance)
		if err != nil {
			return report, fmt.Errorf("failed to match %s: %w", entry.Path(), err)
		}
		outcome.Result = result
		if !result.Found() {
			e.logger.Debug("no match", "file", entry.Path())
		}
		report.Matches = append(report.Matches, outcome)
	}

	if e.matches != nil {
		now := e.now().UTC()
		rows := make([]*models.MatchRow, 0, len(report.Matches))
		for _, m := range report.Matches {
			if m.Failed() {
				continue
			}
			rows = append(rows, models.NewMatchRow(m.Entry, m.CatalogID(), now))
		}
		n, err := e.matches.BatchUpsert(rows)
		if err != nil {
			return report, fmt.Errorf("failed to save matches: %w", err)
		}
		report.Saved = n
	}

	e.logger.Info("matched library", "files", total, "matched", report.MatchedCount(), "failed", report.FailedCount())
	return report, nil
}
