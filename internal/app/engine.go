package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/five82/quotebox/internal/prefs"
	"github.com/five82/quotebox/internal/quote"
	"github.com/five82/quotebox/internal/reconcile"
	"github.com/five82/quotebox/internal/remote"
	"github.com/five82/quotebox/internal/state"
)

// ErrSyncDisabled is returned by Sync when the engine has no remote.
var ErrSyncDisabled = errors.New("sync is disabled")

// Storage is the durable side of the engine. *store.Store implements it.
type Storage interface {
	prefs.KV
	LoadQuotes(ctx context.Context) ([]quote.Record, error)
	SaveQuotes(ctx context.Context, records []quote.Record) error
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, at time.Time) error
}

// EngineOptions configure an Engine. Remote may be nil to run offline.
type EngineOptions struct {
	Storage Storage
	Remote  remote.Syncer
	Policy  reconcile.Policy
	Logger  *zap.Logger
	Now     func() time.Time
	Rand    *rand.Rand
}

// CycleResult summarizes one push, fetch and merge round.
type CycleResult struct {
	Pushed     int
	PushFailed int
	Fetched    int
	Added      int
	Updated    int
	Migrated   int
	Conflicts  int
	At         time.Time
}

// Changed reports whether the cycle altered the local collection.
func (r CycleResult) Changed() bool {
	return r.Added > 0 || r.Updated > 0 || r.Migrated > 0
}

// Summary renders the result for banners and CLI output.
func (r CycleResult) Summary() string {
	parts := []string{fmt.Sprintf("fetched %d", r.Fetched)}
	if r.Pushed > 0 || r.PushFailed > 0 {
		parts = append(parts, fmt.Sprintf("pushed %d", r.Pushed))
	}
	if r.PushFailed > 0 {
		parts = append(parts, fmt.Sprintf("%d push failed", r.PushFailed))
	}
	if r.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d new", r.Added))
	}
	if r.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", r.Updated))
	}
	if r.Migrated > 0 {
		parts = append(parts, fmt.Sprintf("%d migrated", r.Migrated))
	}
	if r.Conflicts > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicts", r.Conflicts))
	}
	return "Sync: " + strings.Join(parts, ", ")
}

// Engine owns the quote collection and runs every operation on it: adding,
// importing, picking, filtering and the sync cycle. It is safe for concurrent
// use by the poller, the UI and the CLI.
type Engine struct {
	storage Storage
	remote  remote.Syncer
	policy  reconcile.Policy
	logger  *zap.Logger
	now     func() time.Time
	state   *state.Store
	cycles  singleflight.Group

	mu    sync.Mutex // guards rng and prefs
	rng   *rand.Rand
	prefs prefs.Prefs
}

// NewEngine loads the collection and preferences from storage.
func NewEngine(ctx context.Context, opts EngineOptions) (*Engine, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("engine storage is nil")
	}
	e := &Engine{
		storage: opts.Storage,
		remote:  opts.Remote,
		policy:  opts.Policy,
		logger:  opts.Logger,
		now:     opts.Now,
		rng:     opts.Rand,
	}
	if e.policy == "" {
		e.policy = reconcile.PolicyServer
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}

	records, err := e.storage.LoadQuotes(ctx)
	if err != nil {
		// Records already fall back to the seed collection.
		e.logger.Warn("load quotes failed, using seed collection", zap.Error(err))
	}
	e.prefs = prefs.Load(ctx, e.storage)
	e.state = state.NewStore(records, e.prefs.Category)

	if last, err := e.storage.LastSync(ctx); err == nil && !last.IsZero() {
		e.state.RecordSync(last)
	}

	e.logger.Info("quote collection loaded",
		zap.Int("records", len(records)),
		zap.String("filter", e.state.Snapshot().Filter),
		zap.Bool("sync", e.remote != nil),
	)
	return e, nil
}

// State exposes the shared state store for readers such as the UI.
func (e *Engine) State() *state.Store {
	return e.state
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() state.Snapshot {
	return e.state.Snapshot()
}

// SyncEnabled reports whether the engine talks to a remote.
func (e *Engine) SyncEnabled() bool {
	return e.remote != nil
}

// Policy returns the conflict policy used by Sync.
func (e *Engine) Policy() reconcile.Policy {
	return e.policy
}

// Prefs returns the current preferences.
func (e *Engine) Prefs() prefs.Prefs {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs
}

// AddQuote validates and appends a new record. The record is dirty until a
// cycle pushes it.
func (e *Engine) AddQuote(ctx context.Context, text, category string) (quote.Record, error) {
	r := quote.New(strings.TrimSpace(text), strings.TrimSpace(category), e.now())
	if err := quote.Validate(r); err != nil {
		return quote.Record{}, err
	}

	err := e.state.Mutate(func(records []quote.Record) ([]quote.Record, bool, error) {
		next := append(records, r)
		if err := e.storage.SaveQuotes(ctx, next); err != nil {
			return nil, false, fmt.Errorf("save quotes: %w", err)
		}
		return next, true, nil
	})
	if err != nil {
		e.logger.Error("add quote failed", zap.Error(err))
		return quote.Record{}, err
	}
	e.logger.Info("quote added", zap.String("id", r.ID), zap.String("category", r.Category))
	return r, nil
}

// ShowRandom picks a quote from the active filter and remembers it as the
// last viewed quote. ok is false when the filtered collection is empty.
func (e *Engine) ShowRandom() (quote.Record, bool) {
	snap := e.state.Snapshot()

	e.mu.Lock()
	r, ok := quote.Pick(snap.Records, snap.Filter, e.rng)
	e.mu.Unlock()

	if ok {
		e.state.SetLastViewed(r)
	}
	return r, ok
}

// SetFilter selects a category and saves it as a preference. The effective
// filter is returned; unknown categories fall back to "all".
func (e *Engine) SetFilter(ctx context.Context, category string) (string, error) {
	effective := e.state.SetFilter(category)

	e.mu.Lock()
	e.prefs.Category = effective
	p := e.prefs
	e.mu.Unlock()

	if err := prefs.Save(ctx, e.storage, p); err != nil {
		e.logger.Warn("save filter preference failed", zap.Error(err))
		return effective, err
	}
	return effective, nil
}

// CycleFilter advances to the next category.
func (e *Engine) CycleFilter(ctx context.Context) (string, error) {
	snap := e.state.Snapshot()
	return e.SetFilter(ctx, quote.NextFilter(snap.Filter, snap.Categories))
}

// SetTheme saves the theme preference.
func (e *Engine) SetTheme(ctx context.Context, name string) error {
	e.mu.Lock()
	e.prefs.Theme = name
	p := e.prefs
	e.mu.Unlock()

	if err := prefs.Save(ctx, e.storage, p); err != nil {
		e.logger.Warn("save theme preference failed", zap.Error(err))
		return err
	}
	return nil
}

// ImportFile replaces the collection with the JSON array at path. On any
// error nothing is changed.
func (e *Engine) ImportFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()

	records, err := quote.Import(file, path, e.now())
	if err != nil {
		e.logger.Warn("import rejected", zap.String("path", path), zap.Error(err))
		return 0, err
	}

	err = e.state.Mutate(func([]quote.Record) ([]quote.Record, bool, error) {
		if err := e.storage.SaveQuotes(ctx, records); err != nil {
			return nil, false, fmt.Errorf("save quotes: %w", err)
		}
		return records, true, nil
	})
	if err != nil {
		e.logger.Error("import failed", zap.Error(err))
		return 0, err
	}
	e.logger.Info("quotes imported", zap.String("path", path), zap.Int("records", len(records)))
	return len(records), nil
}

// ExportFile writes the collection to path as pretty-printed JSON. An empty
// path writes quotes.json in the working directory.
func (e *Engine) ExportFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = quote.DefaultExportName
	}
	records := e.state.Snapshot().Records

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := quote.Export(file, records); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	e.logger.Info("quotes exported", zap.String("path", path), zap.Int("records", len(records)))
	return path, nil
}

// Sync runs one cycle: push dirty records, fetch the remote collection,
// merge it and persist the result. Concurrent callers share the cycle that
// is already in flight.
func (e *Engine) Sync(ctx context.Context) (CycleResult, error) {
	if e.remote == nil {
		return CycleResult{}, ErrSyncDisabled
	}
	v, err, shared := e.cycles.Do("sync", func() (any, error) {
		return e.runCycle(ctx)
	})
	if shared {
		e.logger.Debug("joined in-flight sync cycle")
	}
	res, _ := v.(CycleResult)
	return res, err
}

func (e *Engine) runCycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult

	pushed := e.pushDirty(ctx, &res)

	remoteRecords, err := e.remote.FetchRemote(ctx)
	if err != nil {
		e.state.RecordFailure(err)
		e.logger.Warn("fetch remote failed",
			zap.Error(err),
			zap.Int("failures", e.state.Snapshot().ConsecutiveFailures),
		)
		return res, fmt.Errorf("fetch remote: %w", err)
	}
	res.Fetched = len(remoteRecords)

	var conflicts []reconcile.Conflict
	err = e.state.Mutate(func(records []quote.Record) ([]quote.Record, bool, error) {
		cleared := clearPushed(records, pushed)
		merged := reconcile.Merge(records, remoteRecords, e.policy)
		conflicts = merged.Conflicts
		res.Added, res.Updated, res.Migrated = merged.Added, merged.Updated, merged.Migrated
		res.Conflicts = len(merged.Conflicts)

		if !merged.Changed() && cleared == 0 {
			return nil, false, nil
		}
		if err := e.storage.SaveQuotes(ctx, merged.Records); err != nil {
			return nil, false, fmt.Errorf("save quotes: %w", err)
		}
		return merged.Records, true, nil
	})
	if err != nil {
		e.state.RecordFailure(err)
		e.logger.Error("persist merged collection failed", zap.Error(err))
		return res, err
	}

	if len(conflicts) > 0 {
		e.state.SetConflicts(conflicts)
		for _, c := range conflicts {
			e.logger.Info("conflict awaiting resolution", zap.String("id", c.ID))
		}
	}

	res.At = e.now()
	e.state.RecordSync(res.At)
	if err := e.storage.SetLastSync(ctx, res.At); err != nil {
		e.logger.Warn("save sync cursor failed", zap.Error(err))
	}

	e.logger.Info("sync cycle finished",
		zap.Int("pushed", res.Pushed),
		zap.Int("push_failed", res.PushFailed),
		zap.Int("fetched", res.Fetched),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("migrated", res.Migrated),
		zap.Int("conflicts", res.Conflicts),
	)
	return res, nil
}

// pushDirty sends every dirty record and returns the ones the remote
// accepted. Failures leave the record dirty for the next cycle. Records with
// a pending conflict wait for the user's choice.
func (e *Engine) pushDirty(ctx context.Context, res *CycleResult) []quote.Record {
	snap := e.state.Snapshot()
	pending := make(map[string]struct{}, len(snap.Conflicts))
	for _, c := range snap.Conflicts {
		pending[c.ID] = struct{}{}
	}

	var pushed []quote.Record
	for _, r := range snap.Records {
		if !r.Dirty {
			continue
		}
		if _, held := pending[r.ID]; held {
			e.logger.Debug("push held until conflict is resolved", zap.String("id", r.ID))
			continue
		}
		if err := e.remote.PushRecord(ctx, r); err != nil {
			res.PushFailed++
			e.logger.Warn("push failed", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		res.Pushed++
		pushed = append(pushed, r)
	}
	return pushed
}

// clearPushed drops the dirty flag of records that still match what was
// pushed. A record edited while its push was in flight stays dirty.
func clearPushed(records, pushed []quote.Record) int {
	if len(pushed) == 0 {
		return 0
	}
	sent := make(map[string]quote.Record, len(pushed))
	for _, r := range pushed {
		sent[r.ID] = r
	}
	cleared := 0
	for i, r := range records {
		p, ok := sent[r.ID]
		if !ok || !r.Dirty || !r.SameContent(p) {
			continue
		}
		records[i].Dirty = false
		cleared++
	}
	return cleared
}

// ResolveConflict applies the user's choice to a pending conflict. A choice
// for a record that changed after detection fails with
// reconcile.ErrStaleConflict and the conflict is dropped.
func (e *Engine) ResolveConflict(ctx context.Context, id string, choice reconcile.Choice) error {
	c, ok := e.state.TakeConflict(id)
	if !ok {
		return reconcile.ErrUnknownConflict
	}

	err := e.state.Mutate(func(records []quote.Record) ([]quote.Record, bool, error) {
		next, err := reconcile.Resolve(records, c, choice, e.now())
		if err != nil {
			return nil, false, err
		}
		if err := e.storage.SaveQuotes(ctx, next); err != nil {
			return nil, false, fmt.Errorf("save quotes: %w", err)
		}
		return next, true, nil
	})
	if err != nil {
		if !errors.Is(err, reconcile.ErrStaleConflict) && !errors.Is(err, reconcile.ErrUnknownConflict) {
			e.state.SetConflicts([]reconcile.Conflict{c})
		}
		e.logger.Warn("resolve conflict failed", zap.String("id", id), zap.Error(err))
		return err
	}
	e.logger.Info("conflict resolved", zap.String("id", id), zap.String("choice", string(choice)))
	return nil
}
