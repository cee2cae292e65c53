// Package harvest is the incremental content-discovery and ranking core.
//
// A run targets one source entity (a profile handle or a topic
// category), pages candidate references out of a collector, filters
// what the dedup store already knows, resolves and normalizes the rest,
// applies the mode's admission rule, and returns a bounded ranked
// result set. The dedup store remembers every admitted item so later
// runs only surface new material.
package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/glane/content"
	"github.com/hazyhaar/glane/harvest/internal/pager"
	"github.com/hazyhaar/glane/harvest/internal/rank"
	"github.com/hazyhaar/glane/harvest/internal/store"
	"github.com/hazyhaar/glane/idgen"
	"github.com/hazyhaar/glane/normalize"
)

// Collector yields candidate item IDs for an entity, one batch per
// paging round. An empty batch means "nothing new visible yet"; an
// error is a failed round, never a failed run.
type Collector interface {
	NextBatch(ctx context.Context, entity string, round int) ([]string, error)
}

// DetailFetcher resolves one candidate to its raw scraped fields.
// A failure drops that candidate only.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, ref content.CandidateRef) (*content.RawFields, error)
}

// Source binds a run to its collaborators. The session behind them is
// opened by the caller before the run and released after; the service
// holds no hidden connection state.
type Source struct {
	Entity    string
	Collector Collector
	Details   DetailFetcher
}

// Service orchestrates harvest runs against one dedup store.
type Service struct {
	store   *store.Store
	cleaner *normalize.Cleaner
	config  Config
	logger  *slog.Logger
	newID   idgen.Generator
	now     func() time.Time
}

// Option configures a Service during creation.
type Option func(*Service)

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Service) { s.newID = gen }
}

// WithClock overrides the time source. Use in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a harvest Service. The database must be opened by the
// caller (see dbopen); the schema is applied here.
func New(db *sql.DB, cfg Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	patterns := cfg.Boilerplate
	if patterns == nil {
		patterns = normalize.DefaultBoilerplate
	}
	cleaner, err := normalize.NewCleaner(patterns)
	if err != nil {
		return nil, fmt.Errorf("harvest: compile boilerplate patterns: %w", err)
	}

	if err := store.ApplySchema(db); err != nil {
		return nil, fmt.Errorf("harvest: apply schema: %w", err)
	}

	s := &Service{
		store:   store.New(db),
		cleaner: cleaner,
		config:  cfg,
		logger:  logger,
		newID:   idgen.RunID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProfileOptions configures a chronological-mode run.
type ProfileOptions struct {
	// Posts is the number of new posts to target and the result cap N.
	Posts int
	// Exhaustive ignores the target and pages until stagnation or the
	// round cap.
	Exhaustive bool
	// RoundCap overrides the service default for this run (the quick,
	// non-deep scan uses a small cap).
	RoundCap int
	// DryRun skips all dedup store reads and writes.
	DryRun bool
}

// ScanProfile runs chronological discovery for a profile handle: page
// the grid, resolve new posts, drop pinned-looking entries, sort newest
// first, keep N.
func (s *Service) ScanProfile(ctx context.Context, src Source, opts ProfileOptions) (*content.ResultSet, error) {
	if opts.Posts <= 0 {
		opts.Posts = 30
	}
	mode := pager.ModeBounded
	if opts.Exhaustive {
		mode = pager.ModeExhaustive
	}

	run, err := s.collect(ctx, src, runSpec{
		mode:     mode,
		target:   opts.Posts,
		roundCap: opts.RoundCap,
		dryRun:   opts.DryRun,
		strategy: content.StrategyChronological,
	})
	if err != nil {
		return nil, err
	}

	admitted := rank.FilterPinned(run.records, s.config.Pinned)
	s.logger.Info("harvest: pinned filter applied",
		"entity", src.Entity, "before", len(run.records), "after", len(admitted))

	rank.SortChronological(admitted)
	final := rank.Top(admitted, opts.Posts)

	rs := &content.ResultSet{
		SourceEntity: src.Entity,
		GeneratedAt:  s.now().UTC(),
		Strategy:     content.StrategyChronological,
		Params:       content.Params{TargetNewCount: opts.Posts, TopN: opts.Posts},
		Records:      final,
	}
	s.logRun(ctx, run, rs, opts.DryRun)
	return rs, nil
}

// TrendsOptions configures an engagement-mode run.
type TrendsOptions struct {
	// MaxItems is the result cap N. Default: 40.
	MaxItems int
	// MaxAge overrides the service recency window for this run.
	MaxAge time.Duration
	// TargetNewCount, when positive, bounds discovery; zero pages
	// exhaustively (until stagnation or the round cap).
	TargetNewCount int
	// Hashtags echoes the tag preset the collector was built from; it
	// is recorded in the result parameters.
	Hashtags []string
	// DryRun skips all dedup store reads and writes.
	DryRun bool
}

// ScanTrends runs engagement discovery for a topic category: page the
// tag feeds, resolve new items, drop anything outside the recency
// window, rank by engagement score, keep N.
func (s *Service) ScanTrends(ctx context.Context, src Source, opts TrendsOptions) (*content.ResultSet, error) {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 40
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = s.config.MaxAge
	}
	mode := pager.ModeExhaustive
	if opts.TargetNewCount > 0 {
		mode = pager.ModeBounded
	}

	run, err := s.collect(ctx, src, runSpec{
		mode:     mode,
		target:   opts.TargetNewCount,
		dryRun:   opts.DryRun,
		strategy: content.StrategyEngagement,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	admitted := rank.FilterRecent(run.records, now, maxAge)
	s.logger.Info("harvest: recency filter applied", "entity", src.Entity,
		"window", maxAge, "before", len(run.records), "after", len(admitted))

	rank.SortEngagement(admitted)
	final := rank.Top(admitted, opts.MaxItems)

	rs := &content.ResultSet{
		SourceEntity: src.Entity,
		GeneratedAt:  now,
		Strategy:     content.StrategyEngagement,
		Params: content.Params{
			TargetNewCount: opts.TargetNewCount,
			MaxAgeHours:    maxAge.Hours(),
			TopN:           opts.MaxItems,
			Hashtags:       opts.Hashtags,
		},
		Records: final,
	}
	s.logRun(ctx, run, rs, opts.DryRun)
	return rs, nil
}

// runSpec carries the paging knobs shared by both scan modes.
type runSpec struct {
	mode     pager.Mode
	target   int
	roundCap int
	dryRun   bool
	strategy content.Strategy
}

// runOutcome is what a completed paging+resolution pass produces.
type runOutcome struct {
	id       string
	spec     runSpec
	state    pager.State
	rounds   int
	admitted int
	records  []content.Record
	started  time.Time
}

// collect drives the pagination controller and resolves admitted refs
// to normalized records.
func (s *Service) collect(ctx context.Context, src Source, spec runSpec) (*runOutcome, error) {
	if src.Entity == "" {
		return nil, ErrInvalidEntity
	}
	if src.Collector == nil {
		return nil, ErrNoCollector
	}

	out := &runOutcome{
		id:      s.newID(),
		spec:    spec,
		started: s.now().UTC(),
	}
	log := s.logger.With("run_id", out.id, "entity", src.Entity)

	// Snapshot the dedup store once; later admission decisions use the
	// controller's in-run set, never re-queries.
	known := map[string]struct{}{}
	if !spec.dryRun {
		var err error
		known, err = s.store.LoadSeen(ctx, src.Entity)
		if err != nil {
			// Degraded: the run proceeds without history and may
			// re-discover items a healthy store would have filtered.
			log.Warn("harvest: dedup snapshot unavailable", "error", err)
			known = map[string]struct{}{}
		}
		log.Info("harvest: dedup snapshot loaded", "known", len(known))
	}

	roundCap := spec.roundCap
	if roundCap <= 0 {
		roundCap = s.config.RoundCap
	}
	ctrl := pager.New(pager.Config{
		Mode:            spec.mode,
		TargetNewCount:  spec.target,
		StagnationLimit: s.config.StagnationLimit,
		RoundCap:        roundCap,
	}, func(ctx context.Context, round int) ([]string, error) {
		return src.Collector.NextBatch(ctx, src.Entity, round)
	}, known, log)

	res, err := ctrl.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("harvest: paging cancelled: %w", err)
	}
	out.state = res.State
	out.rounds = res.Rounds
	out.admitted = len(res.Refs)
	log.Info("harvest: paging complete", "state", res.State,
		"rounds", res.Rounds, "admitted", len(res.Refs))

	out.records = s.resolveAll(ctx, src, res.Refs, spec.dryRun, log)
	return out, nil
}

// resolveAll fetches details for admitted refs with a bounded worker
// pool and normalizes the results. Each ref was already added to the
// in-run seen set at admission, so completion order cannot cause a
// double fetch. A failed fetch drops that candidate only; the item is
// still persisted as seen (without a timestamp) so the next run does
// not re-admit it.
func (s *Service) resolveAll(ctx context.Context, src Source, refs []content.CandidateRef, dryRun bool, log *slog.Logger) []content.Record {
	if len(refs) == 0 {
		return nil
	}

	type slot struct {
		rec *content.Record
	}
	slots := make([]slot, len(refs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.DetailWorkers)

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref content.CandidateRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var raw *content.RawFields
			if src.Details != nil {
				var err error
				raw, err = src.Details.FetchDetails(ctx, ref)
				if err != nil {
					log.Warn("harvest: detail fetch failed, dropping candidate",
						"item", ref.ID, "error", err)
					raw = nil
				}
			}

			rawTS := ""
			if raw != nil {
				rec := s.buildRecord(src.Entity, ref, raw)
				slots[i].rec = &rec
				rawTS = rec.RawTimestamp
			}

			if !dryRun {
				if _, err := s.store.MarkSeen(ctx, src.Entity, ref.ID, rawTS); err != nil {
					// Non-fatal: a future run may re-discover this item.
					log.Warn("harvest: dedup write failed", "item", ref.ID, "error", err)
				}
			}
		}(i, ref)
	}
	wg.Wait()

	records := make([]content.Record, 0, len(refs))
	for _, sl := range slots {
		if sl.rec != nil {
			records = append(records, *sl.rec)
		}
	}
	return records
}

// buildRecord normalizes raw scraped fields into a canonical record.
func (s *Service) buildRecord(entity string, ref content.CandidateRef, raw *content.RawFields) content.Record {
	text := s.cleaner.Clean(raw.Text)

	rec := content.Record{
		ID:           ref.ID,
		SourceEntity: entity,
		RawTimestamp: raw.Timestamp,
		Text:         text,
		Kind:         content.KindFromURL(ref.ID),
		Hashtags:     normalize.Hashtags(text),
		AudioName:    s.cleaner.Clean(raw.AudioName),
	}

	if ts, ok := normalize.ParseTimestamp(raw.Timestamp); ok {
		utc := ts.UTC()
		rec.Timestamp = &utc
	}

	likes, likesOK := normalize.ParseCount(raw.LikesText)
	comments, commOK := normalize.ParseCount(raw.CommText)
	if likesOK || commOK {
		// One present counter is enough to score; the missing one
		// counts as zero. Neither present leaves Metrics nil so output
		// can tell "unknown" from "no engagement".
		rec.Metrics = &content.Metrics{Likes: likes, Comments: comments}
	}

	return rec
}

// logRun writes the run log entry. Failures are logged, never fatal.
func (s *Service) logRun(ctx context.Context, run *runOutcome, rs *content.ResultSet, dryRun bool) {
	if dryRun {
		return
	}
	entry := &store.RunEntry{
		ID:         run.id,
		Entity:     rs.SourceEntity,
		Strategy:   string(rs.Strategy),
		Mode:       string(run.spec.mode),
		State:      string(run.state),
		Rounds:     run.rounds,
		Admitted:   run.admitted,
		Returned:   len(rs.Records),
		StartedAt:  run.started.UnixMilli(),
		FinishedAt: s.now().UTC().UnixMilli(),
	}
	if err := s.store.RecordRun(ctx, entry); err != nil {
		s.logger.Warn("harvest: run log write failed", "run_id", run.id, "error", err)
	}
}
