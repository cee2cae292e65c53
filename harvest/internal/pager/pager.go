// Package pager drives the "request next page, observe delta, decide to
// continue" loop against a collector collaborator.
//
// Any paging mechanism (cursor API, offset pagination, UI-driven
// scrolling) can implement BatchFunc without changing the controller.
package pager

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/glane/content"
)

// Mode selects how the run terminates.
type Mode string

const (
	// ModeBounded stops once TargetNewCount new items are admitted.
	ModeBounded Mode = "bounded"
	// ModeExhaustive ignores the target and runs until stagnation or the
	// round cap.
	ModeExhaustive Mode = "exhaustive"
)

// State is the controller state. A run starts in StateCollecting and
// ends in exactly one terminal state; there are no further transitions.
type State string

const (
	StateCollecting State = "collecting"
	StateTargetMet  State = "stopping_target_met"
	StateStagnant   State = "stopping_stagnant"
	StateCapped     State = "stopping_capped"
)

// BatchFunc requests the next batch of candidate item IDs from the
// collector. An empty batch means "nothing new visible yet", not
// necessarily "exhausted". round is 1-based.
type BatchFunc func(ctx context.Context, round int) ([]string, error)

// Config configures a controller run.
type Config struct {
	Mode           Mode
	TargetNewCount int
	// StagnationLimit is the number of consecutive zero-delta rounds
	// after which the source is assumed exhausted. Default: 5.
	StagnationLimit int
	// RoundCap bounds the total number of rounds. Default: 200.
	RoundCap int
}

func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = ModeBounded
	}
	if c.Mode == ModeBounded && c.TargetNewCount <= 0 {
		c.TargetNewCount = 30
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 5
	}
	if c.RoundCap <= 0 {
		c.RoundCap = 200
	}
}

// Result is the outcome of a run: the newly admitted refs in admission
// order and the terminal state reached.
type Result struct {
	Refs   []content.CandidateRef
	State  State
	Rounds int
}

// Controller runs the paging loop. Create one per run.
type Controller struct {
	config Config
	batch  BatchFunc
	known  map[string]struct{}
	logger *slog.Logger
}

// New creates a Controller. known is the dedup store snapshot for the
// entity; it is read, never written.
func New(cfg Config, batch BatchFunc, known map[string]struct{}, logger *slog.Logger) *Controller {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if known == nil {
		known = map[string]struct{}{}
	}
	return &Controller{config: cfg, batch: batch, known: known, logger: logger}
}

// Run executes rounds until a stop condition fires. A ref is admitted —
// and added to the in-run seen set — the moment it passes both the store
// snapshot and the in-run set, so the same ref is never admitted twice
// regardless of how often the collector re-yields it.
//
// A batch failure counts as a zero-delta round rather than aborting the
// run. Cancellation between rounds returns the refs admitted so far with
// ctx's error; the store is never left mid-write.
//
// Stop conditions are checked after each round in priority order:
// target met (bounded mode only), stagnation, round cap.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	seen := make(map[string]struct{})
	res := &Result{State: StateCollecting}
	stagnant := 0

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Rounds = round

		delta := 0
		batch, err := c.batch(ctx, round)
		if err != nil {
			c.logger.Warn("pager: batch failed, counting as stagnant round",
				"round", round, "error", err)
		} else {
			for _, id := range batch {
				if id == "" {
					continue
				}
				if _, ok := c.known[id]; ok {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				res.Refs = append(res.Refs, content.CandidateRef{ID: id, Round: round})
				delta++
			}
		}

		if delta > 0 {
			stagnant = 0
			c.logger.Debug("pager: round complete", "round", round,
				"new", delta, "total", len(res.Refs))
		} else {
			stagnant++
			c.logger.Debug("pager: stagnant round", "round", round, "streak", stagnant)
		}

		if c.config.Mode == ModeBounded && len(res.Refs) >= c.config.TargetNewCount {
			res.State = StateTargetMet
			return res, nil
		}
		if stagnant >= c.config.StagnationLimit {
			res.State = StateStagnant
			return res, nil
		}
		if round >= c.config.RoundCap {
			res.State = StateCapped
			return res, nil
		}
	}
}
