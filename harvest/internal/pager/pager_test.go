package pager

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// scriptedBatches returns a BatchFunc that replays the given batches in
// order, then yields empty batches forever.
func scriptedBatches(batches [][]string) BatchFunc {
	return func(_ context.Context, round int) ([]string, error) {
		if round-1 < len(batches) {
			return batches[round-1], nil
		}
		return nil, nil
	}
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return out
}

func TestRun_TargetMetHasPriorityOverStagnation(t *testing.T) {
	// WHAT: with target 10 and deltas [3,4,3,0,0,...], the run stops
	// after round 3 in the target-met state.
	// WHY: stop conditions are checked in priority order; stagnation
	// must never be reported when the target was already reached.
	batches := [][]string{ids("r1", 3), ids("r2", 4), ids("r3", 3)}
	c := New(Config{Mode: ModeBounded, TargetNewCount: 10, StagnationLimit: 5},
		scriptedBatches(batches), nil, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateTargetMet {
		t.Errorf("state = %s, want %s", res.State, StateTargetMet)
	}
	if res.Rounds != 3 {
		t.Errorf("rounds = %d, want 3", res.Rounds)
	}
	if len(res.Refs) != 10 {
		t.Errorf("admitted = %d, want 10", len(res.Refs))
	}
}

func TestRun_StagnationStops(t *testing.T) {
	batches := [][]string{ids("r1", 2)}
	c := New(Config{Mode: ModeBounded, TargetNewCount: 100, StagnationLimit: 5},
		scriptedBatches(batches), nil, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateStagnant {
		t.Errorf("state = %s, want %s", res.State, StateStagnant)
	}
	// Round 1 yields 2, rounds 2-6 are the five stagnant rounds.
	if res.Rounds != 6 {
		t.Errorf("rounds = %d, want 6", res.Rounds)
	}
	if len(res.Refs) != 2 {
		t.Errorf("admitted = %d, want 2", len(res.Refs))
	}
}

func TestRun_RoundCapStops(t *testing.T) {
	// Every round yields one fresh item, so neither target nor
	// stagnation ever fires.
	round := 0
	batch := func(_ context.Context, r int) ([]string, error) {
		round++
		return []string{fmt.Sprintf("item-%d", r)}, nil
	}
	c := New(Config{Mode: ModeExhaustive, StagnationLimit: 5, RoundCap: 10}, batch, nil, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateCapped {
		t.Errorf("state = %s, want %s", res.State, StateCapped)
	}
	if res.Rounds != 10 || round != 10 {
		t.Errorf("rounds = %d (batches %d), want 10", res.Rounds, round)
	}
}

func TestRun_ExhaustiveIgnoresTarget(t *testing.T) {
	// WHAT: exhaustive mode keeps going past TargetNewCount.
	// WHY: exhaustive runs only stop on stagnation or the cap.
	batches := [][]string{ids("r1", 5), ids("r2", 5)}
	c := New(Config{Mode: ModeExhaustive, TargetNewCount: 3, StagnationLimit: 2},
		scriptedBatches(batches), nil, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateStagnant {
		t.Errorf("state = %s, want %s", res.State, StateStagnant)
	}
	if len(res.Refs) != 10 {
		t.Errorf("admitted = %d, want all 10", len(res.Refs))
	}
}

func TestRun_KnownAndInRunDuplicatesExcluded(t *testing.T) {
	// WHAT: refs in the store snapshot are skipped; refs re-yielded in
	// later rounds are admitted exactly once, at their first round.
	// WHY: the dedup invariant must survive a collector that keeps
	// re-reporting everything visible on the page.
	known := map[string]struct{}{"old-1": {}, "old-2": {}}
	batches := [][]string{
		{"old-1", "new-1", "new-2"},
		{"new-1", "new-2", "old-2", "new-3"},
	}
	c := New(Config{Mode: ModeBounded, TargetNewCount: 3, StagnationLimit: 5},
		scriptedBatches(batches), known, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Refs) != 3 {
		t.Fatalf("admitted = %d, want 3: %+v", len(res.Refs), res.Refs)
	}
	wantRounds := map[string]int{"new-1": 1, "new-2": 1, "new-3": 2}
	for _, ref := range res.Refs {
		if wantRounds[ref.ID] != ref.Round {
			t.Errorf("ref %s admitted in round %d, want %d", ref.ID, ref.Round, wantRounds[ref.ID])
		}
	}
}

func TestRun_BatchFailureIsStagnantRound(t *testing.T) {
	// WHAT: a collector error counts as a zero-delta round.
	// WHY: one failed page request must never abort the run.
	calls := 0
	batch := func(_ context.Context, round int) ([]string, error) {
		calls++
		if round == 1 {
			return []string{"a", "b"}, nil
		}
		return nil, errors.New("page load failed")
	}
	c := New(Config{Mode: ModeBounded, TargetNewCount: 50, StagnationLimit: 3}, batch, nil, nil)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateStagnant {
		t.Errorf("state = %s, want %s", res.State, StateStagnant)
	}
	if len(res.Refs) != 2 {
		t.Errorf("admitted = %d, want 2", len(res.Refs))
	}
	if calls != 4 {
		t.Errorf("batch calls = %d, want 4 (1 good + 3 failing)", calls)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{}, scriptedBatches(nil), nil, nil)
	res, err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.State != StateCollecting {
		t.Errorf("state = %s, want %s (no terminal state on cancel)", res.State, StateCollecting)
	}
}
