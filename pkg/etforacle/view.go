package etforacle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ViewPolicy decides which completion may write the view when selections
// overlap.
type ViewPolicy string

const (
	// PolicyLatestSelection applies a result only if it belongs to the most
	// recent selection. Older completions are dropped.
	PolicyLatestSelection ViewPolicy = "latest-selection"
	// PolicyLastCompletion applies every result as it arrives, so a slow
	// earlier request can overwrite a newer one.
	PolicyLastCompletion ViewPolicy = "last-completion"
)

// ParseViewPolicy normalizes a policy name; empty means latest-selection.
func ParseViewPolicy(raw string) (ViewPolicy, error) {
	switch ViewPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyLatestSelection:
		return PolicyLatestSelection, nil
	case PolicyLastCompletion:
		return PolicyLastCompletion, nil
	}
	return "", NewError(ErrCodeInvalidInput, fmt.Sprintf("unknown view policy %q", raw))
}

// FetchFunc retrieves an insight for one selection.
type FetchFunc func(ctx context.Context, market string) (*MarketInsight, error)

// ViewState is what the presentation layer renders.
type ViewState struct {
	SelectedMarket *string        `json:"selected_market"`
	Loading        bool           `json:"loading"`
	Insight        *MarketInsight `json:"insight"`
}

// InsightView tracks the selected market, the in-flight flag and the last
// insight. It lives for the whole process.
type InsightView struct {
	fetch  FetchFunc
	policy ViewPolicy
	logger *slog.Logger

	mu         sync.Mutex
	selected   *string
	loading    bool
	insight    *MarketInsight
	generation uint64
}

// NewInsightView creates an idle view.
func NewInsightView(fetch FetchFunc, policy ViewPolicy, logger *slog.Logger) *InsightView {
	if policy == "" {
		policy = PolicyLatestSelection
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightView{fetch: fetch, policy: policy, logger: logger}
}

// Policy returns the active completion policy.
func (v *InsightView) Policy() ViewPolicy {
	return v.policy
}

// SelectMarket records market as selected and marks the view loading before
// returning, then fetches in the background. A selection made while
// another is in flight does not cancel it. The returned channel closes once
// this selection's fetch has been applied or discarded.
func (v *InsightView) SelectMarket(market string) <-chan struct{} {
	v.mu.Lock()
	v.generation++
	generation := v.generation
	selected := market
	v.selected = &selected
	v.loading = true
	v.mu.Unlock()

	v.logger.Info("market selected", "market", market, "generation", generation)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.run(generation, market)
	}()
	return done
}

func (v *InsightView) run(generation uint64, market string) {
	insight, err := v.fetch(context.Background(), market)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.policy == PolicyLatestSelection && generation != v.generation {
		v.logger.Info("discarding superseded insight result",
			"market", market,
			"generation", generation,
			"latest_generation", v.generation,
		)
		return
	}

	v.loading = false
	if err != nil {
		// The previous insight stays on screen.
		v.logger.Error("analysis failed", "market", market, "generation", generation, "err", err)
		return
	}
	v.insight = insight
}

// Snapshot returns a copy of the current state.
func (v *InsightView) Snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := ViewState{Loading: v.loading}
	if v.selected != nil {
		selected := *v.selected
		state.SelectedMarket = &selected
	}
	if v.insight != nil {
		insight := *v.insight
		state.Insight = &insight
	}
	return state
}
