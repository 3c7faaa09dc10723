package extract

import (
	"sort"

	"github.com/vicentereig/structprompt/events"
	"github.com/vicentereig/structprompt/schema"
)

// Preference is an explicit caller override for strategy selection.
type Preference int

const (
	// PreferAuto picks the highest-priority available strategy.
	PreferAuto Preference = iota
	// PreferStrict prefers provider-optimized tiers (native structured
	// output, then forced tool calls, then provider-tuned extraction),
	// falling back to the universal strategy when none is available.
	PreferStrict
	// PreferCompatible forces the universal prompting fallback.
	PreferCompatible
)

// Selector chooses the best-available extraction strategy for a
// provider/model/signature binding. The strategy set is injected as an
// ordered factory list; there is no global registry.
type Selector struct {
	provider  string
	model     string
	sig       *schema.Signature
	factories []Factory
	pref      Preference
	sink      events.Sink
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithFactories replaces the built-in strategy set.
func WithFactories(factories []Factory) SelectorOption {
	return func(s *Selector) { s.factories = factories }
}

// WithPreference sets an explicit selection preference.
func WithPreference(p Preference) SelectorOption {
	return func(s *Selector) { s.pref = p }
}

// WithSelectorSink sets the event sink for selection warnings.
func WithSelectorSink(sink events.Sink) SelectorOption {
	return func(s *Selector) { s.sink = sink }
}

// NewSelector creates a Selector for the given binding.
func NewSelector(provider, model string, sig *schema.Signature, opts ...SelectorOption) *Selector {
	s := &Selector{
		provider:  provider,
		model:     model,
		sig:       sig,
		factories: DefaultFactories(),
		sink:      events.NopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// instantiate builds fresh strategy instances in declaration order. Strategy
// lifecycle is one logical extraction operation; nothing is cached.
func (s *Selector) instantiate() []Strategy {
	strategies := make([]Strategy, 0, len(s.factories))
	for _, f := range s.factories {
		strategies = append(strategies, f(s.provider, s.model, s.sig))
	}
	return strategies
}

// AvailableStrategies returns the strategies whose Available() is true,
// ordered by priority descending. Equal priorities keep declaration order,
// so selection is deterministic.
func (s *Selector) AvailableStrategies() []Strategy {
	var available []Strategy
	for _, strat := range s.instantiate() {
		if strat.Available() {
			available = append(available, strat)
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})
	return available
}

// StrategyAvailable reports whether the named strategy is available for
// this binding.
func (s *Selector) StrategyAvailable(name string) bool {
	for _, strat := range s.instantiate() {
		if strat.Name() == name {
			return strat.Available()
		}
	}
	return false
}

// Select resolves the strategy to attempt first. With the built-in factory
// set this never returns nil: the universal fallback is unconditionally
// available. A custom factory list that excludes it may yield nil.
func (s *Selector) Select() Strategy {
	switch s.pref {
	case PreferStrict:
		if strat := s.selectStrict(); strat != nil {
			return strat
		}
		s.warnPreference("strict")
	case PreferCompatible:
		if strat := s.findUniversal(); strat != nil {
			return strat
		}
		s.warnPreference("compatible")
	}
	return s.selectAuto()
}

// selectStrict walks provider-optimized tiers in declaration order and takes
// the first available; when none serves, the universal fallback does.
func (s *Selector) selectStrict() Strategy {
	var fallback Strategy
	for _, strat := range s.instantiate() {
		if strat.Name() == StrategyEnhancedPrompting {
			fallback = strat
			continue
		}
		if strat.Available() {
			return strat
		}
	}
	if fallback != nil && fallback.Available() {
		return fallback
	}
	return nil
}

func (s *Selector) findUniversal() Strategy {
	for _, strat := range s.instantiate() {
		if strat.Name() == StrategyEnhancedPrompting && strat.Available() {
			return strat
		}
	}
	return nil
}

func (s *Selector) selectAuto() Strategy {
	available := s.AvailableStrategies()
	if len(available) == 0 {
		return nil
	}
	return available[0]
}

func (s *Selector) warnPreference(pref string) {
	s.sink.Emit("extraction.preference_unavailable", map[string]interface{}{
		"preference": pref,
		"provider":   s.provider,
		"model":      s.model,
	})
}
