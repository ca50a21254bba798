// Copyright 2024-2026 Aiku AI

package buttify

import (
	"github.com/rs/zerolog"

	"github.com/aiku/buttbot/pkg/plural"
	"github.com/aiku/buttbot/pkg/syllable"
)

// Outcome describes what happened to a message.
type Outcome int

const (
	// OutcomeSkipped means the rate gate did not fire.
	OutcomeSkipped Outcome = iota
	// OutcomeNoOp means the gate fired but no replacement site was found.
	OutcomeNoOp
	// OutcomeSubstituted means at least one token was replaced.
	OutcomeSubstituted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoOp:
		return "noop"
	case OutcomeSubstituted:
		return "substituted"
	default:
		return "unknown"
	}
}

// Result is the full record of one pass over a message.
type Result struct {
	Outcome Outcome
	// Text is the rewritten message. It is only set for OutcomeSubstituted.
	Text  string
	Sites []Site
	// EffectiveRate is the rate used by the gate, or 0 when no gate ran.
	EffectiveRate int
}

// Engine ties the tokenizer, selector and pluralizer together. It is safe
// for concurrent use as long as its Rand is, and each ChannelState is only
// touched by one goroutine at a time.
type Engine struct {
	rng        Rand
	hyphenator syllable.Hyphenator
	inflector  plural.Inflector
	log        zerolog.Logger

	tokenizer  *syllable.Tokenizer
	selector   *Selector
	pluralizer *plural.Pluralizer
}

type Option func(*Engine)

// WithRand sets the random source for the gate, the selector and pool draws.
func WithRand(rng Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithHyphenator replaces the English hyphenation patterns.
func WithHyphenator(h syllable.Hyphenator) Option {
	return func(e *Engine) { e.hyphenator = h }
}

// WithInflector replaces the English plural rules.
func WithInflector(inf plural.Inflector) Option {
	return func(e *Engine) { e.inflector = inf }
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds an engine with English defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng: DefaultRand,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = DefaultRand
	}
	e.log = e.log.With().Str("component", "buttify").Logger()
	e.tokenizer = syllable.NewTokenizer(e.hyphenator)
	e.selector = NewSelector(e.rng)
	e.pluralizer = plural.New(e.inflector, e.log)
	return e
}

// Process runs the full pipeline and returns the rewritten text when a
// substitution happened. The state's missed counter is updated.
func (e *Engine) Process(text string, state *ChannelState, ignore IgnoreSet) (string, bool) {
	res := e.Run(text, state, ignore)
	if res.Outcome != OutcomeSubstituted {
		return "", false
	}
	return res.Text, true
}

// Run is Process with the full result. The missed counter is reset on a
// substitution and incremented otherwise, including when the gate fired
// but nothing could be replaced.
func (e *Engine) Run(text string, state *ChannelState, ignore IgnoreSet) Result {
	fire, eff := ShouldTrigger(e.rng, state)
	if !fire {
		state.Missed++
		return Result{Outcome: OutcomeSkipped, EffectiveRate: eff}
	}
	res := e.transform(text, state, ignore)
	res.EffectiveRate = eff
	if res.Outcome == OutcomeSubstituted {
		state.Missed = 0
	} else {
		state.Missed++
	}
	return res
}

// Force transforms text without consulting the gate and without touching
// the missed counter.
func (e *Engine) Force(text string, state *ChannelState, ignore IgnoreSet) Result {
	return e.transform(text, state, ignore)
}

func (e *Engine) transform(text string, state *ChannelState, ignore IgnoreSet) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("Transformation failed, leaving message unchanged")
			res = Result{Outcome: OutcomeNoOp}
		}
	}()
	sentence := e.tokenizer.Tokenize(text)
	sites := e.selector.Select(sentence, ignore)
	if len(sites) == 0 {
		return Result{Outcome: OutcomeNoOp}
	}
	out := sentence.Clone()
	for _, site := range sites {
		tokens := out[site.Word]
		original := tokens[site.Syllable]
		repl := e.pluralizer.Substitute(e.substitutionWord(state), tokens, site.Syllable)
		tokens[site.Syllable] = plural.MatchCase(original, repl)
	}
	return Result{
		Outcome: OutcomeSubstituted,
		Text:    syllable.Render(out),
		Sites:   sites,
	}
}

// substitutionWord draws from the channel pool when enabled and non-empty.
func (e *Engine) substitutionWord(state *ChannelState) string {
	if state.RandomWordsEnabled && len(state.RandomWords) > 0 {
		return state.RandomWords[e.rng.IntN(len(state.RandomWords))]
	}
	if state.Word == "" {
		return DefaultWord
	}
	return state.Word
}

// Tokenize exposes the engine's tokenizer.
func (e *Engine) Tokenize(text string) syllable.Sentence {
	return e.tokenizer.Tokenize(text)
}
