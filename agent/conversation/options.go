package conversation

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/config"
)

// Default controller limits, taken from the default conversation config.
var (
	DefaultTurnCeiling   = defaults.TurnCeiling
	DefaultTurnsPerCycle = defaults.TurnsPerCycle
	DefaultContextBudget = defaults.ContextBudget
	DefaultSnippetLimit  = defaults.SnippetLimit
)

// Options configures a Controller. Zero values take the defaults above.
type Options struct {
	// SessionID is generated when empty.
	SessionID string
	// TurnCeiling terminates the session once TurnCount reaches it.
	TurnCeiling int
	// TurnsPerCycle is added to TurnCount for every completed cycle.
	TurnsPerCycle int
	// ContextBudget bounds the running context, in runes.
	ContextBudget int
	// SnippetLimit bounds each specialist reply kept in the running context.
	SnippetLimit int
	// ExchangeBudget closes a sub-conversation with implicit satisfaction
	// after that many follow-up answers. 0 means unbounded.
	ExchangeBudget int
	// InitialTurns seeds TurnCount, e.g. when resuming.
	InitialTurns int
	// Lexicon defaults to DefaultLexicon when all lists are empty.
	Lexicon Lexicon

	Sink    EventSink
	Metrics MetricsRecorder
	Tracer  trace.Tracer
	Logger  *zap.Logger
}

// OptionsFromConfig maps the conversation config section onto Options.
// ExchangeBudget is left to the driver.
func OptionsFromConfig(cfg config.ConversationConfig) Options {
	return Options{
		TurnCeiling:   cfg.TurnCeiling,
		TurnsPerCycle: cfg.TurnsPerCycle,
		ContextBudget: cfg.ContextBudget,
		SnippetLimit:  cfg.SnippetLimit,
		Lexicon: Lexicon{
			Satisfaction: cfg.SatisfactionKeywords,
			End:          cfg.EndKeywords,
			Exit:         cfg.ExitCommands,
		},
	}
}

func (o Options) withDefaults() Options {
	if o.TurnCeiling <= 0 {
		o.TurnCeiling = DefaultTurnCeiling
	}
	if o.TurnsPerCycle <= 0 {
		o.TurnsPerCycle = DefaultTurnsPerCycle
	}
	if o.ContextBudget <= 0 {
		o.ContextBudget = DefaultContextBudget
	}
	if o.SnippetLimit <= 0 {
		o.SnippetLimit = DefaultSnippetLimit
	}
	if o.ExchangeBudget < 0 {
		o.ExchangeBudget = 0
	}
	o.InitialTurns = min(max(o.InitialTurns, 0), o.TurnCeiling)
	if len(o.Lexicon.Satisfaction) == 0 && len(o.Lexicon.End) == 0 && len(o.Lexicon.Exit) == 0 {
		o.Lexicon = DefaultLexicon()
	}
	if o.Sink == nil {
		o.Sink = NopSink{}
	}
	if o.Metrics == nil {
		o.Metrics = nopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
