package conversation

import (
	"slices"
	"strings"
)

// Signal is what a counterpart message means to the controller.
type Signal string

const (
	SignalNone      Signal = "none"
	SignalSatisfied Signal = "satisfied"
	SignalEnd       Signal = "end"
	SignalExit      Signal = "exit"
)

// Lexicon holds the keyword lists used to classify counterpart messages.
// Satisfaction and end keywords match as case-insensitive substrings; exit
// commands must be the whole trimmed line.
type Lexicon struct {
	Satisfaction []string `json:"satisfaction" yaml:"satisfaction"`
	End          []string `json:"end" yaml:"end"`
	Exit         []string `json:"exit" yaml:"exit"`
}

// DefaultLexicon returns the stock keyword lists of the default
// conversation config.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Satisfaction: slices.Clone(defaults.SatisfactionKeywords),
		End:          slices.Clone(defaults.EndKeywords),
		Exit:         slices.Clone(defaults.ExitCommands),
	}
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

func normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Classify maps a message to a signal. Precedence: exit, end, satisfied.
func (l Lexicon) Classify(msg string) Signal {
	m := normalize(msg)
	if m == "" {
		return SignalNone
	}
	for _, cmd := range l.Exit {
		if m == normalize(cmd) {
			return SignalExit
		}
	}
	if containsAny(m, l.End) {
		return SignalEnd
	}
	if containsAny(m, l.Satisfaction) {
		return SignalSatisfied
	}
	return SignalNone
}

// IsExit reports whether msg is an exit command.
func (l Lexicon) IsExit(msg string) bool {
	return l.Classify(msg) == SignalExit
}

func containsAny(m string, keywords []string) bool {
	for _, k := range keywords {
		if k = normalize(k); k != "" && strings.Contains(m, k) {
			return true
		}
	}
	return false
}
