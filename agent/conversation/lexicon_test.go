package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/chinmaygupta26/elyx/config"
)

func TestLexicon_Classify(t *testing.T) {
	lex := DefaultLexicon()

	tests := []struct {
		msg  string
		want Signal
	}{
		{"", SignalNone},
		{"   ", SignalNone},
		{"What tests do I need?", SignalNone},
		{"thanks, got it", SignalSatisfied},
		{"Thank You so much", SignalSatisfied},
		{"PERFECT", SignalSatisfied},
		{"That was helpful", SignalSatisfied},
		{"I’m good for now", SignalSatisfied},
		{"ok bye", SignalEnd},
		{"see you next week", SignalEnd},
		{"there is nothing else", SignalEnd},
		// in both lists: end wins
		{"That's all, thanks!", SignalEnd},
		{"that’s all", SignalEnd},
		{"quit", SignalExit},
		{"  EXIT  ", SignalExit},
		{"Goodbye", SignalExit},
		{"bye", SignalExit},
		// exit must be the whole line
		{"I want to exit the program", SignalNone},
		{"please quit sugar", SignalNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, lex.Classify(tt.msg))
		})
	}
}

func TestDefaults_MatchConversationConfig(t *testing.T) {
	cfg := config.DefaultConversationConfig()

	lex := DefaultLexicon()
	assert.Equal(t, cfg.SatisfactionKeywords, lex.Satisfaction)
	assert.Equal(t, cfg.EndKeywords, lex.End)
	assert.Equal(t, cfg.ExitCommands, lex.Exit)
	assert.Equal(t, cfg.OpeningLine, DefaultOpeningLine)
	assert.Equal(t, cfg.FollowUp, DefaultFollowUp)
	assert.Equal(t, cfg.SimulatedExchanges, DefaultSimulatedExchanges)
	assert.Equal(t, cfg.TurnCeiling, DefaultTurnCeiling)
	assert.Equal(t, cfg.ContextBudget, DefaultContextBudget)

	// callers may edit their copy
	lex.Exit[0] = "stop"
	assert.Equal(t, cfg.ExitCommands, DefaultLexicon().Exit)

	// config-driven options agree with the package defaults
	assert.Equal(t, DefaultLexicon(), OptionsFromConfig(cfg).Lexicon)
}

func TestLexicon_IsExit(t *testing.T) {
	lex := DefaultLexicon()
	assert.True(t, lex.IsExit("Quit"))
	assert.False(t, lex.IsExit("quitting"))
}

func TestLexicon_CustomLists(t *testing.T) {
	lex := Lexicon{Satisfaction: []string{"cheers"}, End: []string{"ciao"}, Exit: []string{":q"}}
	assert.Equal(t, SignalSatisfied, lex.Classify("Cheers mate"))
	assert.Equal(t, SignalEnd, lex.Classify("ciao ciao"))
	assert.Equal(t, SignalExit, lex.Classify(":q"))
	assert.Equal(t, SignalNone, lex.Classify("thanks"))
}

// Any message containing an end keyword classifies as end or exit.
func TestLexicon_EndKeywordsNeverSatisfy(t *testing.T) {
	lex := DefaultLexicon()
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[a-z ,.!?]{0,20}`).Draw(t, "prefix")
		suffix := rapid.StringMatching(`[a-z ,.!?]{0,20}`).Draw(t, "suffix")
		kw := rapid.SampledFrom(lex.End).Draw(t, "keyword")
		if rapid.Bool().Draw(t, "upper") {
			kw = strings.ToUpper(kw)
		}

		got := lex.Classify(prefix + kw + suffix)
		if got != SignalEnd && got != SignalExit {
			t.Fatalf("%q classified as %s", prefix+kw+suffix, got)
		}
	})
}
