package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// BoundedContext is the running summary of a specialist sub-conversation.
// Its length in runes never exceeds the budget: every write keeps only the
// most recent suffix.
type BoundedContext struct {
	budget int
	text   string
}

// NewBoundedContext creates an empty context. A budget below 1 is treated as 1.
func NewBoundedContext(budget int) *BoundedContext {
	if budget < 1 {
		budget = 1
	}
	return &BoundedContext{budget: budget}
}

// Reset replaces the content with header.
func (c *BoundedContext) Reset(header string) {
	c.text = tail(header, c.budget)
}

// Append adds s and trims to the budget.
func (c *BoundedContext) Append(s string) {
	c.text = tail(c.text+s, c.budget)
}

func (c *BoundedContext) String() string { return c.text }

// Len is the length in runes.
func (c *BoundedContext) Len() int { return utf8.RuneCountInString(c.text) }

// Budget returns the configured budget.
func (c *BoundedContext) Budget() int { return c.budget }

func tail(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}

// consultationHeader opens the context of a new sub-conversation.
func consultationHeader(specialist, question string) string {
	return fmt.Sprintf("Client consulted with %s about: %s", specialist, question)
}

// exchangeEntry formats one counterpart question and specialist answer for
// the running context.
func exchangeEntry(message, specialist, reply string, snippetLimit int) string {
	return fmt.Sprintf("\nClient asked: %s\n%s responded: %s", message, specialist, snippet(reply, snippetLimit))
}

func snippet(reply string, limit int) string {
	s := strings.ReplaceAll(strings.TrimSpace(reply), "\n", " ")
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		return string([]rune(s)[:limit]) + "…"
	}
	return s
}
