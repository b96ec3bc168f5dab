package agent

import (
	"context"
	"fmt"
	"strings"
)

// Classifier asks the router persona who should take a message. The label
// it returns is not validated here.
type Classifier struct {
	agent *Agent
}

// NewClassifier wraps the router agent.
func NewClassifier(router *Agent) *Classifier {
	return &Classifier{agent: router}
}

// Classify returns the router's raw label, trimmed.
func (c *Classifier) Classify(ctx context.Context, message, orchestratorReply string) (string, error) {
	prompt := fmt.Sprintf("Client message: %s\nOrchestrator response: %s", message, orchestratorReply)
	label, err := c.agent.Respond(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(label), nil
}
