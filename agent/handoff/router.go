package handoff

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/types"
)

// Classifier proposes which participant should take the current message.
// It returns a raw label; validation happens in Router.
type Classifier interface {
	Classify(ctx context.Context, message, orchestratorReply string) (string, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, message, orchestratorReply string) (string, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, message, reply string) (string, error) {
	return f(ctx, message, reply)
}

// Reason explains a routing decision.
type Reason string

const (
	ReasonSpecialist      Reason = "specialist"       // label named a specialist
	ReasonOrchestrator    Reason = "orchestrator"     // label named the orchestrator
	ReasonUnrecognized    Reason = "unrecognized"     // label outside the roster
	ReasonClassifierError Reason = "classifier_error" // classifier failed
	ReasonNoClassifier    Reason = "no_classifier"
)

// Decision is the validated outcome of one routing call.
type Decision struct {
	Target Target `json:"target"`
	Label  string `json:"label"`
	Reason Reason `json:"reason"`
}

// Router validates classifier labels against the closed roster. Anything
// that is not exactly a specialist identity means "no hand-off".
type Router struct {
	classifier Classifier
	roster     *types.Roster
	logger     *zap.Logger
}

// NewRouter creates a router. A nil classifier never hands off.
func NewRouter(classifier Classifier, roster *types.Roster, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		classifier: classifier,
		roster:     roster,
		logger:     logger.With(zap.String("component", "router")),
	}
}

// Route never fails: classifier errors and unknown labels yield NoTarget.
func (r *Router) Route(ctx context.Context, message, orchestratorReply string) Decision {
	if r.classifier == nil {
		return Decision{Target: NoTarget(), Reason: ReasonNoClassifier}
	}

	raw, err := r.classifier.Classify(ctx, message, orchestratorReply)
	if err != nil {
		r.logger.Warn("classifier failed, keeping orchestrator", zap.Error(err))
		return Decision{Target: NoTarget(), Reason: ReasonClassifierError}
	}

	label := strings.TrimSpace(raw)
	id := types.Identity(label)
	switch {
	case r.roster.IsSpecialist(id):
		return Decision{Target: ToSpecialist(id), Label: label, Reason: ReasonSpecialist}
	case id == r.roster.Orchestrator():
		return Decision{Target: NoTarget(), Label: label, Reason: ReasonOrchestrator}
	default:
		r.logger.Debug("unrecognized routing label", zap.String("label", label))
		return Decision{Target: NoTarget(), Label: label, Reason: ReasonUnrecognized}
	}
}
