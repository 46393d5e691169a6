// Package inference wraps the external text-inference service behind a typed
// contract. Free-text model output never leaves this package: callers receive
// structured results or an error.
package inference

import "context"

// ValidationResult is the typed verdict for one candidate input
type ValidationResult struct {
	Valid   bool
	Message string
}

// Gateway is the text-inference collaborator used for input validation,
// relevance checks, question generation, and answer scoring. Implementations
// must bound every call with a timeout; a malformed model response surfaces as
// an error, never as a zero value masquerading as a verdict.
type Gateway interface {
	// Validate checks whether input is appropriate for the active step.
	Validate(ctx context.Context, input, stepPrompt, validationHint string, profile map[string]string) (*ValidationResult, error)

	// CheckRelevance reports whether an answer addresses a question.
	CheckRelevance(ctx context.Context, question, answer string) (bool, error)

	// GenerateQuestions produces up to 3 technical interview questions for
	// the declared stack and position.
	GenerateQuestions(ctx context.Context, techStack, position string) ([]string, error)

	// EvaluateAnswer scores one answer on a 0-10 scale, clamped.
	EvaluateAnswer(ctx context.Context, question, answer string) (int, error)
}
