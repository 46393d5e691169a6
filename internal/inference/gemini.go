package inference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
	"github.com/talentscout/talentscout-api/pkg/retry"
)

const (
	defaultModel = "gemini-2.5-pro"

	// maxQuestions caps the interview regardless of how many questions the
	// model returns.
	maxQuestions = 3
)

// GeminiGateway implements Gateway on top of the Google GenAI API
type GeminiGateway struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway creates a gateway backed by the Gemini API. Every call is
// bounded by timeout and retried with backoff on transient failures.
func NewGeminiGateway(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GeminiGateway{client: client, modelName: model, timeout: timeout}, nil
}

// Validate asks the model whether the candidate's input satisfies the active
// prompt, given what is already known about them.
func (g *GeminiGateway) Validate(ctx context.Context, input, stepPrompt, validationHint string, profile map[string]string) (*ValidationResult, error) {
	prompt := fmt.Sprintf(`You are an assistant screening candidate replies during a hiring intake conversation.

The candidate was asked: %q
Expected reply: %s
Known candidate details so far:
%s
The candidate replied: %q

Decide whether the reply is a plausible, appropriate answer to the question.
Reject replies that are off-topic, nonsensical, abusive, or clearly not the
requested information. Respond with JSON only, no prose:
{"valid": true|false, "message": "<short feedback for the candidate when invalid, empty string when valid>"}`,
		stepPrompt, validationHint, formatProfile(profile), input)

	raw, err := g.generate(ctx, "validate_input", prompt)
	if err != nil {
		return nil, err
	}

	return parseValidation(raw)
}

// CheckRelevance reports whether an interview answer addresses its question
func (g *GeminiGateway) CheckRelevance(ctx context.Context, question, answer string) (bool, error) {
	prompt := fmt.Sprintf(`An interview candidate was asked: %q
They answered: %q

Does the answer attempt to address the question, even partially or incorrectly?
Respond with exactly one word: true or false.`, question, answer)

	raw, err := g.generate(ctx, "check_relevance", prompt)
	if err != nil {
		return false, err
	}

	return coerceBool(strings.ToLower(strings.TrimSpace(raw))), nil
}

// GenerateQuestions asks the model for up to 3 technical questions tailored to
// the candidate's declared stack and position.
func (g *GeminiGateway) GenerateQuestions(ctx context.Context, techStack, position string) ([]string, error) {
	prompt := fmt.Sprintf(`Generate exactly %d concise technical interview questions for a candidate
applying for the position %q with the following tech stack: %s.

Each question must be answerable in a few sentences of free text and must test
practical knowledge of the declared technologies. Respond with a JSON array of
%d strings, no prose, no numbering inside the strings.`,
		maxQuestions, position, techStack, maxQuestions)

	raw, err := g.generate(ctx, "generate_questions", prompt)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions, nil
}

// EvaluateAnswer scores one interview answer on a 0-10 scale
func (g *GeminiGateway) EvaluateAnswer(ctx context.Context, question, answer string) (int, error) {
	prompt := fmt.Sprintf(`You are scoring a technical interview answer.

Question: %q
Answer: %q

Score the answer from 0 to 10 where 0 means no relevant content at all and 10
means a complete, correct answer. Respond with a single integer only.`,
		question, answer)

	raw, err := g.generate(ctx, "evaluate_answer", prompt)
	if err != nil {
		return 0, err
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, err
	}
	return clampScore(score), nil
}

// generate performs one bounded, retried model call and collects the textual
// parts of the first responses.
func (g *GeminiGateway) generate(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()

	output, err := retry.DoWithResult(ctx, retry.InferenceConfig(), operation, func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.client.Models.GenerateContent(callCtx, g.modelName, genai.Text(prompt), nil)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}

		var builder strings.Builder
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				text := strings.TrimSpace(part.Text)
				if text == "" {
					continue
				}
				if builder.Len() > 0 {
					builder.WriteString("\n")
				}
				builder.WriteString(text)
			}
		}

		result := strings.TrimSpace(builder.String())
		if result == "" {
			return "", errors.New("gemini api returned empty response")
		}
		return result, nil
	})

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.InferenceRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.InferenceRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogInferenceCall(operation, status, duration)

	return output, err
}

// formatProfile renders collected fields as stable "key: value" lines for
// prompt context.
func formatProfile(profile map[string]string) string {
	if len(profile) == 0 {
		return "(none yet)"
	}

	keys := make([]string, 0, len(profile))
	for k, v := range profile {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "(none yet)"
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, k := range keys {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", k, profile[k]))
	}
	return builder.String()
}
