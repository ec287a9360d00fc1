package ai

import (
	"context"
	"encoding/json"
	"strings"

	"vega/internal/domain/suggestion"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// Verdict actions. The advisor is advisory only; the deterministic pipeline
// never changes numbers based on it, it only annotates the report.
const (
	ActionProceed = "proceed"
	ActionCaution = "caution"
	ActionSkip    = "skip"
)

// Verdict is the advisor's read on one suggestion
type Verdict struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

const systemPrompt = `You are a risk reviewer for an options scanning desk.
You receive one contract suggestion as JSON. Reply with a single JSON object:
{"action":"proceed"|"caution"|"skip","confidence":0.0-1.0,"reasoning":"one sentence"}.
Reply with JSON only, no prose around it.`

// Advisor asks a chat model to sanity-check suggestions before they reach
// the report
type Advisor struct {
	client *ChatClient
	log    *logger.Logger
}

// NewAdvisor creates an advisor over a chat client
func NewAdvisor(client *ChatClient) *Advisor {
	return &Advisor{
		client: client,
		log:    logger.Get().With("component", "advisor"),
	}
}

// Review asks the model for a verdict on one suggestion. Malformed model
// output degrades to a low-confidence caution rather than failing the scan.
func (a *Advisor) Review(ctx context.Context, s *suggestion.Suggestion) (*Verdict, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal suggestion for review")
	}

	content, err := a.client.Complete(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: string(payload)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "advisor completion")
	}

	verdict, err := parseVerdict(content)
	if err != nil {
		a.log.Warnf("advisor returned malformed verdict, degrading to caution: %v", err)
		return &Verdict{
			Action:     ActionCaution,
			Confidence: 0,
			Reasoning:  "advisor response could not be parsed",
		}, nil
	}
	return verdict, nil
}

// parseVerdict decodes the model's JSON, tolerating markdown code fences and
// surrounding prose
func parseVerdict(content string) (*Verdict, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Fall back to the outermost braces when the model wrapped the JSON in
	// prose anyway.
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return nil, errors.Wrapf(errors.ErrInternal, "no JSON object in verdict: %q", content)
		}
		cleaned = cleaned[start : end+1]
	}

	var v Verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, errors.Wrap(err, "unmarshal verdict")
	}

	switch v.Action {
	case ActionProceed, ActionCaution, ActionSkip:
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown verdict action %q", v.Action)
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return &v, nil
}
