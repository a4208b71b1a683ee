package narrative

import (
	"encoding/json"
	"fmt"

	"narasi-web/internal/jsonutil"
)

// MalformedResponseError reports a model reply that is not valid JSON or
// does not match the output schema. A malformed reply is rejected whole;
// nothing from it is merged into existing state.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %s: %v", e.Reason, e.Err)
	}
	return "malformed model response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// rawOutput mirrors Output with pointer fields so a missing key is
// distinguishable from a present-but-empty value.
type rawOutput struct {
	Analysis   *string      `json:"analysis"`
	Narratives *[]Narrative `json:"narratives"`
	DataNeeded *[]string    `json:"dataNeeded"`
}

// Decode parses raw model response text into an Output. The three top-level
// fields are all required; each narrative entry must carry both a title and
// content. An empty narratives list is accepted (the UI simply renders no
// variants). No normalization is applied beyond type checking.
func Decode(raw string) (*Output, error) {
	parsed, err := jsonutil.Decode[rawOutput](raw)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "not a JSON object", Err: err}
	}

	if parsed.Analysis == nil {
		return nil, &MalformedResponseError{Reason: "missing required field 'analysis'"}
	}
	if parsed.Narratives == nil {
		return nil, &MalformedResponseError{Reason: "missing required field 'narratives'"}
	}
	if parsed.DataNeeded == nil {
		return nil, &MalformedResponseError{Reason: "missing required field 'dataNeeded'"}
	}

	for i, n := range *parsed.Narratives {
		if n.Title == "" || n.Content == "" {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("narrative %d missing title or content", i),
			}
		}
	}

	return &Output{
		Analysis:   *parsed.Analysis,
		Narratives: *parsed.Narratives,
		DataNeeded: *parsed.DataNeeded,
	}, nil
}

// CanonicalJSON serializes the output in the fixed field order used when a
// revision prompt replays the current state back to the model.
func (o *Output) CanonicalJSON() (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("serialize output: %w", err)
	}
	return string(b), nil
}
