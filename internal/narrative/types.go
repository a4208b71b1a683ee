// Package narrative defines the data model shared by the prompt builder,
// the Gemini client, and the session layer: narrative goals, conversation
// turns, and the structured output contract the model must satisfy.
package narrative

import "fmt"

// Goal is the narrative category selected once per session. It determines
// the form fields, the prompt template, and (for document input) the
// extraction instructions.
type Goal string

const (
	GoalEvent     Goal = "event"
	GoalLink      Goal = "link"
	GoalVolunteer Goal = "volunteer"
	GoalGeneral   Goal = "general"
)

// ParseGoal converts a wire string into a Goal.
func ParseGoal(s string) (Goal, error) {
	switch Goal(s) {
	case GoalEvent, GoalLink, GoalVolunteer, GoalGeneral:
		return Goal(s), nil
	}
	return "", fmt.Errorf("unknown narrative goal %q", s)
}

// Narrative is one ready-to-publish narrative variant. Content uses newlines
// to separate paragraphs so it pastes cleanly into chat apps.
type Narrative struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Output is the structured result of one generation round: a conversational
// analysis of what was produced or changed, the narrative variants, and a
// list of missing-information prompts (empty when the input was sufficient).
//
// Output is the single source of truth for rendering and is re-serialized
// verbatim into every revision prompt.
type Output struct {
	Analysis   string      `json:"analysis"`
	Narratives []Narrative `json:"narratives"`
	DataNeeded []string    `json:"dataNeeded"`
}

// Role attributes a conversation turn to the user or the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one piece of a turn: plain text, an inline document, or both.
// Document bytes ride along only on the turn that introduces them; when a
// turn is replayed as history, only its text survives.
type Part struct {
	Text string

	// Inline document attachment, if any.
	MediaType string
	Data      []byte
	Filename  string
}

// HasData reports whether the part carries an inline document.
func (p Part) HasData() bool { return len(p.Data) > 0 }

// Turn is one message in the conversation. Turns are append-only for the
// lifetime of a session.
type Turn struct {
	Role  Role
	Parts []Part
}

// TextTurn builds a single-part text turn.
func TextTurn(role Role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}
