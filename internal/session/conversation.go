// Package session owns the per-session conversational state: the turn
// history, the current structured output, and the state machine that decides
// whether a submission is an initial generation or a revision replaying
// prior context.
package session

import (
	"fmt"

	"narasi-web/internal/attachment"
	"narasi-web/internal/narrative"
	"narasi-web/internal/prompt"
)

// State is the conversation lifecycle position.
type State string

const (
	// StateEmpty is the initial state: no turns, no output.
	StateEmpty State = "empty"
	// StateAwaitingFirst means the initial user turn was sent and no model
	// reply has arrived yet.
	StateAwaitingFirst State = "awaiting_first_response"
	// StateInitialFailed means the initial generation failed; there is no
	// output and the only way forward is reset.
	StateInitialFailed State = "initial_failed"
	// StateReady means at least one completed user/model pair exists and a
	// current output is available for revision.
	StateReady State = "ready"
	// StateAwaitingRevision means a revision turn was appended on top of
	// Ready and its reply is pending.
	StateAwaitingRevision State = "awaiting_revision_response"
	// StateRevisionFailed means the last revision failed; the previous
	// output is still current and another revision may be attempted.
	StateRevisionFailed State = "revision_failed"
)

// Fixed user-facing failure messages, recorded as model turns so the chat
// view shows what went wrong.
const (
	InitialErrorMessage  = "Maaf, terjadi kesalahan saat membuat narasi. Silakan coba lagi."
	RevisionErrorMessage = "Maaf, terjadi kesalahan saat merevisi narasi. Silakan coba lagi."
)

// StateError reports an operation attempted from a state that does not
// permit it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %q", e.Op, e.State)
}

// Conversation tracks the append-only turn sequence and the current
// structured output. Operations come in Begin/Finish pairs so the owner can
// run the network call without holding its lock; Conversation itself is not
// safe for concurrent use.
type Conversation struct {
	state  State
	turns  []narrative.Turn
	output *narrative.Output
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{state: StateEmpty}
}

// State returns the current lifecycle state.
func (c *Conversation) State() State { return c.state }

// Turns returns the recorded turn sequence. The returned slice must not be
// mutated.
func (c *Conversation) Turns() []narrative.Turn { return c.turns }

// Output returns the current structured output, nil before the first
// successful generation.
func (c *Conversation) Output() *narrative.Output { return c.output }

// BeginInitial validates that the conversation is empty, builds the initial
// prompt for the goal and payload, records the user turn, and returns the
// wire turn sequence for the generation call.
func (c *Conversation) BeginInitial(goal narrative.Goal, payload prompt.Payload) ([]narrative.Turn, error) {
	if c.state != StateEmpty {
		return nil, &StateError{Op: "initial submission", State: c.state}
	}

	parts, err := prompt.BuildInitial(goal, payload)
	if err != nil {
		return nil, err
	}

	userTurn := narrative.Turn{Role: narrative.RoleUser, Parts: parts}
	c.turns = append(c.turns, userTurn)
	c.state = StateAwaitingFirst

	return []narrative.Turn{userTurn}, nil
}

// FinishInitial records the outcome of the initial generation. On success
// the output is stored and a model turn carrying its analysis is appended;
// on failure a synthetic model error turn is recorded and no output exists.
func (c *Conversation) FinishInitial(out *narrative.Output) {
	if out == nil {
		c.turns = append(c.turns, narrative.TextTurn(narrative.RoleModel, InitialErrorMessage))
		c.state = StateInitialFailed
		return
	}
	c.output = out
	c.turns = append(c.turns, narrative.TextTurn(narrative.RoleModel, out.Analysis))
	c.state = StateReady
}

// BeginRevision validates that a revision is allowed, appends the user's
// display turn (message text plus an attachment marker part, never the
// full prompt), and returns the wire turn sequence: every prior turn
// replayed role-correct with text only, then the rendered revision prompt
// as the latest user turn — the only turn that carries the attachment.
func (c *Conversation) BeginRevision(message string, att *attachment.Attachment) ([]narrative.Turn, error) {
	if c.state != StateReady && c.state != StateRevisionFailed {
		return nil, &StateError{Op: "revision", State: c.state}
	}

	revisionText, err := prompt.BuildRevision(c.output, message, att)
	if err != nil {
		return nil, err
	}

	var displayParts []narrative.Part
	if message != "" {
		displayParts = append(displayParts, narrative.Part{Text: message})
	}
	wireParts := []narrative.Part{{Text: revisionText}}
	if att != nil {
		docPart := narrative.Part{MediaType: att.MediaType, Data: att.Data, Filename: att.Filename}
		displayParts = append(displayParts, docPart)
		wireParts = append(wireParts, docPart)
	}

	history := replayTextOnly(c.turns)
	c.turns = append(c.turns, narrative.Turn{Role: narrative.RoleUser, Parts: displayParts})
	c.state = StateAwaitingRevision

	wire := append(history, narrative.Turn{Role: narrative.RoleUser, Parts: wireParts})
	return wire, nil
}

// FinishRevision records the outcome of a revision. On success the output is
// replaced and a model turn with the new analysis is appended; on failure a
// model turn with the fixed error text is appended and the previous output
// stays untouched.
func (c *Conversation) FinishRevision(out *narrative.Output) {
	if out == nil {
		c.turns = append(c.turns, narrative.TextTurn(narrative.RoleModel, RevisionErrorMessage))
		c.state = StateRevisionFailed
		return
	}
	c.output = out
	c.turns = append(c.turns, narrative.TextTurn(narrative.RoleModel, out.Analysis))
	c.state = StateReady
}

// Reset discards all turns and the stored output, returning to the pristine
// empty state. Valid from any state.
func (c *Conversation) Reset() {
	c.state = StateEmpty
	c.turns = nil
	c.output = nil
}

// replayTextOnly reconstructs prior turns for context replay: roles are
// preserved, text parts are kept, and document payloads from earlier turns
// are replaced by their attachment marker rather than re-sent. A turn may
// consist of a document alone (an attachment-only revision), so the marker
// also guarantees every replayed turn carries at least one part.
func replayTextOnly(turns []narrative.Turn) []narrative.Turn {
	replay := make([]narrative.Turn, 0, len(turns))
	for _, t := range turns {
		parts := make([]narrative.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			switch {
			case p.Text != "":
				parts = append(parts, narrative.Part{Text: p.Text})
			case p.HasData():
				parts = append(parts, narrative.Part{Text: "[Lampiran: " + p.Filename + "]"})
			}
		}
		if len(parts) == 0 {
			continue
		}
		replay = append(replay, narrative.Turn{Role: t.Role, Parts: parts})
	}
	return replay
}
