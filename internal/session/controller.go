package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"narasi-web/internal/attachment"
	"narasi-web/internal/narrative"
	"narasi-web/internal/prompt"

	"github.com/rs/zerolog/log"
)

// Generator produces raw structured-output text for a system instruction and
// an ordered turn sequence. Implemented by chat.Client; mocked in tests.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, turns []narrative.Turn) (string, error)
}

// ErrBusy is returned when a submission arrives while another generation
// request is still in flight for the same session.
var ErrBusy = errors.New("a generation request is already in flight")

// InputMode is how the user chose to provide the initial input.
type InputMode string

const (
	InputModeUnset  InputMode = ""
	InputModeManual InputMode = "manual"
	InputModeUpload InputMode = "upload"
)

// ChatMessage is one rendered entry of the chat history.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Snapshot is the UI-facing view of a session.
type Snapshot struct {
	Goal      string            `json:"goal,omitempty"`
	InputMode string            `json:"inputMode,omitempty"`
	State     string            `json:"state"`
	Output    *narrative.Output `json:"output,omitempty"`
	Chat      []ChatMessage     `json:"chat"`
	Busy      bool              `json:"busy"`
	LastError string            `json:"lastError,omitempty"`
}

// Controller owns one session's state and is its only mutator. The busy
// flag is the sole mutual-exclusion mechanism for submissions: while a
// request is in flight, further submissions are refused, not queued. The
// mutex only guards field access; it is never held across the network call.
type Controller struct {
	mu        sync.Mutex
	gen       Generator
	goal      narrative.Goal
	goalSet   bool
	inputMode InputMode
	conv      *Conversation
	busy      bool
	lastError string
}

// NewController creates a controller in the pristine initial state.
func NewController(gen Generator) *Controller {
	return &Controller{gen: gen, conv: NewConversation()}
}

// SelectGoal records the narrative goal. The goal is immutable once the
// first submission has happened.
func (s *Controller) SelectGoal(goal narrative.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv.State() != StateEmpty {
		return &StateError{Op: "goal selection", State: s.conv.State()}
	}
	s.goal = goal
	s.goalSet = true
	return nil
}

// SelectInputMode records whether the user fills the form manually or
// uploads a document.
func (s *Controller) SelectInputMode(mode InputMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv.State() != StateEmpty {
		return &StateError{Op: "input mode selection", State: s.conv.State()}
	}
	if mode != InputModeManual && mode != InputModeUpload {
		return fmt.Errorf("unknown input mode %q", mode)
	}
	s.inputMode = mode
	return nil
}

// SubmitInitial runs the initial generation: prompt build, one Gemini call,
// strict decode. The goal must have been selected. On failure no structured
// output is stored and the session must be reset.
func (s *Controller) SubmitInitial(ctx context.Context, payload prompt.Payload) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if !s.goalSet {
		s.mu.Unlock()
		return fmt.Errorf("no narrative goal selected")
	}
	s.lastError = ""

	wire, err := s.conv.BeginInitial(s.goal, payload)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	goal := s.goal
	conv := s.conv
	s.mu.Unlock()

	log.Info().Str("goal", string(goal)).Bool("document", payload.IsDocument()).Msg("Starting initial generation")

	out, genErr := s.generate(ctx, wire)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv != conv {
		// The session was reset while the call was in flight; the result
		// belongs to a discarded conversation whose busy flag Reset already
		// cleared. A submission started after the reset may own the flag
		// now, so the stale request must not touch it.
		log.Warn().Msg("Discarding initial generation result after reset")
		return genErr
	}
	s.busy = false

	if genErr != nil {
		s.conv.FinishInitial(nil)
		s.lastError = InitialErrorMessage
		log.Error().Err(genErr).Msg("Initial generation failed")
		return genErr
	}

	s.conv.FinishInitial(out)
	log.Info().Int("narratives", len(out.Narratives)).Int("data_needed", len(out.DataNeeded)).Msg("Initial generation complete")
	return nil
}

// SubmitRevision runs one revision round on top of the current output. A
// request with no text and no attachment is rejected before the state
// machine is touched. On failure the previous output is preserved and the
// failure is recorded as a model turn.
func (s *Controller) SubmitRevision(ctx context.Context, message string, att *attachment.Attachment) error {
	if strings.TrimSpace(message) == "" && att == nil {
		return fmt.Errorf("empty revision request")
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.lastError = ""

	wire, err := s.conv.BeginRevision(message, att)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	conv := s.conv
	s.mu.Unlock()

	log.Info().Int("context_turns", len(wire)).Bool("attachment", att != nil).Msg("Starting revision")

	out, genErr := s.generate(ctx, wire)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv != conv {
		log.Warn().Msg("Discarding revision result after reset")
		return genErr
	}
	s.busy = false

	if genErr != nil {
		s.conv.FinishRevision(nil)
		s.lastError = RevisionErrorMessage
		log.Error().Err(genErr).Msg("Revision failed")
		return genErr
	}

	s.conv.FinishRevision(out)
	log.Info().Int("narratives", len(out.Narratives)).Msg("Revision complete")
	return nil
}

// Reset discards the whole session state and returns to the initial state.
// Valid at any time; an in-flight result arriving after a reset is discarded
// rather than applied to the fresh conversation.
func (s *Controller) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goal = ""
	s.goalSet = false
	s.inputMode = InputModeUnset
	s.conv = NewConversation()
	s.busy = false
	s.lastError = ""
}

// Snapshot returns the UI-facing view of the session.
func (s *Controller) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		InputMode: string(s.inputMode),
		State:     string(s.conv.State()),
		Output:    cloneOutput(s.conv.Output()),
		Chat:      renderChat(s.conv.Turns()),
		Busy:      s.busy,
		LastError: s.lastError,
	}
	if s.goalSet {
		snap.Goal = string(s.goal)
	}
	return snap
}

// generate runs the single network call plus strict decode. Exactly one
// call; no retry.
func (s *Controller) generate(ctx context.Context, wire []narrative.Turn) (*narrative.Output, error) {
	raw, err := s.gen.Generate(ctx, prompt.SystemInstruction(), wire)
	if err != nil {
		return nil, err
	}
	return narrative.Decode(raw)
}

// cloneOutput deep-copies the structured output so snapshot holders cannot
// mutate conversation state. Empty slices stay empty rather than nil so the
// JSON shape is stable.
func cloneOutput(o *narrative.Output) *narrative.Output {
	if o == nil {
		return nil
	}
	c := narrative.Output{
		Analysis:   o.Analysis,
		Narratives: make([]narrative.Narrative, len(o.Narratives)),
		DataNeeded: make([]string, len(o.DataNeeded)),
	}
	copy(c.Narratives, o.Narratives)
	copy(c.DataNeeded, o.DataNeeded)
	return &c
}

// renderChat flattens turns into displayable messages: text parts verbatim,
// document parts as an attachment marker.
func renderChat(turns []narrative.Turn) []ChatMessage {
	chat := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		var sb strings.Builder
		for _, p := range t.Parts {
			if p.Text != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(p.Text)
			}
			if p.HasData() {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString("[Lampiran: " + p.Filename + "]")
			}
		}
		chat = append(chat, ChatMessage{Role: string(t.Role), Text: sb.String()})
	}
	return chat
}
