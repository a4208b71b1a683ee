// Package prompt constructs the natural-language instructions sent to the
// model: the fixed system instruction, the initial user turn (free text or
// document extraction), and the revision prompt that replays the current
// structured output.
package prompt

import (
	"fmt"

	"narasi-web/internal/assets"
	"narasi-web/internal/attachment"
	"narasi-web/internal/narrative"
)

// Payload is the initial submission input: exactly one of free text or an
// attached document. Use TextPayload or DocumentPayload to construct it.
type Payload struct {
	text string
	doc  *attachment.Attachment
}

// TextPayload wraps composed free text from a goal form.
func TextPayload(text string) Payload { return Payload{text: text} }

// DocumentPayload wraps an encoded document attachment.
func DocumentPayload(doc *attachment.Attachment) Payload { return Payload{doc: doc} }

// IsDocument reports whether the payload carries a document.
func (p Payload) IsDocument() bool { return p.doc != nil }

// Text returns the free text, empty for document payloads.
func (p Payload) Text() string { return p.text }

// Document returns the attachment, nil for text payloads.
func (p Payload) Document() *attachment.Attachment { return p.doc }

// SystemInstruction returns the system instruction sent with every request:
// the fixed assistant brief followed by the YPBB style guide. It is identical
// for all goals and all turns.
func SystemInstruction() string {
	return assets.SystemInstructionPrompt + "\n" + assets.StyleGuide
}

// BuildInitial constructs the first user turn for a session.
//
// Free text passes through unmodified as a single text part. A document
// becomes a goal-specific extraction instruction followed by the inline
// attachment; only the volunteer and event goals accept documents.
func BuildInitial(goal narrative.Goal, payload Payload) ([]narrative.Part, error) {
	if !payload.IsDocument() {
		if payload.Text() == "" {
			return nil, fmt.Errorf("empty input text")
		}
		return []narrative.Part{{Text: payload.Text()}}, nil
	}

	var instruction string
	switch goal {
	case narrative.GoalVolunteer:
		instruction = assets.VolunteerExtractionPrompt
	case narrative.GoalEvent:
		instruction = assets.EventExtractionPrompt
	default:
		return nil, fmt.Errorf("goal %q does not support document input", goal)
	}

	doc := payload.Document()
	return []narrative.Part{
		{Text: instruction},
		{MediaType: doc.MediaType, Data: doc.Data, Filename: doc.Filename},
	}, nil
}

// BuildRevision renders the revision prompt: the canonical serialization of
// the current output, the user's request, and the regenerate-everything
// instruction set. Deterministic for identical inputs.
func BuildRevision(current *narrative.Output, message string, att *attachment.Attachment) (string, error) {
	if current == nil {
		return "", fmt.Errorf("no current output to revise")
	}

	currentJSON, err := current.CanonicalJSON()
	if err != nil {
		return "", err
	}

	return assets.RevisionPrompt(assets.RevisionData{
		CurrentJSON:   currentJSON,
		Message:       message,
		HasAttachment: att != nil,
	})
}
