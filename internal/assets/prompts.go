// Package assets provides embedded static prompt assets.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, so wording changes never touch Go code.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

// SystemInstructionPrompt is the fixed system instruction prefix sent with
// every generation request, initial or revision. The style guide is appended
// to it; nothing about it varies per goal.
//
//go:embed prompts/system-instruction.txt
var SystemInstructionPrompt string

// StyleGuide is the YPBB communication guide: tone, the mandatory
// "Sobat Organis" greeting, second-person pronoun substitution, and the
// publishing cadence.
//
//go:embed prompts/style-guide.txt
var StyleGuide string

// VolunteerExtractionPrompt instructs the model to extract volunteer-call
// details from an attached document.
//
//go:embed prompts/extract-volunteer.txt
var VolunteerExtractionPrompt string

// EventExtractionPrompt instructs the model to extract event-announcement
// details from an attached document or TOR.
//
//go:embed prompts/extract-event.txt
var EventExtractionPrompt string

// --- Templated prompts ---

//go:embed prompts/revision.tmpl
var revisionTemplateText string

var revisionTemplate = template.Must(template.New("revision").Parse(revisionTemplateText))

// RevisionData carries the dynamic parts of a revision prompt.
type RevisionData struct {
	// CurrentJSON is the canonical serialization of the last structured output.
	CurrentJSON string
	// Message is the user's revision request, verbatim.
	Message string
	// HasAttachment adds the attachment-review clause.
	HasAttachment bool
}

// RevisionPrompt renders the revision prompt. Rendering is deterministic for
// identical input: no timestamps, no randomness.
func RevisionPrompt(data RevisionData) (string, error) {
	var buf bytes.Buffer
	if err := revisionTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
