// Package attachment reads user-supplied documents into an inline
// representation suitable for the Gemini API, gating them against the fixed
// media-type allow-list before any bytes are read.
package attachment

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// MIME types accepted for document input. Anything else is rejected before
// a network call can happen.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeText = "text/plain"
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
)

var allowedTypes = map[string]bool{
	TypePDF:  true,
	TypeDOCX: true,
	TypeText: true,
	TypePNG:  true,
	TypeJPEG: true,
}

// UnsupportedTypeError reports an attachment whose declared media type is
// outside the allow-list.
type UnsupportedTypeError struct {
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q: must be one of PDF, DOCX, TXT, PNG, JPG", e.MediaType)
}

// EncodingError reports a file that could not be read into a usable payload.
type EncodingError struct {
	Filename string
	Err      error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not read attachment %q: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("could not read attachment %q: empty payload", e.Filename)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Attachment is a fully read document with its declared media type. The
// declared type is preserved unchanged; no sniffing or re-encoding happens
// here. Base64 wrapping is the transport's concern.
type Attachment struct {
	MediaType string
	Data      []byte
	Filename  string
}

// Allowed reports whether mediaType is on the document allow-list.
func Allowed(mediaType string) bool { return allowedTypes[mediaType] }

// Encode gates the declared media type, then reads r to completion. An
// unreadable or empty file yields an EncodingError; a type outside the
// allow-list yields an UnsupportedTypeError without reading any bytes.
func Encode(r io.Reader, mediaType, filename string) (*Attachment, error) {
	if !Allowed(mediaType) {
		return nil, &UnsupportedTypeError{MediaType: mediaType}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &EncodingError{Filename: filename, Err: err}
	}
	if len(data) == 0 {
		return nil, &EncodingError{Filename: filename}
	}

	log.Debug().
		Str("filename", filename).
		Str("media_type", mediaType).
		Int("size", len(data)).
		Msg("Attachment encoded")

	return &Attachment{MediaType: mediaType, Data: data, Filename: filename}, nil
}
