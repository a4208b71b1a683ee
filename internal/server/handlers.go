package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"narasi-web/internal/attachment"
	"narasi-web/internal/narrative"
	"narasi-web/internal/prompt"
	"narasi-web/internal/session"
)

// maxUploadBytes caps multipart uploads; the allow-listed document types are
// all small.
const maxUploadBytes = 32 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

// GET /api/session/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/session/{id}/goal
// Body: {"goal": "event"|"link"|"volunteer"|"general"}
func (s *Server) handleSelectGoal(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := narrative.ParseGoal(req.Goal)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ctrl.SelectGoal(goal); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/session/{id}/mode
// Body: {"mode": "manual"|"upload"}
func (s *Server) handleSelectMode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ctrl.SelectInputMode(session.InputMode(req.Mode)); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/session/{id}/generate
//
// JSON body: {"text": "..."} for pre-composed input, or
// {"fields": {"eventName": "...", ...}} for goal-form fields composed
// server-side. Multipart body: a "document" file part for document input.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	payload, err := s.readInitialPayload(r, ctrl)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := ctrl.SubmitInitial(r.Context(), payload); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/session/{id}/revise
//
// JSON body: {"message": "..."}. Multipart body: a "message" field plus an
// optional "document" file part.
func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var message string
	var att *attachment.Attachment

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			httpError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		message = r.FormValue("message")

		doc, err := readDocument(r)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		att = doc
	} else {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		message = req.Message
	}

	if err := ctrl.SubmitRevision(r.Context(), message, att); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ctrl.Reset()
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// --- Request plumbing ---

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return ctrl, true
}

func (s *Server) readInitialPayload(r *http.Request, ctrl *session.Controller) (prompt.Payload, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return prompt.Payload{}, err
		}
		doc, err := readDocument(r)
		if err != nil {
			return prompt.Payload{}, err
		}
		if doc == nil {
			return prompt.Payload{}, &attachment.EncodingError{Filename: "(none)"}
		}
		return prompt.DocumentPayload(doc), nil
	}

	var req struct {
		Text   string            `json:"text"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return prompt.Payload{}, err
	}

	if req.Fields != nil {
		goal, err := narrative.ParseGoal(ctrl.Snapshot().Goal)
		if err != nil {
			return prompt.Payload{}, err
		}
		text, err := prompt.ComposeFormInput(goal, req.Fields)
		if err != nil {
			return prompt.Payload{}, err
		}
		return prompt.TextPayload(text), nil
	}
	return prompt.TextPayload(req.Text), nil
}

// readDocument encodes the "document" file part, if present. The declared
// Content-Type of the part is the media type gated against the allow-list.
func readDocument(r *http.Request) (*attachment.Attachment, error) {
	file, header, err := r.FormFile("document")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	return attachment.Encode(file, mediaType, header.Filename)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
