package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"narasi-web/internal/attachment"
	"narasi-web/internal/chat"
	"narasi-web/internal/narrative"
	"narasi-web/internal/session"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain failures onto HTTP statuses: client-side
// input problems are 400, state conflicts 409, upstream generation failures
// 502.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		unsupported *attachment.UnsupportedTypeError
		encoding    *attachment.EncodingError
		state       *session.StateError
		generation  *chat.GenerationError
		malformed   *narrative.MalformedResponseError
	)

	switch {
	case errors.As(err, &unsupported), errors.As(err, &encoding):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrBusy), errors.As(err, &state):
		httpError(w, http.StatusConflict, err.Error())
	case errors.As(err, &generation), errors.As(err, &malformed):
		httpError(w, http.StatusBadGateway, err.Error())
	default:
		httpError(w, http.StatusBadRequest, err.Error())
	}
}
