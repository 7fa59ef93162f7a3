package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"flamecompanion/internal/domain"
)

// errorBody is the JSON envelope for every error response
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a domain error to an HTTP status and renders the JSON
// error envelope. Unknown errors come back as an opaque 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.Error("Unclassified error on API path", "error", err)
		derr = &domain.Error{Kind: domain.ErrKindPersistence, Message: "internal server error"}
	}

	status := http.StatusInternalServerError
	switch derr.Kind {
	case domain.ErrKindValidation:
		status = http.StatusBadRequest
	case domain.ErrKindAuthorization:
		status = http.StatusUnauthorized
	case domain.ErrKindExtraction:
		status = http.StatusBadGateway
	case domain.ErrKindPersistence:
		status = http.StatusInternalServerError
	}

	var body errorBody
	body.Error.Kind = derr.Kind
	body.Error.Message = derr.Message
	writeJSON(w, logger, status, body)
}
