package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/service"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError translates err into a status code and a JSON body and
// returns the status. Unexpected errors are logged and answered with a
// fixed message.
func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err,
			"method", r.Method, "path", r.URL.Path,
			"requestID", ctxkeys.RequestID(r.Context()),
			"userID", ctxkeys.UserID(r.Context()))
	}
	writeJSON(w, status, body)
	return status
}

func classify(err error) (int, errorBody) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{"validation_error", ve.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{"not_found", "nickname or pin is incorrect"}
	case errors.Is(err, service.ErrNicknameTaken):
		return http.StatusConflict, errorBody{"nickname_taken", "nickname is already in use"}
	case service.IsNotFound(err):
		return http.StatusNotFound, errorBody{"not_found", "resource not found"}
	default:
		return http.StatusInternalServerError, errorBody{"internal_error", "internal server error"}
	}
}

// decodeJSON reads a JSON object body, rejecting unknown fields and
// trailing data. Failures are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ValidationError{Field: "body", Message: "request body is required"}
		}
		return &service.ValidationError{Field: "body", Message: "malformed JSON: " + err.Error()}
	}
	if dec.More() {
		return &service.ValidationError{Field: "body", Message: "request body must be a single JSON object"}
	}
	return nil
}
