package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-postpress/internal/posts"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	switch posts.KindOf(err) {
	case posts.KindValidation:
		return http.StatusBadRequest, errorResponse{Error: "validation_error", Message: errorMessage(err)}
	case posts.KindConflict:
		return http.StatusConflict, errorResponse{Error: "conflict", Message: errorMessage(err)}
	case posts.KindStorage:
		return http.StatusInternalServerError, errorResponse{Error: "storage_error", Message: errorMessage(err)}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: errorMessage(err)}
	}
}

// errorMessage returns the human part of err without category prefixes.
// Validation failures keep the field details of their source.
func errorMessage(err error) string {
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		return err.Error()
	}
	if typed.Category == goerrors.CategoryValidation && typed.Source != nil {
		return typed.Message + ": " + typed.Source.Error()
	}
	return typed.Message
}
