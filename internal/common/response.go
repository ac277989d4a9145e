package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithError writes a JSON error body and notes the message on the
// request trail so the access log can store it.
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	if r != nil {
		TrailFromContext(r.Context()).SetErrorMessage(message)
	}
	RespondWithJSON(w, code, ErrorResponse{Message: message})
}

// RespondWithServiceError maps err to a status code. Client errors keep their
// own message; anything that maps to 500 is logged and hidden behind a generic one.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		RespondWithError(w, r, code, "internal server error")
		return
	}
	RespondWithError(w, r, code, ClientMessage(err, http.StatusText(code)))
}

func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, MessageResponse{Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func RespondWithText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(text))
}
