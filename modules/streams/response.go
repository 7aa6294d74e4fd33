package streams

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/streamkit/streamkit/pkg/stream"
	"github.com/streamkit/streamkit/pkg/streamhub"
)

// JSONResponse is the module's response envelope.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries error information for rejected requests.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, JSONResponse{Data: data})
}

// respondError maps the core error taxonomy onto HTTP statuses: unknown
// identifiers are 404, subscribing to a finished stream is 409, and anything
// else is a 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, streamhub.ErrStreamNotFound):
		respondJSON(w, http.StatusNotFound, JSONResponse{Error: &ErrorDetail{
			Code:    "stream_not_found",
			Message: "stream not found",
		}})
	case errors.Is(err, streamhub.ErrSubscriptionNotFound):
		respondJSON(w, http.StatusNotFound, JSONResponse{Error: &ErrorDetail{
			Code:    "subscription_not_found",
			Message: "subscription not found",
		}})
	case errors.Is(err, stream.ErrClosed):
		respondJSON(w, http.StatusConflict, JSONResponse{Error: &ErrorDetail{
			Code:    "stream_closed",
			Message: "stream is closed",
		}})
	default:
		respondJSON(w, http.StatusInternalServerError, JSONResponse{Error: &ErrorDetail{
			Code:    "internal",
			Message: err.Error(),
		}})
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, JSONResponse{Error: &ErrorDetail{
		Code:    "bad_request",
		Message: message,
	}})
}
