package api

import (
	"encoding/json"
	"net/http"
	"time"

	"portal-united/directory/internal/models/dtos/responses"
)

// respondJSON wraps data in the standard envelope; codes of 400 and above are reported as errors.
func respondJSON[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	if statusCode >= http.StatusBadRequest {
		resp.Status = "error"
		resp.Error = http.StatusText(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
