package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// APIResponse is the envelope returned by write endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON writes data as the JSON body without an envelope.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondEnvelope writes data wrapped in an APIResponse.
func RespondEnvelope(w http.ResponseWriter, status int, message string, data any) {
	RespondJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Message: message,
		Data:    data,
	})
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return err
	}
	return nil
}

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent. Range checks are left to the caller.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
