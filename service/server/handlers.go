package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - plenty for any API request
	maxUsernameLength  = 64
	maxFieldLength     = 512
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// decodeJSON decodes a request body into dst with a size cap. Returns a
// client-appropriate error message on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			return fmt.Errorf("request body too large: maximum size is 1MB")
		}
		return fmt.Errorf("invalid request body: must be valid JSON")
	}
	return nil
}

// validateUsername validates a username for length and character content.
func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username too long: maximum length is %d characters", maxUsernameLength)
	}
	for _, r := range username {
		if r == 0 || unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("invalid characters in username")
		}
	}
	return nil
}

// validateField checks a free-text field for length and control characters.
func validateField(name, value string) error {
	if len(value) > maxFieldLength {
		return fmt.Errorf("%s too long: maximum length is %d characters", name, maxFieldLength)
	}
	for _, r := range value {
		if r == 0 || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return fmt.Errorf("invalid characters in %s", name)
		}
	}
	return nil
}
