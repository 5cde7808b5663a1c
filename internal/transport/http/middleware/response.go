package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes a failure envelope with the correct Content-Type.
// The shape matches handler.Envelope.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"meta": map[string]interface{}{"success": false, "error": msg},
	})
}
