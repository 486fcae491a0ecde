package handlers

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes caps request bodies (a full market document fits well below)
const maxBodyBytes = 16 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
