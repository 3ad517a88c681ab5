package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"notemaster/pkg/errors"
)

// maxBodyBytes bounds request bodies; a block may hold up to MaxNoteBytes
const maxBodyBytes = 4 * errors.MaxNoteBytes

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errors.ToFrontendError(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrTypeValidation, "INVALID_JSON", "invalid request body").
			WithUserMessage("The request could not be read"))
		return false
	}
	return true
}
