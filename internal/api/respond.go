package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/assignments"
	"github.com/Dtheapp/lockerroomlink/internal/playbook"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

// RespondJSON writes v as the JSON response body.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// RespondError maps domain errors onto HTTP statuses. Validation failures
// are the editor's problem (422); conflicts get 409; everything unexpected
// is logged and reported as a transient 500 so the client keeps its local
// draft and re-saves.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr playbook.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Msg})
	case errors.Is(err, store.ErrNotFound):
		RespondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, assignments.ErrPrimaryTaken),
		errors.Is(err, assignments.ErrAlreadyAssigned):
		RespondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, assignments.ErrUnknownPlayer):
		RespondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		RespondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
