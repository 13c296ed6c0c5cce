// internal/api/formations/handlers.go
package formations

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/api"
	"github.com/Dtheapp/lockerroomlink/internal/playbook"
)

var (
	svc     *playbook.Service
	svcOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *playbook.Service) {
	if s == nil {
		return
	}
	svcOnce.Do(func() {
		svc = s
	})
}

// GET /api/v1/formations?category=Offense
func HandleList(w http.ResponseWriter, r *http.Request) {
	category := playbook.Category(r.URL.Query().Get("category"))
	list, err := svc.ListFormations(r.Context(), category)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, list)
}

// POST /api/v1/formations
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var f playbook.Formation
	if err := api.DecodeJSON(r, &f); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := svc.CreateFormation(r.Context(), f)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().
		Str("formation_id", created.ID).
		Str("name", created.Name).
		Msg("Formation created")
	api.RespondJSON(w, http.StatusCreated, created)
}

// GET /api/v1/formations/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	f, err := svc.GetFormation(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, f)
}

// PUT /api/v1/formations/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var f playbook.Formation
	if err := api.DecodeJSON(r, &f); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	f.ID = r.PathValue("id")
	if err := svc.UpdateFormation(r.Context(), f); err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, f)
}

// DELETE /api/v1/formations/{id}
//
// Destructive: dependent plays and their team assignments are deleted with
// the formation.
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteFormation(r.Context(), r.PathValue("id")); err != nil {
		api.RespondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
