// internal/api/plays/handlers.go
package plays

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/api"
	"github.com/Dtheapp/lockerroomlink/internal/diagram"
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

// GET /api/v1/plays?category=Defense
func HandleList(w http.ResponseWriter, r *http.Request) {
	category := playbook.Category(r.URL.Query().Get("category"))
	list, err := svc.ListPlays(r.Context(), category)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, list)
}

// POST /api/v1/plays
//
// A play with a formationId and no elements is seeded from the formation.
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p playbook.Play
	if err := api.DecodeJSON(r, &p); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := svc.CreatePlay(r.Context(), p)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().
		Str("play_id", created.ID).
		Str("name", created.Name).
		Str("formation_id", created.FormationID).
		Msg("Play created")
	api.RespondJSON(w, http.StatusCreated, created)
}

// GET /api/v1/plays/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := svc.GetPlay(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, p)
}

// PUT /api/v1/plays/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p playbook.Play
	if err := api.DecodeJSON(r, &p); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	p.ID = r.PathValue("id")
	if err := svc.UpdatePlay(r.Context(), p); err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/plays/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeletePlay(r.Context(), r.PathValue("id")); err != nil {
		api.RespondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyFormationRequest struct {
	FormationID string `json:"formationId"`
}

// POST /api/v1/plays/{id}/formation
//
// Switches the play onto another formation, replacing its content
// wholesale. Selecting the play's current formation is a no-op so
// in-progress edits survive.
func HandleApplyFormation(w http.ResponseWriter, r *http.Request) {
	var req applyFormationRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	p, err := svc.GetPlay(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	f, err := svc.GetFormation(r.Context(), req.FormationID)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	if playbook.ApplyFormation(&p, f) {
		if err := svc.UpdatePlay(r.Context(), p); err != nil {
			api.RespondError(w, r, err)
			return
		}
	}
	api.RespondJSON(w, http.StatusOK, p)
}

type renderedLine struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Color    string `json:"color"`
	MarkerID string `json:"markerId,omitempty"`
	Dash     string `json:"dash,omitempty"`
}

type renderedRoute struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Color string `json:"color"`
	Dash  string `json:"dash,omitempty"`
}

type renderResponse struct {
	Lines      []renderedLine  `json:"lines"`
	Routes     []renderedRoute `json:"routes"`
	MarkerDefs string          `json:"markerDefs"`
}

// GET /api/v1/plays/{id}/paths
//
// Renders the play's lines and routes to SVG path descriptions. Routes
// whose start element no longer resolves are skipped.
func HandlePaths(w http.ResponseWriter, r *http.Request) {
	p, err := svc.GetPlay(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	scene := p.Scene()

	resp := renderResponse{
		Lines:      make([]renderedLine, 0, len(scene.Lines)),
		Routes:     make([]renderedRoute, 0, len(scene.Routes)),
		MarkerDefs: diagram.MarkerDefs(scene.Lines),
	}
	for _, l := range scene.Lines {
		rl := renderedLine{
			ID:       l.ID,
			Path:     diagram.Path(l),
			Color:    l.Color,
			MarkerID: diagram.MarkerID(l.LineType, l.Color),
		}
		if l.LineType == diagram.LineDashed {
			rl.Dash = diagram.DashPattern
		}
		resp.Lines = append(resp.Lines, rl)
	}

	orphaned := make(map[string]bool)
	for _, o := range scene.OrphanedRoutes() {
		orphaned[o.ID] = true
	}
	for _, rt := range scene.Routes {
		if orphaned[rt.ID] || len(rt.Points) < 2 {
			continue
		}
		rr := renderedRoute{
			ID:    rt.ID,
			Path:  diagram.Path(diagram.DrawingLine{Points: rt.Points, LineType: diagram.LineRoute}),
			Color: rt.Color,
		}
		if rt.Style == diagram.RouteDashed {
			rr.Dash = diagram.DashPattern
		}
		resp.Routes = append(resp.Routes, rr)
	}

	api.RespondJSON(w, http.StatusOK, resp)
}
