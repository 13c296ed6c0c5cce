// internal/api/teamplays/handlers.go
package teamplays

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/api"
	"github.com/Dtheapp/lockerroomlink/internal/assignments"
	"github.com/Dtheapp/lockerroomlink/internal/playbook"
)

var (
	svc      *assignments.Service
	playbSvc *playbook.Service
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(a *assignments.Service, p *playbook.Service) {
	if a == nil || p == nil {
		return
	}
	initOnce.Do(func() {
		svc = a
		playbSvc = p
	})
}

type assignPlayRequest struct {
	TeamID     string `json:"teamId"`
	PlayID     string `json:"playId"`
	AssignedBy string `json:"assignedBy"`
}

// POST /api/v1/team-plays
func HandleAssignPlay(w http.ResponseWriter, r *http.Request) {
	var req assignPlayRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TeamID == "" || req.PlayID == "" {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "teamId and playId are required"})
		return
	}
	play, err := playbSvc.GetPlay(r.Context(), req.PlayID)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	tpa, err := svc.AssignPlay(r.Context(), req.TeamID, req.PlayID, string(play.Category), req.AssignedBy)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, tpa)
}

// GET /api/v1/team-plays?team=team-1
func HandleList(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team")
	if teamID == "" {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "team is required"})
		return
	}
	list, err := svc.ListForTeam(r.Context(), teamID)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/team-plays/{id}
func HandleUnassign(w http.ResponseWriter, r *http.Request) {
	if err := svc.Unassign(r.Context(), r.PathValue("id")); err != nil {
		api.RespondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/team-plays/{id}/positions
func HandlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := svc.Positions(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, positions)
}

type assignPositionRequest struct {
	PrimaryID   string `json:"primaryId"`
	SecondaryID string `json:"secondaryId"`
}

// PUT /api/v1/team-plays/{id}/positions/{elementId}
//
// Staffs one position. A primary already claimed by another position is a
// 409 unless ?force=1 asks for the legacy last-write-wins behavior.
func HandleAssignPosition(w http.ResponseWriter, r *http.Request) {
	var req assignPositionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	force := r.URL.Query().Get("force") == "1"
	pa, err := svc.AssignPosition(r.Context(), r.PathValue("id"), assignments.AssignRequest{
		ElementID:   r.PathValue("elementId"),
		PrimaryID:   req.PrimaryID,
		SecondaryID: req.SecondaryID,
		Force:       force,
	})
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	if force {
		log.Ctx(r.Context()).Warn().
			Str("assignment_id", pa.AssignmentID).
			Str("element_id", pa.ElementID).
			Msg("Forced position assignment over uniqueness check")
	}
	api.RespondJSON(w, http.StatusOK, pa)
}

type staffingResponse struct {
	FullyStaffed bool `json:"fullyStaffed"`
	Elements     int  `json:"elements"`
	Staffed      int  `json:"staffed"`
}

// GET /api/v1/team-plays/{id}/staffing
func HandleStaffing(w http.ResponseWriter, r *http.Request) {
	tpa, err := svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	play, err := playbSvc.GetPlay(r.Context(), tpa.PlayID)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}
	positions, err := svc.Positions(r.Context(), tpa.ID)
	if err != nil {
		api.RespondError(w, r, err)
		return
	}

	staffed := 0
	for _, pa := range positions {
		if pa.Primary != nil {
			staffed++
		}
	}
	api.RespondJSON(w, http.StatusOK, staffingResponse{
		FullyStaffed: assignments.FullyStaffed(play.Elements, positions),
		Elements:     len(play.Elements),
		Staffed:      staffed,
	})
}
