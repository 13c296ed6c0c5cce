// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Dtheapp/lockerroomlink/internal/api"
	"github.com/Dtheapp/lockerroomlink/internal/api/formations"
	"github.com/Dtheapp/lockerroomlink/internal/api/plays"
	"github.com/Dtheapp/lockerroomlink/internal/api/teamplays"
	"github.com/Dtheapp/lockerroomlink/internal/api/watch"
	"github.com/Dtheapp/lockerroomlink/internal/assignments"
	"github.com/Dtheapp/lockerroomlink/internal/config"
	"github.com/Dtheapp/lockerroomlink/internal/playbook"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

func newServer(cfg *config.Config, st *store.Store) *http.Server {
	playbookSvc := playbook.NewService(st)
	assignSvc := assignments.NewService(st)

	formations.InitHandlers(playbookSvc)
	plays.InitHandlers(playbookSvc)
	teamplays.InitHandlers(assignSvc, playbookSvc)
	watch.InitHandlers(st)

	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Formation routes
	mux.HandleFunc("GET /api/v1/formations", formations.HandleList)
	mux.HandleFunc("POST /api/v1/formations", formations.HandleCreate)
	mux.HandleFunc("GET /api/v1/formations/{id}", formations.HandleGet)
	mux.HandleFunc("PUT /api/v1/formations/{id}", formations.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/formations/{id}", formations.HandleDelete)

	// Play routes
	mux.HandleFunc("GET /api/v1/plays", plays.HandleList)
	mux.HandleFunc("POST /api/v1/plays", plays.HandleCreate)
	mux.HandleFunc("GET /api/v1/plays/{id}", plays.HandleGet)
	mux.HandleFunc("PUT /api/v1/plays/{id}", plays.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/plays/{id}", plays.HandleDelete)
	mux.HandleFunc("POST /api/v1/plays/{id}/formation", plays.HandleApplyFormation)
	mux.HandleFunc("GET /api/v1/plays/{id}/paths", plays.HandlePaths)

	// Team play assignment routes
	mux.HandleFunc("POST /api/v1/team-plays", teamplays.HandleAssignPlay)
	mux.HandleFunc("GET /api/v1/team-plays", teamplays.HandleList)
	mux.HandleFunc("DELETE /api/v1/team-plays/{id}", teamplays.HandleUnassign)
	mux.HandleFunc("GET /api/v1/team-plays/{id}/positions", teamplays.HandlePositions)
	mux.HandleFunc("PUT /api/v1/team-plays/{id}/positions/{elementId}", teamplays.HandleAssignPosition)
	mux.HandleFunc("GET /api/v1/team-plays/{id}/staffing", teamplays.HandleStaffing)

	// Change feed
	mux.HandleFunc("GET /api/v1/watch", watch.HandleWatch)
}
