// Package watch pushes document change events to viewers over a websocket,
// so an open play view re-renders when the underlying document changes.
package watch

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The diagram UI is served from the same origin; embedded viewers in
	// the native shells send no Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	st       *store.Store
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *store.Store) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		st = s
	})
}

// GET /api/v1/watch?collection=plays&id=...
//
// Streams change events for one collection, optionally narrowed to a single
// document. Events are fire-and-forget: a lagging client drops events and
// re-reads the document on reconnect.
func HandleWatch(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		http.Error(w, "collection is required", http.StatusBadRequest)
		return
	}
	docID := r.URL.Query().Get("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := st.Subscribe(collection)
	defer cancel()

	logger := log.Ctx(r.Context()).With().
		Str("collection", collection).
		Str("doc_id", docID).
		Logger()
	logger.Info().Msg("Watch started")

	// Drain client frames so close/pong frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Info().Msg("Watch client disconnected")
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if docID != "" && ev.ID != docID {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Info().Err(err).Msg("Watch write failed, closing")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
