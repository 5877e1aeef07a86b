package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/finleymurray/scarepark-queue-sub000/internal/board"
	"github.com/finleymurray/scarepark-queue-sub000/internal/live"
	"github.com/finleymurray/scarepark-queue-sub000/internal/notification"
	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	board   *board.Service
	hub     *live.Hub
	pool    *notification.WorkerPool
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, b *board.Service, hub *live.Hub, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		board:   b,
		hub:     hub,
		pool:    pool,
		webpush: webpushOptions,
	}
}

// boardChanged invalidates memoized snapshots for the given date and nudges
// connected displays. Every write path funnels through here.
func (h *Handler) boardChanged(date string) {
	if h.board != nil {
		h.board.Invalidate(date)
	}
	if h.hub != nil {
		h.hub.Broadcast(date)
	}
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
