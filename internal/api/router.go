package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/finleymurray/scarepark-queue-sub000/config"
	"github.com/finleymurray/scarepark-queue-sub000/internal/board"
	"github.com/finleymurray/scarepark-queue-sub000/internal/live"
	"github.com/finleymurray/scarepark-queue-sub000/internal/mw"
	"github.com/finleymurray/scarepark-queue-sub000/internal/notification"
	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, b *board.Service, hub *live.Hub, pool *notification.WorkerPool, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, b, hub, pool, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Display sockets stay open for hours; they must not consume rate-limit
	// budget or pass through the response cache.
	if hub != nil {
		r.GET("/ws", gin.WrapF(hub.ServeWS))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/attractions", caching, handler.GetAttractions)
		api.POST("/attractions/:attraction_id/status", handler.RecordStatus)
		api.POST("/attractions/:attraction_id/throughput", handler.UpsertThroughput)

		api.GET("/throughput", handler.GetThroughput)
		api.GET("/analytics/board", handler.GetBoardSnapshot)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
