package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
)

type upsertThroughputRequest struct {
	LogDate    string `json:"log_date" binding:"required"`
	SlotStart  string `json:"slot_start" binding:"required"`
	SlotEnd    string `json:"slot_end" binding:"required"`
	GuestCount int    `json:"guest_count"`
}

// UpsertThroughput handles POST /api/attractions/{attraction_id}/throughput.
// Posting the same slot again corrects the count.
func (h *Handler) UpsertThroughput(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid attraction ID"})
		return
	}

	var req upsertThroughputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := time.Parse("2006-01-02", req.LogDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "log_date must be YYYY-MM-DD"})
		return
	}
	startMin, err := parse.Clock(req.SlotStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endMin, err := parse.Clock(req.SlotEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if startMin >= endMin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_start must be before slot_end"})
		return
	}
	if req.GuestCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guest_count must not be negative"})
		return
	}

	rec := model.ThroughputRecord{
		AttractionID: attractionID,
		LogDate:      req.LogDate,
		SlotStart:    req.SlotStart,
		SlotEnd:      req.SlotEnd,
		GuestCount:   req.GuestCount,
	}
	if err := h.store.UpsertThroughput(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.boardChanged(req.LogDate)
	c.JSON(http.StatusCreated, rec)
}

// GetThroughput handles GET /api/throughput?date=YYYY-MM-DD, returning the
// raw slot records for one operating day.
func (h *Handler) GetThroughput(c *gin.Context) {
	date := c.DefaultQuery("date", today())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	recs, err := h.store.ThroughputForDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []model.ThroughputRecord{}
	}
	c.JSON(http.StatusOK, recs)
}
