package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
)

type recordStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	WaitMinutes int    `json:"wait_minutes"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
	ChangedBy   string `json:"changed_by" binding:"required"`
}

// RecordStatus handles POST /api/attractions/{attraction_id}/status, the
// staff control for recording a status transition.
func (h *Handler) RecordStatus(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid attraction ID"})
		return
	}

	var req recordStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	status := model.Status(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status value"})
		return
	}
	if req.WaitMinutes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wait_minutes must not be negative"})
		return
	}

	event, err := h.store.RecordStatusChange(c.Request.Context(), store.StatusChange{
		AttractionID: attractionID,
		Status:       status,
		WaitMinutes:  req.WaitMinutes,
		Reason:       req.Reason,
		Notes:        req.Notes,
		ChangedBy:    req.ChangedBy,
	})
	if err != nil {
		if errors.Is(err, store.ErrUnknownAttraction) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attraction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.boardChanged(event.ChangedAt.UTC().Format("2006-01-02"))
	if status == model.StatusOperating && h.pool != nil {
		h.pool.Dispatch(attractionID)
	}

	c.JSON(http.StatusCreated, event)
}
