package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// attractionResponse flattens an attraction with its current state for the
// public board. Status is empty and ObservedAt nil until the attraction has
// been observed at least once; the board must not pretend a never-seen ride
// is open.
type attractionResponse struct {
	model.Attraction
	Status      model.Status `json:"status"`
	IsOpen      bool         `json:"isOpen"`
	WaitMinutes int          `json:"waitMinutes"`
	ObservedAt  *time.Time   `json:"observedAt"`
}

// GetAttractions handles the GET /api/attractions request.
func (h *Handler) GetAttractions(c *gin.Context) {
	var attractions []model.Attraction
	if err := h.store.DB().Order("display_order, id").Find(&attractions).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attractions"})
		return
	}

	states, err := h.store.CurrentStates(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve current states"})
		return
	}

	response := make([]attractionResponse, 0, len(attractions))
	for _, a := range attractions {
		resp := attractionResponse{Attraction: a}
		if state, ok := states[a.ID]; ok {
			observedAt := state.ObservedAt
			resp.Status = state.Status
			resp.IsOpen = state.Status == model.StatusOperating
			resp.WaitMinutes = state.WaitMinutes
			resp.ObservedAt = &observedAt
		}
		response = append(response, resp)
	}
	c.JSON(http.StatusOK, response)
}
