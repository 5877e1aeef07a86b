package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finleymurray/scarepark-queue-sub000/internal/board"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
	"github.com/finleymurray/scarepark-queue-sub000/internal/timeline"
)

// GetBoardSnapshot handles GET /api/analytics/board?date&from&to. The window
// bounds are minutes since midnight; both default to the whole day.
func (h *Handler) GetBoardSnapshot(c *gin.Context) {
	date := c.DefaultQuery("date", today())

	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a minute of day"})
		return
	}
	to, err := strconv.Atoi(c.DefaultQuery("to", "1439"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a minute of day"})
		return
	}

	window, err := timeline.NewWindow(from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.board.Snapshot(c.Request.Context(), date, window)
	if err != nil {
		var parseErr *parse.ParseError
		switch {
		case errors.Is(err, board.ErrInvalidDate), errors.As(err, &parseErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
