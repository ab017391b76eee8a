package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/stats"
)

type StatsHandler struct {
	stats *stats.Service
}

func NewStatsHandler(stats *stats.Service) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetStats)
}

// GetStats godoc
// @Summary      Catalog counts
// @Description  Number of books, copies, available copies, authors and genres shown on the home page. May be up to 30 seconds stale.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	counts, err := h.stats.Counts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "STATS", "FETCH")
		return
	}

	c.JSON(http.StatusOK, StatsResponse(counts))
}
