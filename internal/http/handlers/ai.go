package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/http/response"
)

type StatusChecker interface {
	Status(ctx context.Context, forceRefresh bool) (gateway.Status, error)
}

type AIHandler struct {
	status StatusChecker
}

func NewAIHandler(status StatusChecker) *AIHandler {
	return &AIHandler{status: status}
}

// GET /api/ai/status?refresh=1
func (h *AIHandler) Status(c *gin.Context) {
	force := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	st, err := h.status.Status(c.Request.Context(), force)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available":      st.Available,
		"text_available": st.TextAvailable,
		"can_generate":   st.CanGenerate(),
		"checked_at":     st.CheckedAt,
	})
}
