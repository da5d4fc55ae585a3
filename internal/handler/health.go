package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetFeatures records which optional stages came up at boot. The health
// endpoint exposes them so operators can tell a degraded instance from a
// healthy one without reading logs.
func (h *Handler) SetFeatures(features map[string]bool) {
	h.features = features
}

// Health godoc
// @Summary      Health check
// @Description  Returns service health plus which optional stages (chat model, history, cache) are enabled
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "healthy", "service": "coinsage"}
	if h.features != nil {
		body["features"] = h.features
	}
	c.JSON(http.StatusOK, body)
}
