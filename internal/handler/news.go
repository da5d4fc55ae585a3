package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNews godoc
// @Summary      Latest Bitcoin news
// @Description  Returns the current news batch with an aggregate sentiment reading
// @Tags         news
// @Produce      json
// @Success      200  {object}  service.NewsDigest
// @Failure      502  {object}  map[string]string
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	digest, err := h.newsService.LatestDigest(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "news feed unavailable"})
		return
	}
	c.JSON(http.StatusOK, digest)
}
