package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPriceHistory godoc
// @Summary      Historical Bitcoin close prices
// @Description  Returns the most recent daily close prices from the rolling dataset
// @Tags         bitcoin
// @Produce      json
// @Param        limit  query  int  false  "Number of rows (default 30, max 365)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/bitcoin/prices [get]
func (h *Handler) GetPriceHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price-history")
	defer span.End()

	limit := 30
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 365 {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	prices, err := h.datasets.RecentPrices(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "price history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices})
}

// GetSentimentHistory godoc
// @Summary      Historical Bitcoin sentiment scores
// @Description  Returns the daily sentiment dataset
// @Tags         bitcoin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/bitcoin/sentiment [get]
func (h *Handler) GetSentimentHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment-history")
	defer span.End()

	points, err := h.datasets.SentimentHistory(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sentiment history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sentiment": points})
}

// GetPredictions godoc
// @Summary      Latest saved prediction run
// @Description  Returns the most recent persisted model run, the same data the prediction fallback uses
// @Tags         bitcoin
// @Produce      json
// @Success      200  {object}  domain.PredictionResult
// @Failure      500  {object}  map[string]string
// @Router       /api/bitcoin/predictions [get]
func (h *Handler) GetPredictions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-predictions")
	defer span.End()

	snap, err := h.snapshots.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no saved prediction run"})
		return
	}
	c.JSON(http.StatusOK, snap.Truncate(len(snap.TestDates)))
}
