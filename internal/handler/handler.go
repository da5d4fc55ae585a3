package handler

import (
	"coinsage/internal/dataset"
	"coinsage/internal/predictor"
	"coinsage/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer         trace.Tracer
	chatService    *service.ChatService
	predictService *service.PredictService
	newsService    *service.NewsService
	datasets       *dataset.Store
	snapshots      *predictor.SnapshotStore
	features       map[string]bool
}

func New(tracer trace.Tracer, chat *service.ChatService, predict *service.PredictService, news *service.NewsService, datasets *dataset.Store, snapshots *predictor.SnapshotStore) *Handler {
	return &Handler{
		tracer:         tracer,
		chatService:    chat,
		predictService: predict,
		newsService:    news,
		datasets:       datasets,
		snapshots:      snapshots,
	}
}

// RegisterRoutes mounts the API. apiKey guards /api only; health and swagger
// stay open.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.POST("/chat", h.Chat)
	api.POST("/predict", h.Predict)
	api.GET("/news", h.GetNews)
	api.GET("/bitcoin/prices", h.GetPriceHistory)
	api.GET("/bitcoin/sentiment", h.GetSentimentHistory)
	api.GET("/bitcoin/predictions", h.GetPredictions)
}
