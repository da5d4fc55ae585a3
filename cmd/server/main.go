package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinsage/internal/bot"
	"coinsage/internal/cache"
	"coinsage/internal/config"
	"coinsage/internal/dataset"
	"coinsage/internal/db"
	"coinsage/internal/handler"
	"coinsage/internal/job"
	"coinsage/internal/llm"
	"coinsage/internal/predictor"
	"coinsage/internal/provider"
	"coinsage/internal/repository"
	"coinsage/internal/retry"
	"coinsage/internal/sentiment"
	"coinsage/internal/service"
	"coinsage/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "coinsage/docs"
)

// The watcher is wired with the concrete snapshot store below; keep the two
// in lockstep.
var _ job.SnapshotReloader = (*predictor.SnapshotStore)(nil)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newNewsProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.NewsFetcher {
		return provider.NewCryptoPanicProvider(tracer, cfg.CryptoPanicToken, cfg.CryptoPanicBaseURL)
	}
	newLLMClientFunc = func(cfg *config.Config) llm.Client {
		if c := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel); c != nil {
			return c
		}
		return nil
	}
	startWatcherFunc       = func(w *job.SnapshotWatcher, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Coinsage API
// @version         1.0
// @description     Bitcoin news, sentiment and price prediction chat service.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	gateway := retry.NewGateway(tracer)

	// Conversation history is optional: without Postgres, chat runs stateless.
	var history service.ConversationStore
	if db.Pool != nil {
		convRepo := repository.NewConversationRepository(db.Pool, tracer)
		if err := convRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		history = convRepo
	}

	llmClient := newLLMClientFunc(cfg)
	var scorer service.SentimentScorer
	if llmClient != nil {
		scorer = sentiment.NewScorer(tracer, llmClient, gateway)
	}

	newsProvider := newNewsProviderFunc(tracer, cfg)
	newsCache := cache.NewNewsCache(tracer, kvClient(), time.Duration(cfg.NewsCacheTTLSecs)*time.Second)
	newsService := service.NewNewsService(tracer, newsProvider, newsCache, scorer, gateway, cfg.NewsFetchLimit)

	snapshots := predictor.NewSnapshotStore(tracer, cfg.SnapshotPath)
	runner := predictor.NewCommandRunner(tracer, cfg.PredictCommand, time.Duration(cfg.PredictTimeoutSecs)*time.Second)
	invoker := predictor.NewInvoker(tracer, runner, snapshots, gateway)

	datasets := dataset.NewStore(tracer, cfg.PriceDatasetPath, cfg.SentimentDataPath)
	synth := service.NewSynthesizer()

	chatService := service.NewChatService(tracer, newsService, scorer, llmClient, history, cfg.ChatMaxHistory, synth, gateway)
	predictService := service.NewPredictService(tracer, newsService, scorer, invoker, datasets, synth)

	watcher := job.NewSnapshotWatcher(tracer, snapshots, cfg.SnapshotRefreshSecs)
	startWatcherFunc(watcher, ctx)

	startTelegramBotFunc(cfg.TelegramBotToken, chatService, predictService)

	h := newHandlerFunc(tracer, chatService, predictService, newsService, datasets, snapshots)
	h.SetFeatures(map[string]bool{
		"chat":       llmClient != nil,
		"sentiment":  scorer != nil,
		"history":    history != nil,
		"news_cache": cache.Client != nil,
		"model":      len(cfg.PredictCommand) > 0,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware("coinsage"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// kvClient adapts the optional Redis global to the cache's interface without
// smuggling a typed nil past the kv == nil checks.
func kvClient() cache.KV {
	if cache.Client == nil {
		return nil
	}
	return cache.Client
}
