package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"coinsage/internal/config"
	"coinsage/internal/domain"
	"coinsage/internal/job"
	"coinsage/internal/llm"
	"coinsage/internal/service"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewProvider := newNewsProviderFunc
	origNewLLM := newLLMClientFunc
	origStartWatcher := startWatcherFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			Port:     "8080",
			RedisURL: "localhost:6379",
			DataDir:  "data",
		}
	}
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newNewsProviderFunc = func(trace.Tracer, *config.Config) service.NewsFetcher { return stubNewsProvider{} }
	newLLMClientFunc = func(*config.Config) llm.Client { return nil }
	startWatcherFunc = func(*job.SnapshotWatcher, context.Context) {}
	startTelegramBotFunc = func(string, *service.ChatService, *service.PredictService) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newNewsProviderFunc = origNewProvider
		newLLMClientFunc = origNewLLM
		startWatcherFunc = origStartWatcher
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubNewsProvider struct{}

func (stubNewsProvider) FetchNews(ctx context.Context, topic, kind string, limit int) ([]domain.NewsItem, error) {
	return []domain.NewsItem{{Title: "t", Source: "s", URL: "u"}}, nil
}
