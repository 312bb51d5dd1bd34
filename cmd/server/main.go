package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"marketpulse/internal/anomaly"
	"marketpulse/internal/bot"
	"marketpulse/internal/cache"
	"marketpulse/internal/config"
	"marketpulse/internal/db"
	"marketpulse/internal/engine"
	"marketpulse/internal/handler"
	"marketpulse/internal/job"
	"marketpulse/internal/provider"
	"marketpulse/internal/repository"
	"marketpulse/internal/service"
	"marketpulse/internal/tui"
	"marketpulse/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "marketpulse/docs"
)

// marketDataProvider is everything the services and the engine need from the
// upstream market data source.
type marketDataProvider interface {
	service.PriceProvider
	engine.DataProvider
}

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initPostgresFunc         = db.InitPostgres
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newPriceRepoFunc         = repository.NewPriceRepository
	newAnalysisRepoFunc      = repository.NewAnalysisRepository
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) marketDataProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newEngineFunc          = engine.NewEngine
	newDetectorFunc        = anomaly.NewDetector
	newPriceServiceFunc    = service.NewPriceService
	newAnalysisServiceFunc = service.NewAnalysisServiceWithAlerts
	newAdvisorServiceFunc  = service.NewAdvisorService
	newPricePollerFunc     = job.NewPricePoller
	newAnalysisPollerFunc  = job.NewAnalysisPoller
	startPricePollerFunc   = func(p *job.PricePoller, ctx context.Context) { go p.Start(ctx) }
	startAnalysisPollerFn  = func(p *job.AnalysisPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	startSSHServerFunc     = func(ctx context.Context, addr string, svc tui.Services) {
		go func() {
			if err := tui.StartSSHServer(ctx, addr, svc); err != nil {
				log.Printf("ssh dashboard failed: %v", err)
			}
		}()
	}
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           MarketPulse API
// @version         1.0
// @description     Rule-based multi-factor market scoring service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations. Without Postgres the services
	// run storage-free, so the stores stay nil.
	var (
		priceStore    service.PriceStore
		analysisStore service.AnalysisStore
	)
	if db.Pool != nil {
		priceRepo := newPriceRepoFunc(db.Pool, tracer)
		analysisRepo := newAnalysisRepoFunc(db.Pool, tracer)
		if err := priceRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run price migrations: %v", err)
		}
		if err := analysisRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run analysis migrations: %v", err)
		}
		priceStore = priceRepo
		analysisStore = analysisRepo
	}

	// Create provider, engine, and services
	cgProvider := newCoinGeckoProviderFunc(tracer)
	priceService := newPriceServiceFunc(tracer, cgProvider, priceStore, cache.Client)

	scoringEngine, err := newEngineFunc(cgProvider, nil)
	if err != nil {
		log.Fatalf("failed to create scoring engine: %v", err)
	}

	analysisService := newAnalysisServiceFunc(
		tracer, scoringEngine, analysisStore, cache.Client,
		cgProvider, newDetectorFunc(), nil,
	)
	advisorService := newAdvisorServiceFunc(tracer, cfg.OpenAIAPIKey)

	// Start background pollers (stopped by ctx cancel)
	pricePoller := newPricePollerFunc(tracer, priceService, cfg.Watchlist, cfg.PriceRefreshSecs)
	startPricePollerFunc(pricePoller, ctx)
	analysisPoller := newAnalysisPollerFunc(tracer, analysisService, cfg.Watchlist)
	startAnalysisPollerFn(analysisPoller, ctx)

	// Start Telegram bot and attach its dispatcher as the alert sink
	if dispatcher := startTelegramBotFunc(priceService, analysisService, advisorService); dispatcher != nil {
		analysisService.SetAlertSink(dispatcher)
	}

	// Start SSH dashboard
	if cfg.SSHEnabled {
		startSSHServerFunc(ctx, tui.SSHAddr(cfg.SSHBind, cfg.SSHPort), tui.Services{
			Prices:    priceService,
			Analyses:  analysisService,
			Watchlist: cfg.Watchlist,
		})
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, priceService, analysisService, advisorService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("marketpulse"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
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
