package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"marketpulse/internal/anomaly"
	"marketpulse/internal/cache"
	"marketpulse/internal/config"
	"marketpulse/internal/db"
	"marketpulse/internal/engine"
	"marketpulse/internal/mcp"
	"marketpulse/internal/provider"
	"marketpulse/internal/repository"
	"marketpulse/internal/service"
	"marketpulse/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
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
	runStdioFunc           = func(ctx context.Context, srv *sdkmcp.Server) error {
		return srv.Run(ctx, &sdkmcp.StdioTransport{})
	}
	setupSignalNotify      = ossignal.Notify
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	srv, err := buildServer(ctx, cfg, tracer)
	if err != nil {
		log.Fatalf("failed to build MCP server: %v", err)
	}

	switch cfg.MCPTransport {
	case "stdio":
		if err := runStdioFunc(ctx, srv); err != nil {
			log.Fatalf("stdio transport: %v", err)
		}
	case "http":
		if err := runHTTPMode(ctx, cfg, srv); err != nil {
			log.Fatalf("http transport: %v", err)
		}
	default:
		log.Fatalf("unknown MCP transport %q (want stdio or http)", cfg.MCPTransport)
	}
}

// buildServer wires repositories, market data, and the scoring engine into an
// MCP server. The bot, pollers, and HTTP API are not part of this binary.
func buildServer(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*sdkmcp.Server, error) {
	var (
		priceStore    service.PriceStore
		analysisStore service.AnalysisStore
	)
	if db.Pool != nil {
		priceRepo := newPriceRepoFunc(db.Pool, tracer)
		analysisRepo := newAnalysisRepoFunc(db.Pool, tracer)
		if err := priceRepo.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("price migrations: %w", err)
		}
		if err := analysisRepo.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("analysis migrations: %w", err)
		}
		priceStore = priceRepo
		analysisStore = analysisRepo
	}

	cgProvider := newCoinGeckoProviderFunc(tracer)
	priceService := newPriceServiceFunc(tracer, cgProvider, priceStore, cache.Client)

	scoringEngine, err := newEngineFunc(cgProvider, nil)
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	analysisService := newAnalysisServiceFunc(
		tracer, scoringEngine, analysisStore, cache.Client,
		cgProvider, newDetectorFunc(), nil,
	)

	return mcp.NewServer(tracer, priceService, analysisService, mcp.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	}), nil
}

func runHTTPMode(ctx context.Context, cfg *config.Config, srv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return errors.New("http transport requires MCP_HTTP_ENABLED=true")
	}
	if cfg.MCPAuthToken == "" {
		return errors.New("http transport requires MCP_AUTH_TOKEN")
	}

	handler := mcp.NewHTTPTransportHandler(srv, mcp.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
	})

	httpSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP HTTP transport listening on %s", httpSrv.Addr)
		errCh <- startHTTPServerFunc(httpSrv)
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return shutdownHTTPServerFunc(httpSrv, shutdownCtx)
}
