package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"marketpulse/internal/config"
	"marketpulse/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type stubProvider struct{}

func (stubProvider) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	return &domain.PriceSnapshot{Ticker: ticker, PriceUSD: 100}, nil
}

func (stubProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	return 100, nil
}

func (stubProvider) GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error) {
	return nil, nil
}

func (stubProvider) GetIndicators(ctx context.Context, ticker string) (domain.IndicatorSet, error) {
	return domain.IndicatorSet{}, nil
}

type mcpCalls struct {
	stdio    bool
	httpAddr string
	shutdown bool
}

func stubMCPDeps(t *testing.T, cfg *config.Config) *mcpCalls {
	t.Helper()

	calls := &mcpCalls{}

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewProvider := newCoinGeckoProviderFunc
	origRunStdio := runStdioFunc
	origNotify := setupSignalNotify
	origStartHTTP := startHTTPServerFunc
	origShutdown := shutdownHTTPServerFunc
	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newCoinGeckoProviderFunc = origNewProvider
		runStdioFunc = origRunStdio
		setupSignalNotify = origNotify
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdown
	})

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return cfg }
	initPostgresFunc = func(ctx context.Context) {}
	initRedisFunc = func(ctx context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		return sdktrace.NewTracerProvider(), noop.NewTracerProvider().Tracer("test"), nil
	}
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) marketDataProvider {
		return stubProvider{}
	}
	runStdioFunc = func(ctx context.Context, srv *sdkmcp.Server) error {
		calls.stdio = true
		return nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	startHTTPServerFunc = func(srv *http.Server) error {
		calls.httpAddr = srv.Addr
		return http.ErrServerClosed
	}
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error {
		calls.shutdown = true
		return nil
	}

	return calls
}

func TestMainStdioTransport(t *testing.T) {
	calls := stubMCPDeps(t, &config.Config{
		MCPTransport:          "stdio",
		MCPRequestTimeoutSecs: 5,
	})

	main()

	if !calls.stdio {
		t.Fatal("expected stdio transport to run")
	}
	if calls.httpAddr != "" {
		t.Fatalf("HTTP server should not start in stdio mode, got %q", calls.httpAddr)
	}
}

func TestMainHTTPTransport(t *testing.T) {
	calls := stubMCPDeps(t, &config.Config{
		MCPTransport:          "http",
		MCPHTTPEnabled:        true,
		MCPHTTPBind:           "127.0.0.1",
		MCPHTTPPort:           8090,
		MCPAuthToken:          "secret",
		MCPRequestTimeoutSecs: 5,
		MCPRateLimitPerMin:    60,
	})

	main()

	if calls.httpAddr != "127.0.0.1:8090" {
		t.Fatalf("unexpected HTTP addr: %q", calls.httpAddr)
	}
	if calls.stdio {
		t.Fatal("stdio transport should not run in http mode")
	}
}

func TestRunHTTPModeGuards(t *testing.T) {
	stubMCPDeps(t, nil)

	err := runHTTPMode(context.Background(), &config.Config{MCPTransport: "http"}, nil)
	if err == nil || !strings.Contains(err.Error(), "MCP_HTTP_ENABLED") {
		t.Fatalf("expected enable guard, got %v", err)
	}

	err = runHTTPMode(context.Background(), &config.Config{MCPTransport: "http", MCPHTTPEnabled: true}, nil)
	if err == nil || !strings.Contains(err.Error(), "MCP_AUTH_TOKEN") {
		t.Fatalf("expected token guard, got %v", err)
	}
}

func TestBuildServer(t *testing.T) {
	stubMCPDeps(t, nil)

	srv, err := buildServer(context.Background(), &config.Config{MCPRequestTimeoutSecs: 5}, noop.NewTracerProvider().Tracer("test"))
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	if srv == nil {
		t.Fatal("expected server")
	}
}
