package config

import (
	"reflect"
	"testing"

	"marketpulse/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("WATCHLIST", "")
	t.Setenv("PRICE_REFRESH_SECS", "")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("MCP_HTTP_ENABLED", "")
	t.Setenv("MCP_HTTP_BIND", "")
	t.Setenv("MCP_HTTP_PORT", "")
	t.Setenv("MCP_AUTH_TOKEN", "")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("SSH_TUI_ENABLED", "")
	t.Setenv("SSH_TUI_BIND", "")
	t.Setenv("SSH_TUI_PORT", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default http port 8080, got %d", cfg.HTTPPort)
	}
	if !reflect.DeepEqual(cfg.Watchlist, domain.SupportedTickers) {
		t.Fatalf("expected full watchlist default, got %+v", cfg.Watchlist)
	}
	if cfg.PriceRefreshSecs != 300 {
		t.Fatalf("expected default refresh secs 300, got %d", cfg.PriceRefreshSecs)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected default MCP transport stdio, got %s", cfg.MCPTransport)
	}
	if cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected MCP http defaults: %s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort)
	}
	if cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("unexpected MCP defaults: timeout=%d rate=%d", cfg.MCPRequestTimeoutSecs, cfg.MCPRateLimitPerMin)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default openai model, got %s", cfg.OpenAIModel)
	}
	if cfg.SSHEnabled || cfg.SSHBind != "127.0.0.1" || cfg.SSHPort != 2222 {
		t.Fatalf("unexpected SSH defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("WATCHLIST", "btc, eth,fake,btc")
	t.Setenv("PRICE_REFRESH_SECS", "120")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("MCP_HTTP_ENABLED", "true")
	t.Setenv("MCP_HTTP_BIND", "0.0.0.0")
	t.Setenv("MCP_HTTP_PORT", "9191")
	t.Setenv("MCP_AUTH_TOKEN", "secret")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "9")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "75")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("SSH_TUI_ENABLED", "true")
	t.Setenv("SSH_TUI_BIND", "0.0.0.0")
	t.Setenv("SSH_TUI_PORT", "2323")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPPort != 8181 {
		t.Fatalf("expected http port 8181, got %d", cfg.HTTPPort)
	}
	if !reflect.DeepEqual(cfg.Watchlist, []string{"BTC", "ETH"}) {
		t.Fatalf("unexpected watchlist: %+v", cfg.Watchlist)
	}
	if cfg.PriceRefreshSecs != 120 {
		t.Fatalf("expected refresh secs 120, got %d", cfg.PriceRefreshSecs)
	}
	if cfg.MCPTransport != "http" || !cfg.MCPHTTPEnabled || cfg.MCPHTTPBind != "0.0.0.0" || cfg.MCPHTTPPort != 9191 || cfg.MCPAuthToken != "secret" {
		t.Fatalf("unexpected MCP config: %+v", cfg)
	}
	if cfg.MCPRequestTimeoutSecs != 9 || cfg.MCPRateLimitPerMin != 75 {
		t.Fatalf("unexpected MCP timeout/rate: %+v", cfg)
	}
	if cfg.OpenAIAPIKey != "sk-test" || cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("unexpected openai config: %+v", cfg)
	}
	if !cfg.SSHEnabled || cfg.SSHBind != "0.0.0.0" || cfg.SSHPort != 2323 {
		t.Fatalf("unexpected SSH config: %+v", cfg)
	}

	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("PRICE_REFRESH_SECS", "bad")
	t.Setenv("MCP_HTTP_PORT", "bad")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "bad")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "bad")
	t.Setenv("WATCHLIST", "fake,")
	t.Setenv("SSH_TUI_PORT", "bad")
	cfg = Load()
	if cfg.HTTPPort != 8080 || cfg.PriceRefreshSecs != 300 {
		t.Fatalf("invalid numeric values should fall back to defaults: %+v", cfg)
	}
	if cfg.MCPHTTPPort != 8090 || cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("invalid MCP numeric values should fall back to defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Watchlist, domain.SupportedTickers) {
		t.Fatalf("invalid watchlist should fall back to full list: %+v", cfg.Watchlist)
	}
	if cfg.SSHPort != 2222 {
		t.Fatalf("invalid SSH port should fall back to default, got %d", cfg.SSHPort)
	}
}
