package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"marketpulse/internal/domain"
)

func TestAdvisorDisabledFallsBackToExplanation(t *testing.T) {
	svc := NewAdvisorService(testTracer(), "")
	if svc.Enabled() {
		t.Fatal("advisor without key must be disabled")
	}

	result := swingResult(domain.TierStrongBuy)
	result.Explanation = "bull market; strong buy signal"

	got, err := svc.Narrate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != result.Explanation {
		t.Fatalf("expected explanation fallback, got %q", got)
	}
}

func TestAdvisorUsesCompletion(t *testing.T) {
	svc := NewAdvisorService(testTracer(), "")
	svc.complete = func(ctx context.Context, system, user string) (string, error) {
		if !strings.Contains(user, "Ticker: BTC") {
			t.Fatalf("prompt missing ticker: %s", user)
		}
		return "  BTC looks strong right now.  ", nil
	}

	got, err := svc.Narrate(context.Background(), swingResult(domain.TierStrongBuy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "BTC looks strong right now." {
		t.Fatalf("expected trimmed narrative, got %q", got)
	}
}

func TestAdvisorCompletionErrorIsWrapped(t *testing.T) {
	svc := NewAdvisorService(testTracer(), "")
	svc.complete = func(ctx context.Context, system, user string) (string, error) {
		return "", fmt.Errorf("rate limited")
	}

	if _, err := svc.Narrate(context.Background(), swingResult(domain.TierBuy)); err == nil {
		t.Fatal("expected completion error")
	}
}

func TestAdvisorPromptIncludesKeyFactors(t *testing.T) {
	result := swingResult(domain.TierStrongBuy)
	result.KeyFactors = []domain.Factor{{
		Layer:        domain.LayerTrend,
		Name:         "price_above_sma20",
		Impact:       domain.ImpactPositive,
		Contribution: 1.5,
		Description:  "price above 20-sample average",
	}}

	prompt := buildAdvisorPrompt(result)
	for _, want := range []string{"trend/price_above_sma20", "strong_buy", "risk: 23/100"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
