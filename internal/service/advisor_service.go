package service

import (
	"context"
	"fmt"
	"strings"

	"marketpulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"
)

const advisorSystemPrompt = "You are a market analysis assistant. Rewrite the " +
	"provided scoring breakdown as two or three plain sentences for a retail " +
	"investor. Do not invent numbers, do not give financial advice, and keep " +
	"the stated tier and action unchanged."

// AdvisorService turns an analysis result into a short natural-language
// narrative. Without an API key it degrades to the engine's own explanation.
type AdvisorService struct {
	tracer   trace.Tracer
	model    openai.ChatModel
	complete func(ctx context.Context, system, user string) (string, error)
}

func NewAdvisorService(tracer trace.Tracer, apiKey string) *AdvisorService {
	s := &AdvisorService{
		tracer: tracer,
		model:  openai.ChatModelGPT4oMini,
	}
	if apiKey == "" {
		return s
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	s.complete = func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: s.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty completion response")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return s
}

func (s *AdvisorService) Enabled() bool {
	return s != nil && s.complete != nil
}

func (s *AdvisorService) Narrate(ctx context.Context, result *domain.AnalysisResult) (string, error) {
	_, span := s.tracer.Start(ctx, "advisor-service.narrate")
	defer span.End()

	if result == nil {
		return "", fmt.Errorf("nil analysis result")
	}
	if !s.Enabled() {
		return result.Explanation, nil
	}

	narrative, err := s.complete(ctx, advisorSystemPrompt, buildAdvisorPrompt(result))
	if err != nil {
		return "", fmt.Errorf("advisor completion: %w", err)
	}
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return result.Explanation, nil
	}
	return narrative, nil
}

func buildAdvisorPrompt(result *domain.AnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticker: %s\n", result.Ticker)
	fmt.Fprintf(&sb, "Mode: %s\n", result.Mode)
	fmt.Fprintf(&sb, "Regime: %s\n", result.MarketRegime)
	fmt.Fprintf(&sb, "Buy score: %.1f/10, sell score: %.1f/10, risk: %.0f/100\n",
		result.BuyScore, result.SellScore, result.RiskScore)
	fmt.Fprintf(&sb, "Tier: %s, suggested action: %s\n", result.Tier, result.SuggestedAction)
	for _, f := range result.KeyFactors {
		fmt.Fprintf(&sb, "- %s/%s (%s): %s\n", f.Layer, f.Name, f.Impact, f.Description)
	}
	return sb.String()
}
