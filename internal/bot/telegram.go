package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"marketpulse/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type PriceQuerier interface {
	GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error)
}

type AnalysisQuerier interface {
	Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error)
}

type Narrator interface {
	Enabled() bool
	Narrate(ctx context.Context, result *domain.AnalysisResult) (string, error)
}

func StartTelegramBot(priceService PriceQuerier, analysisService AnalysisQuerier, advisorService Narrator) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /price BTC\nSupported: %s", strings.Join(domain.SupportedTickers, ", ")))
		}
		ticker := strings.ToUpper(args[0])
		if !domain.IsSupportedTicker(ticker) {
			return c.Send(fmt.Sprintf("Unknown ticker: %s\nSupported: %s", ticker, strings.Join(domain.SupportedTickers, ", ")))
		}
		snapshot, err := priceService.GetSnapshot(context.Background(), ticker)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", ticker, err))
		}
		msg := fmt.Sprintf(
			"%s\nPrice: $%.2f\n24h Change: %.2f%%\n24h Volume: $%.0f",
			ticker, snapshot.PriceUSD, snapshot.Change24hPct, snapshot.Volume24h,
		)
		return c.Send(msg)
	})

	b.Handle("/analyze", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}

		ticker, mode, err := parseAnalyzeArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /analyze BTC | /analyze BTC swing | /analyze BTC long_term")
		}

		result, err := analysisService.Analyze(context.Background(), ticker, mode, nil)
		if err != nil {
			return c.Send(fmt.Sprintf("Error analyzing %s: %v", ticker, err))
		}

		msg := formatAnalysis(result)
		if advisorService != nil && advisorService.Enabled() {
			if narrative, err := advisorService.Narrate(context.Background(), result); err == nil && narrative != "" {
				msg += "\n\n" + narrative
			}
		}
		return c.Send(msg)
	})

	b.Handle("/analyses", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}

		filter := domain.AnalysisFilter{Limit: 5}
		if args := c.Args(); len(args) > 0 {
			ticker := strings.ToUpper(args[0])
			if !domain.IsSupportedTicker(ticker) {
				return c.Send("Usage: /analyses | /analyses BTC")
			}
			filter.Ticker = ticker
		}

		analyses, err := analysisService.ListAnalyses(context.Background(), filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching analyses: %v", err))
		}
		if len(analyses) == 0 {
			return c.Send("No stored analyses yet.")
		}

		lines := make([]string, 0, len(analyses)+1)
		lines = append(lines, "Recent analyses:")
		for _, a := range analyses {
			lines = append(lines, formatAnalysisLine(&a))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Proactive alerts enabled for this chat.")
			}
			return c.Send("Proactive alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Proactive alerts disabled for this chat.")
			}
			return c.Send("Proactive alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseAnalyzeArgs(args []string) (string, domain.AnalysisMode, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", "", errors.New("expected ticker and optional mode")
	}

	ticker := strings.ToUpper(strings.TrimSpace(args[0]))
	if !domain.IsSupportedTicker(ticker) {
		return "", "", errors.New("unsupported ticker")
	}

	mode := domain.ModeSwing
	if len(args) == 2 {
		mode = domain.AnalysisMode(strings.ToLower(strings.TrimSpace(args[1])))
		if !mode.IsValid() {
			return "", "", errors.New("invalid mode")
		}
	}
	return ticker, mode, nil
}

func formatAnalysis(result *domain.AnalysisResult) string {
	lines := []string{
		fmt.Sprintf("%s (%s, %s market)", result.Ticker, result.Mode, result.MarketRegime),
		fmt.Sprintf("Verdict: %s, action: %s", strings.ToUpper(string(result.Tier)), result.SuggestedAction),
		fmt.Sprintf("Buy %.1f/10, Sell %.1f/10, Risk %.0f/100", result.BuyScore, result.SellScore, result.RiskScore),
	}
	for _, f := range result.KeyFactors {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Layer, f.Description))
	}
	return strings.Join(lines, "\n")
}

func formatAnalysisLine(result *domain.AnalysisResult) string {
	return fmt.Sprintf(
		"#%d %s %s %s buy %.1f sell %.1f risk %.0f at %s",
		result.ID,
		result.Ticker,
		result.Mode,
		result.Tier,
		result.BuyScore,
		result.SellScore,
		result.RiskScore,
		result.GeneratedAt.UTC().Format(time.RFC822),
	)
}
