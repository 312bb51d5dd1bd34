package tui

import (
	"strings"
	"testing"

	"marketpulse/internal/domain"
)

func TestFormatPrice(t *testing.T) {
	line := FormatPrice(&domain.PriceSnapshot{Ticker: "BTC", PriceUSD: 98000, Change24hPct: 2.3, Volume24h: 28e9})
	for _, want := range []string{"BTC", "$98,000", "+2.3%", "$28.0B"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line missing %q: %s", want, line)
		}
	}
}

func TestFormatAnalysisRow(t *testing.T) {
	line := FormatAnalysisRow(*testResult())
	for _, want := range []string{"#1", "BTC", "STRONG_BUY", "buy 8.1", "risk"} {
		if !strings.Contains(line, want) {
			t.Fatalf("row missing %q: %s", want, line)
		}
	}
}

func TestRenderScoreBarClamps(t *testing.T) {
	bar := RenderScoreBar("Buy", 15, 10, 10, false)
	if !strings.Contains(bar, "15.0/10") {
		t.Fatalf("expected raw value in label: %s", bar)
	}
	if strings.Count(bar, "█") != 10 {
		t.Fatalf("expected full bar, got %s", bar)
	}

	bar = RenderScoreBar("Risk", -5, 100, 10, true)
	if strings.Count(bar, "█") != 0 {
		t.Fatalf("expected empty bar, got %s", bar)
	}
}

func TestRenderHeatMapEmpty(t *testing.T) {
	out := RenderHeatMap(nil, 30)
	if !strings.Contains(out, "No price data") {
		t.Fatalf("unexpected heat map output: %s", out)
	}
}

func TestFormatVolume(t *testing.T) {
	cases := map[float64]string{
		2.5e12: "$2.5T",
		3.1e9:  "$3.1B",
		4.2e6:  "$4.2M",
		5.5e3:  "$5.5K",
		900:    "$900",
	}
	for in, want := range cases {
		if got := formatVolume(in); got != want {
			t.Fatalf("formatVolume(%v) = %s, want %s", in, got, want)
		}
	}
}
