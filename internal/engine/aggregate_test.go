package engine

import (
	"math"
	"testing"

	"marketpulse/internal/domain"
)

func layersWith(trend, momentum, volatility, volume float64) []domain.LayerScore {
	return []domain.LayerScore{
		{Layer: domain.LayerTrend, Score: trend},
		{Layer: domain.LayerMomentum, Score: momentum},
		{Layer: domain.LayerVolatility, Score: volatility},
		{Layer: domain.LayerVolume, Score: volume},
	}
}

func TestValidateWeights(t *testing.T) {
	if err := ValidateWeights(); err != nil {
		t.Fatalf("expected registered weight vectors to validate: %v", err)
	}
}

func TestWeightsForUnknownMode(t *testing.T) {
	if _, err := WeightsFor(domain.AnalysisMode("scalp")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	for _, mode := range domain.SupportedModes {
		w, err := WeightsFor(mode)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", mode, err)
		}
		if math.Abs(w.sum()-1.0) > 1e-9 {
			t.Fatalf("weights for %s sum to %f", mode, w.sum())
		}
	}
}

func TestAggregateScoresRanges(t *testing.T) {
	w, _ := WeightsFor(domain.ModeSwing)
	extremes := [][4]float64{
		{0, 0, 0, 0},
		{10, 10, 10, 10},
		{10, 0, 10, 0},
		{3.3, 7.7, 5, 9.1},
	}
	for _, e := range extremes {
		for _, regime := range []domain.MarketRegime{domain.RegimeBull, domain.RegimeBear, domain.RegimeRange} {
			got := AggregateScores(layersWith(e[0], e[1], e[2], e[3]), regime, w, domain.IndicatorSet{})
			if got.BuyScore < 0 || got.BuyScore > 10 {
				t.Fatalf("buy score %f out of range", got.BuyScore)
			}
			if got.SellScore < 0 || got.SellScore > 10 {
				t.Fatalf("sell score %f out of range", got.SellScore)
			}
			if got.RiskScore < 0 || got.RiskScore > 100 {
				t.Fatalf("risk score %f out of range", got.RiskScore)
			}
		}
	}
}

func TestAggregateScoresBullishLayersInvertSell(t *testing.T) {
	w, _ := WeightsFor(domain.ModeSwing)
	got := AggregateScores(layersWith(9, 8, 8, 7), domain.RegimeBull, w, domain.IndicatorSet{MaxDrawdown: fptr(0.04)})

	if got.BuyScore <= 7 {
		t.Fatalf("expected high buy score, got %f", got.BuyScore)
	}
	if got.SellScore >= 3 {
		t.Fatalf("expected low sell score, got %f", got.SellScore)
	}
	// buy and sell are independent; with full-weight coverage they mirror here
	if math.Abs((got.BuyScore+got.SellScore)-10) > 1e-9 {
		t.Fatalf("expected mirrored scores for full weight coverage, got buy=%f sell=%f", got.BuyScore, got.SellScore)
	}
}

func TestAggregateScoresRiskComposition(t *testing.T) {
	w, _ := WeightsFor(domain.ModeSwing)

	calm := AggregateScores(layersWith(5, 5, 9, 5), domain.RegimeBull, w, domain.IndicatorSet{MaxDrawdown: fptr(0.02)})
	if calm.RiskScore >= 30 {
		t.Fatalf("expected low risk for calm bull tape, got %f", calm.RiskScore)
	}

	stressed := AggregateScores(layersWith(5, 5, 0, 5), domain.RegimeBear, w, domain.IndicatorSet{MaxDrawdown: fptr(0.6)})
	if stressed.RiskScore != 100 {
		t.Fatalf("expected risk capped at 100 for stressed bear tape, got %f", stressed.RiskScore)
	}

	// bear regime must push risk above the identical range-regime case
	bear := AggregateScores(layersWith(5, 5, 4, 5), domain.RegimeBear, w, domain.IndicatorSet{MaxDrawdown: fptr(0.1)})
	rng := AggregateScores(layersWith(5, 5, 4, 5), domain.RegimeRange, w, domain.IndicatorSet{MaxDrawdown: fptr(0.1)})
	if bear.RiskScore <= rng.RiskScore {
		t.Fatalf("expected bear risk %f above range risk %f", bear.RiskScore, rng.RiskScore)
	}
}

func TestAggregateScoresUnknownDrawdownAddsRisk(t *testing.T) {
	w, _ := WeightsFor(domain.ModeSwing)
	unknown := AggregateScores(layersWith(5, 5, 5, 5), domain.RegimeBull, w, domain.IndicatorSet{})
	known := AggregateScores(layersWith(5, 5, 5, 5), domain.RegimeBull, w, domain.IndicatorSet{MaxDrawdown: fptr(0)})
	if unknown.RiskScore <= known.RiskScore {
		t.Fatalf("expected unknown drawdown to carry more risk: %f vs %f", unknown.RiskScore, known.RiskScore)
	}
}

func TestAggregateScoresDeterminism(t *testing.T) {
	w, _ := WeightsFor(domain.ModeDayTrade)
	layers := layersWith(7.3, 4.2, 6.6, 5.9)
	ind := domain.IndicatorSet{MaxDrawdown: fptr(0.12)}

	first := AggregateScores(layers, domain.RegimeRange, w, ind)
	for i := 0; i < 10; i++ {
		if got := AggregateScores(layers, domain.RegimeRange, w, ind); got != first {
			t.Fatalf("aggregate not deterministic: %+v vs %+v", got, first)
		}
	}
}
