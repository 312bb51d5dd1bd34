package engine

import (
	"fmt"
	"math"

	"marketpulse/internal/domain"
)

// Weights is the per-mode layer weight vector. Each vector must sum to 1.0;
// ValidateWeights enforces that at startup.
type Weights struct {
	Trend      float64
	Momentum   float64
	Volatility float64
	Volume     float64
}

func (w Weights) sum() float64 {
	return w.Trend + w.Momentum + w.Volatility + w.Volume
}

func (w Weights) forLayer(layer string) float64 {
	switch layer {
	case domain.LayerTrend:
		return w.Trend
	case domain.LayerMomentum:
		return w.Momentum
	case domain.LayerVolatility:
		return w.Volatility
	case domain.LayerVolume:
		return w.Volume
	}
	return 0
}

var modeWeights = map[domain.AnalysisMode]Weights{
	domain.ModeLongTerm: {Trend: 0.40, Momentum: 0.20, Volatility: 0.25, Volume: 0.15},
	domain.ModeSwing:    {Trend: 0.30, Momentum: 0.35, Volatility: 0.15, Volume: 0.20},
	domain.ModeDayTrade: {Trend: 0.20, Momentum: 0.40, Volatility: 0.15, Volume: 0.25},
}

// WeightsFor resolves the weight vector for a mode.
func WeightsFor(mode domain.AnalysisMode) (Weights, error) {
	w, ok := modeWeights[mode]
	if !ok {
		return Weights{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	return w, nil
}

// ValidateWeights checks every registered mode vector sums to 1.0.
func ValidateWeights() error {
	for mode, w := range modeWeights {
		if math.Abs(w.sum()-1.0) > 1e-9 {
			return fmt.Errorf("weights for mode %s sum to %f, want 1.0", mode, w.sum())
		}
	}
	return nil
}

const (
	maxRiskScore = 100.0

	// risk composition: volatility contributes up to 60 points,
	// regime up to 20, drawdown up to 20.
	riskPerVolatilityPoint = 6.0
	bearRegimeRisk         = 20.0
	rangeRegimeRisk        = 10.0
	maxDrawdownRisk        = 20.0
	unknownDrawdownRisk    = 10.0
)

// Aggregate is the combined score triple. Buy and sell are independent
// weighted combinations on [0,10]; risk is a separate [0,100] scale.
type Aggregate struct {
	BuyScore  float64
	SellScore float64
	RiskScore float64
}

// AggregateScores blends layer scores with the mode's weight vector.
// Deterministic: identical inputs always produce identical output.
func AggregateScores(layers []domain.LayerScore, regime domain.MarketRegime, w Weights, ind domain.IndicatorSet) Aggregate {
	var buy, sell float64
	volatilityScore := neutralScore
	for _, l := range layers {
		weight := w.forLayer(l.Layer)
		buy += weight * l.Score
		sell += weight * (maxScore - l.Score)
		if l.Layer == domain.LayerVolatility {
			volatilityScore = l.Score
		}
	}

	risk := riskPerVolatilityPoint * (maxScore - volatilityScore)
	switch regime {
	case domain.RegimeBear:
		risk += bearRegimeRisk
	case domain.RegimeRange:
		risk += rangeRegimeRisk
	}
	if ind.MaxDrawdown != nil {
		risk += clamp(*ind.MaxDrawdown*100, 0, maxDrawdownRisk)
	} else {
		risk += unknownDrawdownRisk
	}

	return Aggregate{
		BuyScore:  clamp(buy, minScore, maxScore),
		SellScore: clamp(sell, minScore, maxScore),
		RiskScore: clamp(risk, 0, maxRiskScore),
	}
}
