package engine

import (
	"fmt"

	"marketpulse/internal/domain"
)

const (
	neutralScore = 5.0
	minScore     = 0.0
	maxScore     = 10.0
)

// layerAcc accumulates factor contributions on top of the neutral midpoint.
type layerAcc struct {
	layer   string
	score   float64
	factors []domain.Factor
}

func newLayerAcc(layer string) *layerAcc {
	return &layerAcc{layer: layer, score: neutralScore}
}

func (a *layerAcc) add(name string, delta float64, description string) {
	impact := domain.ImpactNeutral
	if delta > 0 {
		impact = domain.ImpactPositive
	} else if delta < 0 {
		impact = domain.ImpactNegative
	}
	a.score += delta
	a.factors = append(a.factors, domain.Factor{
		Layer:        a.layer,
		Name:         name,
		Impact:       impact,
		Contribution: delta,
		Description:  description,
	})
}

func (a *layerAcc) result() domain.LayerScore {
	return domain.LayerScore{
		Layer:   a.layer,
		Score:   clamp(a.score, minScore, maxScore),
		Factors: a.factors,
	}
}

func neutralLayer(layer string) domain.LayerScore {
	return domain.LayerScore{
		Layer: layer,
		Score: neutralScore,
		Factors: []domain.Factor{{
			Layer:       layer,
			Name:        "insufficient_data",
			Impact:      domain.ImpactNeutral,
			Description: fmt.Sprintf("not enough history to score the %s layer", layer),
		}},
	}
}

// ScoreLayers runs every layer scorer over the same indicator set.
// Order is fixed: trend, momentum, volatility, volume.
func ScoreLayers(ind domain.IndicatorSet, series domain.PriceSeries) []domain.LayerScore {
	price := 0.0
	if last, ok := series.Last(); ok {
		price = last.Price
	}
	return []domain.LayerScore{
		ScoreTrend(ind, price),
		ScoreMomentum(ind),
		ScoreVolatility(ind),
		ScoreVolume(ind, series),
	}
}

// ScoreTrend scores price position relative to the moving averages and their
// slope. 10 = strong uptrend, 0 = strong downtrend.
func ScoreTrend(ind domain.IndicatorSet, price float64) domain.LayerScore {
	if ind.SMA20 == nil || ind.SMA50 == nil || price <= 0 {
		return neutralLayer(domain.LayerTrend)
	}

	acc := newLayerAcc(domain.LayerTrend)

	if price > *ind.SMA20 {
		acc.add("price_vs_sma20", 1.5, fmt.Sprintf("price %.2f above 20-period average %.2f", price, *ind.SMA20))
	} else {
		acc.add("price_vs_sma20", -1.5, fmt.Sprintf("price %.2f below 20-period average %.2f", price, *ind.SMA20))
	}

	if price > *ind.SMA50 {
		acc.add("price_vs_sma50", 1.5, fmt.Sprintf("price %.2f above 50-period average %.2f", price, *ind.SMA50))
	} else {
		acc.add("price_vs_sma50", -1.5, fmt.Sprintf("price %.2f below 50-period average %.2f", price, *ind.SMA50))
	}

	if *ind.SMA20 > *ind.SMA50 {
		acc.add("ma_alignment", 1.0, "short average above long average (bullish alignment)")
	} else {
		acc.add("ma_alignment", -1.0, "short average below long average (bearish alignment)")
	}

	if ind.SMASlope != nil {
		delta := clamp(*ind.SMASlope*200, -1.0, 1.0)
		desc := fmt.Sprintf("20-period average slope %+.2f%%", *ind.SMASlope*100)
		acc.add("ma_slope", delta, desc)
	}

	return acc.result()
}

// ScoreMomentum scores oscillator state. Falls back to neutral when both RSI
// and MACD are unavailable.
func ScoreMomentum(ind domain.IndicatorSet) domain.LayerScore {
	hasMACD := ind.MACDLine != nil && ind.MACDSignal != nil
	if ind.RSI14 == nil && !hasMACD {
		return neutralLayer(domain.LayerMomentum)
	}

	acc := newLayerAcc(domain.LayerMomentum)

	if ind.RSI14 != nil {
		rsi := *ind.RSI14
		delta := clamp((rsi-50)/10, -2.5, 2.5)
		desc := fmt.Sprintf("rsi %.1f", rsi)
		switch {
		case rsi >= 70:
			desc = fmt.Sprintf("rsi %.1f (overbought territory)", rsi)
		case rsi <= 30:
			desc = fmt.Sprintf("rsi %.1f (oversold territory)", rsi)
		}
		acc.add("rsi", delta, desc)
	}

	if hasMACD {
		histogram := *ind.MACDLine - *ind.MACDSignal
		switch {
		case histogram > 0:
			acc.add("macd", 1.5, fmt.Sprintf("macd above signal line (%+.4f)", histogram))
		case histogram < 0:
			acc.add("macd", -1.5, fmt.Sprintf("macd below signal line (%+.4f)", histogram))
		default:
			acc.add("macd", 0, "macd on signal line")
		}
	}

	return acc.result()
}

// ScoreVolatility scores how contained recent volatility and drawdown are.
// 10 = calm tape, 0 = violent tape.
func ScoreVolatility(ind domain.IndicatorSet) domain.LayerScore {
	if ind.ATRPct == nil && ind.MaxDrawdown == nil {
		return neutralLayer(domain.LayerVolatility)
	}

	acc := newLayerAcc(domain.LayerVolatility)

	if ind.ATRPct != nil {
		atr := *ind.ATRPct
		switch {
		case atr < 2:
			acc.add("avg_true_range", 2.0, fmt.Sprintf("average move %.1f%% per period (contained)", atr))
		case atr < 4:
			acc.add("avg_true_range", 0.5, fmt.Sprintf("average move %.1f%% per period (normal)", atr))
		case atr < 7:
			acc.add("avg_true_range", -1.0, fmt.Sprintf("average move %.1f%% per period (elevated)", atr))
		default:
			acc.add("avg_true_range", -2.5, fmt.Sprintf("average move %.1f%% per period (extreme)", atr))
		}
	}

	if ind.MaxDrawdown != nil {
		dd := *ind.MaxDrawdown * 100
		switch {
		case dd < 10:
			acc.add("drawdown", 1.5, fmt.Sprintf("max drawdown %.1f%% (shallow)", dd))
		case dd < 25:
			acc.add("drawdown", -0.5, fmt.Sprintf("max drawdown %.1f%%", dd))
		default:
			acc.add("drawdown", -2.0, fmt.Sprintf("max drawdown %.1f%% (deep)", dd))
		}
	}

	return acc.result()
}

// ScoreVolume scores participation: a volume surge confirming the latest move
// is bullish, a surge against it is bearish.
func ScoreVolume(ind domain.IndicatorSet, series domain.PriceSeries) domain.LayerScore {
	if ind.VolumeZScore == nil || len(series) < 2 {
		return neutralLayer(domain.LayerVolume)
	}

	z := *ind.VolumeZScore
	rising := series[len(series)-1].Price > series[len(series)-2].Price

	acc := newLayerAcc(domain.LayerVolume)
	switch {
	case z >= 2 && rising:
		acc.add("volume_surge", 2.5, fmt.Sprintf("volume z-score %.1f on an up move", z))
	case z >= 2:
		acc.add("volume_surge", -2.5, fmt.Sprintf("volume z-score %.1f on a down move", z))
	case z >= 1 && rising:
		acc.add("volume_surge", 1.5, fmt.Sprintf("volume z-score %.1f on an up move", z))
	case z >= 1:
		acc.add("volume_surge", -1.5, fmt.Sprintf("volume z-score %.1f on a down move", z))
	case z <= -1:
		acc.add("volume_dryup", -1.0, fmt.Sprintf("volume z-score %.1f, participation drying up", z))
	default:
		acc.add("volume_normal", 0, fmt.Sprintf("volume z-score %.1f, in line with average", z))
	}

	return acc.result()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
