package engine

import "marketpulse/internal/domain"

// ClassifyRegime labels the market from moving-average position and slope.
// Mixed signals resolve to range, the conservative default.
func ClassifyRegime(ind domain.IndicatorSet, price float64) domain.MarketRegime {
	if ind.SMA20 == nil || ind.SMA50 == nil || ind.SMASlope == nil || price <= 0 {
		return domain.RegimeRange
	}

	aboveBoth := price > *ind.SMA20 && price > *ind.SMA50
	belowBoth := price < *ind.SMA20 && price < *ind.SMA50

	switch {
	case aboveBoth && *ind.SMASlope > 0:
		return domain.RegimeBull
	case belowBoth && *ind.SMASlope < 0:
		return domain.RegimeBear
	default:
		return domain.RegimeRange
	}
}
