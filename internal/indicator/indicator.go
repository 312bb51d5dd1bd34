package indicator

import (
	"math"
	"sort"

	"marketpulse/internal/domain"
)

const (
	rsiPeriod        = 14
	smaShortPeriod   = 20
	smaLongPeriod    = 50
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	atrPeriod        = 14
	volumeWindow     = 20
	slopeWindow      = 5
)

// Compute derives an IndicatorSet from a price series window. Every field is
// nil when the series is too short for that indicator; callers must treat nil
// as insufficient data, never as zero.
func Compute(series domain.PriceSeries) domain.IndicatorSet {
	normalized := Normalize(series)
	prices := normalized.Prices()
	volumes := normalized.Volumes()

	var out domain.IndicatorSet
	out.RSI14 = lastRSI(prices, rsiPeriod)
	out.SMA20 = sma(prices, smaShortPeriod)
	out.SMA50 = sma(prices, smaLongPeriod)
	out.SMASlope = smaSlope(prices, smaShortPeriod, slopeWindow)
	out.MACDLine, out.MACDSignal = lastMACD(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	out.ATRPct = atrPct(prices, atrPeriod)
	out.VolumeZScore = volumeZScore(prices, volumes, volumeWindow)
	out.MaxDrawdown = maxDrawdown(prices)
	return out
}

// Normalize drops zero-price samples, deduplicates timestamps and sorts ascending.
func Normalize(series domain.PriceSeries) domain.PriceSeries {
	out := make(domain.PriceSeries, 0, len(series))
	seen := make(map[int64]struct{}, len(series))
	for _, s := range series {
		if s.Price <= 0 {
			continue
		}
		key := s.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func sma(prices []float64, period int) *float64 {
	if len(prices) < period {
		return nil
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	v := sum / float64(period)
	return &v
}

// smaSlope returns the relative change of the short SMA over the last
// `lookback` samples, as a fraction of the older value.
func smaSlope(prices []float64, period, lookback int) *float64 {
	if len(prices) < period+lookback {
		return nil
	}
	curr := sma(prices, period)
	prev := sma(prices[:len(prices)-lookback], period)
	if curr == nil || prev == nil || *prev == 0 {
		return nil
	}
	v := (*curr - *prev) / *prev
	return &v
}

func lastRSI(prices []float64, period int) *float64 {
	if len(prices) <= period {
		return nil
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	v := rsiFromAvg(avgGain, avgLoss)
	return &v
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func lastMACD(prices []float64, fast, slow, signal int) (*float64, *float64) {
	if len(prices) < slow+signal {
		return nil, nil
	}
	fastEMA := emaSeries(prices, fast)
	slowEMA := emaSeries(prices, slow)
	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signal)

	m := macdLine[len(macdLine)-1]
	s := signalLine[len(signalLine)-1]
	return &m, &s
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// atrPct is a close-to-close true-range proxy: the mean absolute one-step move
// over the last `period` steps, as a percentage of the latest price.
func atrPct(prices []float64, period int) *float64 {
	if len(prices) < period+1 {
		return nil
	}
	last := prices[len(prices)-1]
	if last == 0 {
		return nil
	}
	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		sum += math.Abs(prices[i] - prices[i-1])
	}
	v := (sum / float64(period)) / last * 100
	return &v
}

func volumeZScore(prices, volumes []float64, window int) *float64 {
	if len(volumes) < window+1 || len(prices) != len(volumes) {
		return nil
	}
	sample := volumes[len(volumes)-1-window : len(volumes)-1]
	mean, std := meanStd(sample)
	if std == 0 {
		return nil
	}
	v := (volumes[len(volumes)-1] - mean) / std
	return &v
}

// maxDrawdown is the largest peak-to-trough decline over the window, as a
// fraction in [0,1].
func maxDrawdown(prices []float64) *float64 {
	if len(prices) < 2 {
		return nil
	}
	peak := prices[0]
	var worst float64
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (peak - p) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return &worst
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) == 1 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
