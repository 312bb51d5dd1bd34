package anomaly

import (
	"math"

	"marketpulse/internal/domain"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
)

const (
	minSamples        = 64
	defaultNumTrees   = 100
	defaultSampleSize = 128
	defaultThreshold  = 0.65
)

// Detector flags price action whose latest sample looks unlike the recent
// history. It fits an isolation forest on the series each call, so results
// stay a pure function of the input and need no stored model.
type Detector struct {
	numTrees   int
	sampleSize int
	threshold  float64
}

func NewDetector() *Detector {
	return &Detector{
		numTrees:   defaultNumTrees,
		sampleSize: defaultSampleSize,
		threshold:  defaultThreshold,
	}
}

// Check scores the newest sample against the rest of the series. It returns
// the anomaly score on [0,1] and whether it crossed the detector threshold.
// Series shorter than the minimum window are never anomalous.
func (d *Detector) Check(series domain.PriceSeries) (float64, bool) {
	vectors := featureVectors(series)
	if len(vectors) < minSamples {
		return 0, false
	}

	history := vectors[:len(vectors)-1]
	latest := vectors[len(vectors)-1]

	means, stds := fitNormalizer(history)
	normalized := make([][]float64, len(history))
	for i := range history {
		normalized[i] = normalize(history[i], means, stds)
	}

	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     d.threshold,
		NumTrees:      d.numTrees,
		SampleSize:    d.sampleSize,
	})
	forest.Fit(normalized)

	scores := forest.Score([][]float64{normalize(latest, means, stds)})
	if len(scores) == 0 {
		return 0, false
	}
	score := scores[0]
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, score >= d.threshold
}

// featureVectors derives one vector per consecutive sample pair: the price
// return, its magnitude, and the volume relative to the series mean.
func featureVectors(series domain.PriceSeries) [][]float64 {
	if len(series) < 2 {
		return nil
	}

	var meanVolume float64
	for _, s := range series {
		meanVolume += s.Volume
	}
	meanVolume /= float64(len(series))
	if meanVolume == 0 {
		meanVolume = 1
	}

	out := make([][]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		if prev == 0 {
			continue
		}
		ret := (series[i].Price - prev) / prev
		out = append(out, []float64{
			ret,
			math.Abs(ret),
			series[i].Volume / meanVolume,
		})
	}
	return out
}

func fitNormalizer(samples [][]float64) ([]float64, []float64) {
	featureCount := len(samples[0])
	means := make([]float64, featureCount)
	stds := make([]float64, featureCount)
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(len(samples))
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalize(in, means, stds []float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		out[i] = (in[i] - means[i]) / stds[i]
	}
	return out
}
