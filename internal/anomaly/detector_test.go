package anomaly

import (
	"math"
	"testing"
	"time"

	"marketpulse/internal/domain"
)

func calmSeries(n int) domain.PriceSeries {
	base := time.Unix(1700000000, 0).UTC()
	series := make(domain.PriceSeries, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1 + 0.002*math.Sin(float64(i)/7)
		series = append(series, domain.PriceSample{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Price:     price,
			Volume:    1000 + 50*math.Sin(float64(i)/5),
		})
	}
	return series
}

func TestShortSeriesNeverAnomalous(t *testing.T) {
	d := NewDetector()
	score, flagged := d.Check(calmSeries(10))
	if flagged || score != 0 {
		t.Fatalf("short series must not flag, got score=%f flagged=%v", score, flagged)
	}
}

func TestCalmSeriesNotAnomalous(t *testing.T) {
	d := NewDetector()
	if _, flagged := d.Check(calmSeries(200)); flagged {
		t.Fatal("steady series should not flag")
	}
}

func TestCrashSampleScoresHigherThanCalm(t *testing.T) {
	d := NewDetector()
	calm := calmSeries(200)
	calmScore, _ := d.Check(calm)

	crashed := make(domain.PriceSeries, len(calm))
	copy(crashed, calm)
	last := crashed[len(crashed)-1]
	last.Price *= 0.6
	last.Volume *= 8
	crashed[len(crashed)-1] = last

	crashScore, _ := d.Check(crashed)
	if crashScore <= calmScore {
		t.Fatalf("crash sample should outscore calm one: crash=%f calm=%f", crashScore, calmScore)
	}
}

func TestFeatureVectorsSkipZeroPrices(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	series := domain.PriceSeries{
		{Timestamp: base, Price: 0, Volume: 10},
		{Timestamp: base.Add(time.Hour), Price: 100, Volume: 10},
		{Timestamp: base.Add(2 * time.Hour), Price: 101, Volume: 10},
	}
	vectors := featureVectors(series)
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector after skipping zero-price pair, got %d", len(vectors))
	}
}
