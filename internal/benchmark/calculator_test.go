package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dealscore/internal/model"
)

func TestPercentileHigherIsBetter(t *testing.T) {
	t.Parallel()
	ref := Triple{Median: 15, TopQuartile: 20, TopDecile: 28}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"above top decile", 35, 90},
		{"at top decile", 28, 90},
		{"just below top decile", 27.99, 75},
		{"at top quartile", 20, 75},
		{"between median and quartile", 17, 50},
		{"at median", 15, 50},
		{"at floor", 10.5, 25},
		{"just below floor", 10.49, 10},
		{"half median", 7.5, 10},
		{"zero", 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.value, ref, false, DefaultBands()))
		})
	}
}

func TestPercentileLowerIsBetter(t *testing.T) {
	t.Parallel()
	ref := Triple{Median: 30, TopQuartile: 14, TopDecile: 7}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"well below top decile", 3, 90},
		{"at top decile", 7, 90},
		{"just above top decile", 7.01, 75},
		{"at top quartile", 14, 75},
		{"at median", 30, 50},
		{"at ceiling", 45, 25},
		{"just above ceiling", 45.01, 10},
		{"far above", 120, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.value, ref, true, DefaultBands()))
		})
	}
}

func TestPercentileMonotonic(t *testing.T) {
	t.Parallel()
	ref := Triple{Median: 40, TopQuartile: 60, TopDecile: 90}
	b := DefaultBands()

	assert.GreaterOrEqual(t, Percentile(90, ref, false, b), Percentile(60, ref, false, b))
	assert.GreaterOrEqual(t, Percentile(60, ref, false, b), Percentile(40, ref, false, b))
	assert.GreaterOrEqual(t, Percentile(40, ref, false, b), Percentile(20, ref, false, b))

	prev := 0
	for v := 0.0; v <= 100; v += 0.5 {
		p := Percentile(v, ref, false, b)
		assert.GreaterOrEqual(t, p, prev, "value %.1f", v)
		prev = p
	}
}

func TestPercentileCustomBands(t *testing.T) {
	t.Parallel()
	ref := Triple{Median: 10, TopQuartile: 20, TopDecile: 30}
	assert.Equal(t, 10, Percentile(6, ref, false, Bands{LowerFloor: 0.7, UpperCeiling: 1.5}))
	assert.Equal(t, 25, Percentile(6, ref, false, Bands{LowerFloor: 0.5, UpperCeiling: 1.5}))
}

func TestGrade(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A+"},
		{95, "A+"},
		{94.999, "A"},
		{85, "A"},
		{84.999, "B+"},
		{84.99, "B+"},
		{75, "B+"},
		{65, "B"},
		{55, "C+"},
		{50, "C+"},
		{49.999, "C"},
		{35, "C"},
		{34.9, "D"},
		{10, "D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %v", tt.score)
	}
}

func TestCalculatorBenchmark(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	calc := NewCalculator(DefaultBands())
	spec := MetricSpec{Key: "legal_cost_ratio", Label: "Legal Cost", Triple: Triple{1.5, 1.0, 0.6}, LowerIsBetter: true}

	d := calc.Benchmark(spec, 0.9, model.TrendImproving, now)
	assert.Equal(t, "legal_cost_ratio", d.Metric)
	assert.Equal(t, "Legal Cost", d.Label)
	assert.InDelta(t, 0.9, d.FundValue, 0.0001)
	assert.InDelta(t, 1.5, d.IndustryMedian, 0.0001)
	assert.Equal(t, 75, d.Percentile)
	assert.True(t, d.LowerIsBetter)
	assert.Equal(t, model.TrendImproving, d.Trend)
	assert.Equal(t, now, d.LastUpdated)
}

func TestDeriveTrend(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		current       float64
		prior         float64
		lowerIsBetter bool
		want          model.Trend
	}{
		{"up for higher-is-better", 110, 100, false, model.TrendImproving},
		{"down for higher-is-better", 90, 100, false, model.TrendDeclining},
		{"within threshold", 101.5, 100, false, model.TrendStable},
		{"down for lower-is-better", 20, 30, true, model.TrendImproving},
		{"up for lower-is-better", 40, 30, true, model.TrendDeclining},
		{"zero prior", 5, 0, false, model.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTrend(tt.current, tt.prior, tt.lowerIsBetter))
		})
	}
}
