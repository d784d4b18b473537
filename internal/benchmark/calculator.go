// Package benchmark grades fund operating metrics against industry reference points.
package benchmark

import (
	"math"
	"time"

	"github.com/sells-group/dealscore/internal/model"
)

// Triple holds the industry reference points for one metric.
type Triple struct {
	Median      float64 `yaml:"median" json:"median"`
	TopQuartile float64 `yaml:"top_quartile" json:"top_quartile"`
	TopDecile   float64 `yaml:"top_decile" json:"top_decile"`
}

// Bands configures the 25th-percentile band. Higher-is-better metrics reach
// it at LowerFloor×median; lower-is-better metrics at UpperCeiling×median.
type Bands struct {
	LowerFloor   float64 `yaml:"lower_floor" mapstructure:"lower_floor"`
	UpperCeiling float64 `yaml:"upper_ceiling" mapstructure:"upper_ceiling"`
}

// DefaultBands returns the default 0.7× floor and 1.5× ceiling.
func DefaultBands() Bands {
	return Bands{LowerFloor: 0.7, UpperCeiling: 1.5}
}

// Percentile bands value against ref into one of 10, 25, 50, 75 or 90.
// Values exactly on a threshold receive that threshold's band.
func Percentile(value float64, ref Triple, lowerIsBetter bool, bands Bands) int {
	if lowerIsBetter {
		switch {
		case value <= ref.TopDecile:
			return 90
		case value <= ref.TopQuartile:
			return 75
		case value <= ref.Median:
			return 50
		case value <= bands.UpperCeiling*ref.Median:
			return 25
		default:
			return 10
		}
	}
	switch {
	case value >= ref.TopDecile:
		return 90
	case value >= ref.TopQuartile:
		return 75
	case value >= ref.Median:
		return 50
	case value >= bands.LowerFloor*ref.Median:
		return 25
	default:
		return 10
	}
}

// Grade maps a (possibly fractional) percentile score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 75:
		return "B+"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C+"
	case score >= 35:
		return "C"
	default:
		return "D"
	}
}

// Calculator produces BenchmarkData for individual metrics.
type Calculator struct {
	bands Bands
}

// NewCalculator creates a Calculator with the given bands.
func NewCalculator(bands Bands) *Calculator {
	return &Calculator{bands: bands}
}

// Benchmark compares value against spec and returns the resulting BenchmarkData.
func (c *Calculator) Benchmark(spec MetricSpec, value float64, trend model.Trend, now time.Time) model.BenchmarkData {
	return model.BenchmarkData{
		Metric:              spec.Key,
		Label:               spec.Label,
		FundValue:           value,
		IndustryMedian:      spec.Median,
		IndustryTopQuartile: spec.TopQuartile,
		IndustryTopDecile:   spec.TopDecile,
		Percentile:          Percentile(value, spec.Triple, spec.LowerIsBetter, c.bands),
		LowerIsBetter:       spec.LowerIsBetter,
		Trend:               trend,
		LastUpdated:         now,
	}
}

// DeriveTrend compares current against prior. A move of more than 2% in the
// better direction is improving, more than 2% in the worse direction is
// declining, anything else is stable.
func DeriveTrend(current, prior float64, lowerIsBetter bool) model.Trend {
	if prior == 0 {
		return model.TrendStable
	}
	change := (current - prior) / math.Abs(prior)
	if lowerIsBetter {
		change = -change
	}
	switch {
	case change > trendThreshold:
		return model.TrendImproving
	case change < -trendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

const trendThreshold = 0.02
