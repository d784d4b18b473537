package scorer

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// ErrDegenerateCategory is returned when a category's factor weights sum to zero.
var ErrDegenerateCategory = eris.New("scorer: degenerate category")

// Fixed per-category confidences.
const (
	financialConfidence   = 0.85
	operationalConfidence = 0.90
	strategicConfidence   = 0.75
	riskConfidence        = 0.80
)

// AggregateCategory turns a factor list into a 0-100 category score using the
// weighted mean of factor values. A factor list whose weights sum to zero
// yields a zero-score, zero-confidence category and ErrDegenerateCategory.
func AggregateCategory(factors []model.ScoringFactor, weight, confidence float64) (model.DealScoreCategory, error) {
	cat := model.DealScoreCategory{
		Weight:     weight,
		Factors:    factors,
		Confidence: confidence,
	}

	var num, den float64
	for _, f := range factors {
		num += f.Value * f.Weight
		den += f.Weight
	}
	if den <= 0 {
		cat.Confidence = 0
		return cat, ErrDegenerateCategory
	}

	cat.Score = clampInt(int(math.Round(100*num/den)), 0, 100)
	return cat, nil
}

// impactFor maps a normalized factor value to its qualitative impact.
func impactFor(v float64) model.Impact {
	switch {
	case v >= 0.7:
		return model.ImpactPositive
	case v >= 0.4:
		return model.ImpactNeutral
	default:
		return model.ImpactNegative
	}
}

func factor(name string, value, weight float64, impact model.Impact, desc string) model.ScoringFactor {
	return model.ScoringFactor{
		Name:        name,
		Value:       clamp(value, 0, 1),
		Impact:      impact,
		Description: desc,
		Weight:      weight,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// millions formats a currency amount as "$12.5M".
func millions(v float64) string {
	return fmt.Sprintf("$%.1fM", v/1_000_000)
}
