// Package scorer implements multi-factor deal scoring for investment opportunities.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/config"
)

// DefaultScorerConfig returns a config.ScorerConfig with sensible defaults.
// Category weights sum to 1.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		// Weights (sum = 1).
		Weights: config.CategoryWeights{
			Financial:   0.35,
			Operational: 0.25,
			Strategic:   0.20,
			Risk:        0.20,
		},
		RiskMultipliers: config.RiskMultipliers{
			Low:      1.05,
			Medium:   1.00,
			High:     0.90,
			Critical: 0.75,
		},

		// Deal size sweet spot.
		MinDealSize: 20_000_000,  // $20M
		MaxDealSize: 100_000_000, // $100M

		// Thresholds.
		StrongBuyThreshold: 80,
		BuyThreshold:       65,
		HoldThreshold:      45,
		AdvisoryThreshold:  60,
		StrategicHighWater: 80,

		MinConfidence: 0.50,
		MaxConfidence: 0.99,
	}
}

// WeightSum returns the sum of the four category weights.
func WeightSum(c config.ScorerConfig) float64 {
	return c.Weights.Financial + c.Weights.Operational + c.Weights.Strategic + c.Weights.Risk
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	// Category weights must lie in (0, 1].
	weights := []struct {
		name string
		w    float64
	}{
		{"weights.financial", c.Weights.Financial},
		{"weights.operational", c.Weights.Operational},
		{"weights.strategic", c.Weights.Strategic},
		{"weights.risk", c.Weights.Risk},
	}
	for _, w := range weights {
		if w.w <= 0 || w.w > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in (0, 1]", w.name))
		}
	}

	// Weights must sum to 1 (allow tolerance for floating-point).
	if sum := WeightSum(c); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.3f", sum))
	}

	// Multipliers must be positive and strictly ordered by risk.
	m := c.RiskMultipliers
	if m.Low <= 0 || m.Medium <= 0 || m.High <= 0 || m.Critical <= 0 {
		errs = append(errs, "risk multipliers must be > 0")
	}
	if !(m.Low > m.Medium && m.Medium > m.High && m.High > m.Critical) {
		errs = append(errs, "risk multipliers must decrease from low to critical")
	}

	// Deal size band.
	if c.MinDealSize < 0 {
		errs = append(errs, "min_deal_size must be >= 0")
	}
	if c.MaxDealSize <= c.MinDealSize {
		errs = append(errs, "max_deal_size must be > min_deal_size")
	}

	// Verdict thresholds.
	if !(c.HoldThreshold >= 0 && c.HoldThreshold <= c.BuyThreshold &&
		c.BuyThreshold <= c.StrongBuyThreshold && c.StrongBuyThreshold <= 100) {
		errs = append(errs, "thresholds must satisfy 0 <= hold <= buy <= strong_buy <= 100")
	}
	if c.AdvisoryThreshold < 0 || c.AdvisoryThreshold > 100 {
		errs = append(errs, "advisory_threshold must be between 0 and 100")
	}
	if c.StrategicHighWater < 0 || c.StrategicHighWater > 100 {
		errs = append(errs, "strategic_high_water must be between 0 and 100")
	}

	// Confidence bounds.
	if c.MinConfidence < 0 || c.MaxConfidence > 1 || c.MinConfidence > c.MaxConfidence {
		errs = append(errs, "confidence bounds must satisfy 0 <= min <= max <= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
