package model

import "time"

// Impact is the qualitative direction a factor pushes its category.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// ScoringFactor is one normalized input signal feeding a category score.
type ScoringFactor struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`  // 0.0-1.0
	Impact      Impact  `json:"impact"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"` // relative weight within the category
}

// DealScoreCategory is the aggregated 0-100 score of one category.
type DealScoreCategory struct {
	Score      int             `json:"score"`
	Weight     float64         `json:"weight"`
	Factors    []ScoringFactor `json:"factors"`
	Confidence float64         `json:"confidence"`
}

// Categories holds the four category scores. Field order fixes the JSON order.
type Categories struct {
	Financial   DealScoreCategory `json:"financial"`
	Operational DealScoreCategory `json:"operational"`
	Strategic   DealScoreCategory `json:"strategic"`
	Risk        DealScoreCategory `json:"risk"`
}

// All returns the categories in canonical order.
func (c Categories) All() []DealScoreCategory {
	return []DealScoreCategory{c.Financial, c.Operational, c.Strategic, c.Risk}
}

// CategoryNames is the canonical category order.
var CategoryNames = []string{"financial", "operational", "strategic", "risk"}

// DealBenchmarks compares a deal against sector, portfolio and stage peers.
type DealBenchmarks struct {
	SectorAverage    float64 `json:"sector_average"`
	PortfolioAverage float64 `json:"portfolio_average"`
	StageAverage     float64 `json:"stage_average"`
}

// DealScore is the full scoring result for a single project.
type DealScore struct {
	ProjectID         string         `json:"project_id"`
	ProjectName       string         `json:"project_name"`
	OverallScore      int            `json:"overall_score"`
	RiskAdjustedScore int            `json:"risk_adjusted_score"`
	Categories        Categories     `json:"categories"`
	Benchmarks        DealBenchmarks `json:"benchmarks"`
	Recommendations   []string       `json:"recommendations"`
	Confidence        float64        `json:"confidence"`
	LastUpdated       time.Time      `json:"last_updated"`
}
