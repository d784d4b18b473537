package model

import "time"

// Trend is the direction a metric is moving in.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ParseTrend maps input to a Trend. Unknown values map to TrendStable.
func ParseTrend(s string) Trend {
	switch normalizeKey(s) {
	case "improving", "up":
		return TrendImproving
	case "declining", "down":
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Module is a named organizational function that gets benchmarked.
type Module string

const (
	ModulePortfolioManagement Module = "portfolio_management"
	ModuleDueDiligence        Module = "due_diligence"
	ModuleLegal               Module = "legal"
	ModuleDealScreening       Module = "deal_screening"
	ModuleFundOperations      Module = "fund_operations"
	ModuleInvestmentCommittee Module = "investment_committee"
	ModuleMarketIntelligence  Module = "market_intelligence"
)

// Modules lists every benchmarked module in reporting order.
var Modules = []Module{
	ModulePortfolioManagement,
	ModuleDueDiligence,
	ModuleLegal,
	ModuleDealScreening,
	ModuleFundOperations,
	ModuleInvestmentCommittee,
	ModuleMarketIntelligence,
}

var moduleTitles = map[Module]string{
	ModulePortfolioManagement: "Portfolio Management",
	ModuleDueDiligence:        "Due Diligence",
	ModuleLegal:               "Legal",
	ModuleDealScreening:       "Deal Screening",
	ModuleFundOperations:      "Fund Operations",
	ModuleInvestmentCommittee: "Investment Committee",
	ModuleMarketIntelligence:  "Market Intelligence",
}

// Title returns the display name of the module.
func (m Module) Title() string {
	if t, ok := moduleTitles[m]; ok {
		return t
	}
	return string(m)
}

// BenchmarkData is one metric compared against its industry reference points.
type BenchmarkData struct {
	Metric              string    `json:"metric"`
	Label               string    `json:"label"`
	FundValue           float64   `json:"fund_value"`
	IndustryMedian      float64   `json:"industry_median"`
	IndustryTopQuartile float64   `json:"industry_top_quartile"`
	IndustryTopDecile   float64   `json:"industry_top_decile"`
	Percentile          int       `json:"percentile"`
	LowerIsBetter       bool      `json:"lower_is_better"`
	Trend               Trend     `json:"trend"`
	LastUpdated         time.Time `json:"last_updated"`
}

// PeerComparison places a module relative to peer groups.
type PeerComparison struct {
	BetterThan    float64  `json:"better_than"`
	SimilarTo     []string `json:"similar_to"`
	LaggingBehind []string `json:"lagging_behind"`
}

// ModuleBenchmark is the graded benchmark of one module.
type ModuleBenchmark struct {
	ModuleName       Module          `json:"module_name"`
	OverallScore     float64         `json:"overall_score"`
	Grade            string          `json:"grade"`
	Metrics          []BenchmarkData `json:"metrics"`
	Strengths        []string        `json:"strengths"`
	ImprovementAreas []string        `json:"improvement_areas"`
	PeerComparison   PeerComparison  `json:"peer_comparison"`
}

// FundRanking is the overall industry position across all modules.
type FundRanking struct {
	IndustryRank int     `json:"industry_rank"`
	TotalFunds   int     `json:"total_funds"`
	Percentile   float64 `json:"percentile"`
	Grade        string  `json:"grade"`
}

// IndustryBenchmarks aggregates every module benchmark into one ranking.
type IndustryBenchmarks struct {
	Modules            []ModuleBenchmark `json:"modules"`
	OverallFundRanking FundRanking       `json:"overall_fund_ranking"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// Module returns the benchmark for m, or nil if it is absent.
func (ib *IndustryBenchmarks) Module(m Module) *ModuleBenchmark {
	for i := range ib.Modules {
		if ib.Modules[i].ModuleName == m {
			return &ib.Modules[i]
		}
	}
	return nil
}

// InsightType classifies a benchmark insight.
type InsightType string

const (
	InsightStrength    InsightType = "strength"
	InsightOpportunity InsightType = "opportunity"
)

// Insight is a cross-module observation derived from IndustryBenchmarks.
type Insight struct {
	Type        InsightType `json:"type"`
	Module      Module      `json:"module,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Score       float64     `json:"score"`
}
