package scorer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/dealscore/internal/config"
	"github.com/sells-group/dealscore/internal/model"
)

// Scorer evaluates deals against a fixed configuration and set of tables.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	cfg    config.ScorerConfig
	tables Tables
	now    func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock overrides the clock used for deadline math and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScorer validates cfg and tables and returns a Scorer.
func NewScorer(cfg config.ScorerConfig, tables Tables, opts ...Option) (*Scorer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{cfg: cfg, tables: tables, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the scorer configuration.
func (s *Scorer) Config() config.ScorerConfig { return s.cfg }

// Tables returns the reference tables.
func (s *Scorer) Tables() Tables { return s.tables }

// ScoreDeal computes the full DealScore for project. portfolio is the set of
// known projects used for peer benchmarks; project itself is excluded by ID.
func (s *Scorer) ScoreDeal(project model.Project, portfolio []model.Project) *model.DealScore {
	p := project.Normalize()
	now := s.now()
	w := s.cfg.Weights

	cats := model.Categories{
		Financial:   s.category(p, "financial", s.financialFactors(p), w.Financial, financialConfidence),
		Operational: s.category(p, "operational", s.operationalFactors(p, now), w.Operational, operationalConfidence),
		Strategic:   s.category(p, "strategic", s.strategicFactors(p), w.Strategic, strategicConfidence),
		Risk:        s.category(p, "risk", s.riskFactors(p, now), w.Risk, riskConfidence),
	}

	var weighted float64
	for _, c := range cats.All() {
		weighted += float64(c.Score) * c.Weight
	}
	overall := clampInt(int(math.Round(weighted)), 0, 100)
	riskAdjusted := clampInt(int(math.Round(float64(overall)*s.riskMultiplier(p.RiskRating))), 0, 100)

	ds := &model.DealScore{
		ProjectID:         p.ID,
		ProjectName:       p.Name,
		OverallScore:      overall,
		RiskAdjustedScore: riskAdjusted,
		Categories:        cats,
		Benchmarks:        s.benchmarks(p, portfolio),
		Confidence:        s.confidence(p),
		LastUpdated:       now.UTC(),
	}
	ds.Recommendations = s.recommendations(p, ds)

	zap.L().Debug("scorer: deal scored",
		zap.String("project_id", p.ID),
		zap.Int("overall", overall),
		zap.Int("risk_adjusted", riskAdjusted),
		zap.Float64("confidence", ds.Confidence),
	)
	return ds
}

func (s *Scorer) category(p model.Project, name string, factors []model.ScoringFactor, weight, confidence float64) model.DealScoreCategory {
	cat, err := AggregateCategory(factors, weight, confidence)
	if err != nil {
		zap.L().Warn("scorer: category has no factor weight",
			zap.String("project_id", p.ID),
			zap.String("category", name),
			zap.Error(err),
		)
	}
	return cat
}

func (s *Scorer) riskMultiplier(r model.RiskRating) float64 {
	m := s.cfg.RiskMultipliers
	switch r {
	case model.RiskLow:
		return m.Low
	case model.RiskHigh:
		return m.High
	case model.RiskCritical:
		return m.Critical
	default:
		return m.Medium
	}
}

// QuickScore is a cheap 0-100 estimate used for peer averages.
func (s *Scorer) QuickScore(project model.Project) float64 {
	p := project.Normalize()
	q := 50 + 0.3*(p.Progress-50)
	q += s.tables.QuickScoreRisk[p.RiskRating]
	q += 10 * s.tables.sector(p.Sector).Priority
	if p.DealValue >= s.cfg.MinDealSize && p.DealValue <= s.cfg.MaxDealSize {
		q += 10
	}
	return round1(clamp(q, 0, 100))
}

// benchmarks compares p against its sector, the portfolio and same-stage peers.
func (s *Scorer) benchmarks(p model.Project, portfolio []model.Project) model.DealBenchmarks {
	var all, sameStage []float64
	for _, q := range portfolio {
		if p.ID != "" && q.ID == p.ID {
			continue
		}
		qs := s.QuickScore(q)
		all = append(all, qs)
		if model.ParseStage(string(q.Stage)) == p.Stage {
			sameStage = append(sameStage, qs)
		}
	}

	portfolioAvg := s.QuickScore(p)
	if len(all) > 0 {
		portfolioAvg = stat.Mean(all, nil)
	}
	stageAvg := portfolioAvg
	if len(sameStage) > 0 {
		stageAvg = stat.Mean(sameStage, nil)
	}

	return model.DealBenchmarks{
		SectorAverage:    round1(s.tables.sector(p.Sector).IRR * 100),
		PortfolioAverage: round1(portfolioAvg),
		StageAverage:     round1(stageAvg),
	}
}

// recommendations builds the ordered recommendation list: verdict first,
// then category advisories, then deal size and risk notes.
func (s *Scorer) recommendations(p model.Project, ds *model.DealScore) []string {
	c := s.cfg
	score := float64(ds.RiskAdjustedScore)
	var recs []string

	switch {
	case score >= c.StrongBuyThreshold:
		recs = append(recs, "STRONG BUY: exceptional opportunity with strong fundamentals across categories")
	case score >= c.BuyThreshold:
		recs = append(recs, "BUY: solid opportunity with a favorable risk-return profile")
	case score >= c.HoldThreshold:
		recs = append(recs,
			"HOLD: mixed signals across categories",
			"Caution: complete additional diligence before committing capital",
		)
	default:
		recs = append(recs, "PASS: risk-return profile does not meet investment criteria")
	}

	cats := ds.Categories
	if float64(cats.Financial.Score) < c.AdvisoryThreshold {
		recs = append(recs, fmt.Sprintf("Financial: score %d is below %.0f; revisit valuation and return assumptions",
			cats.Financial.Score, c.AdvisoryThreshold))
	}
	if float64(cats.Operational.Score) < c.AdvisoryThreshold {
		recs = append(recs, fmt.Sprintf("Operational: score %d is below %.0f; strengthen the deal team and execution plan",
			cats.Operational.Score, c.AdvisoryThreshold))
	}
	if float64(cats.Risk.Score) < c.AdvisoryThreshold {
		recs = append(recs, fmt.Sprintf("Risk: score %d is below %.0f; add mitigants and downside protection",
			cats.Risk.Score, c.AdvisoryThreshold))
	}
	if float64(cats.Strategic.Score) > c.StrategicHighWater {
		recs = append(recs, fmt.Sprintf("Strategic: score %d indicates high strategic value; prioritize in portfolio construction",
			cats.Strategic.Score))
	}

	switch {
	case p.DealValue > 0 && p.DealValue < c.MinDealSize:
		recs = append(recs, "Deal size below target range: evaluate add-on or platform potential")
	case p.DealValue > c.MaxDealSize:
		recs = append(recs, "Deal size above target range: consider co-investment or syndication")
	}

	switch p.RiskRating {
	case model.RiskHigh:
		recs = append(recs, "High risk rating: require enhanced due diligence and downside protection")
	case model.RiskCritical:
		recs = append(recs, "Critical risk rating: escalate to investment committee before proceeding")
	}

	return recs
}

// confidence reflects how much of the deal picture is known.
func (s *Scorer) confidence(p model.Project) float64 {
	c := 0.7 + 0.2*p.Progress/100 + 0.1*math.Min(float64(p.TeamSize)/6, 1)
	if p.ConfidenceScore != nil {
		c = (c + clamp(*p.ConfidenceScore, 0, 1)) / 2
	}
	c = clamp(c, s.cfg.MinConfidence, s.cfg.MaxConfidence)
	return math.Round(c*1000) / 1000
}

// ConfigHash returns a SHA-256 prefix of the scoring config and tables, stored
// alongside persisted scores for reproducibility.
func (s *Scorer) ConfigHash() string {
	data, err := json.Marshal(struct {
		Config config.ScorerConfig `json:"config"`
		Tables Tables              `json:"tables"`
	}{s.cfg, s.tables})
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}
