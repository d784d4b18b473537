package benchmark

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/dealscore/internal/config"
	"github.com/sells-group/dealscore/internal/model"
)

// ModuleInput carries a fund's raw metric values for one module. Missing
// values are benchmarked at the industry median.
type ModuleInput struct {
	Values      map[string]float64     `yaml:"values" json:"values"`
	PriorValues map[string]float64     `yaml:"prior_values,omitempty" json:"prior_values,omitempty"`
	Trends      map[string]model.Trend `yaml:"trends,omitempty" json:"trends,omitempty"`
}

// DefaultBenchmarkConfig returns a config.BenchmarkConfig with the default
// thresholds and a peer population of 487 funds.
func DefaultBenchmarkConfig() config.BenchmarkConfig {
	return config.BenchmarkConfig{
		PeerPopulation:    487,
		RankMultiplier:    5,
		StrengthThreshold: 75,
		GapThreshold:      50,
		LowerFloor:        0.7,
		UpperCeiling:      1.5,
	}
}

// Benchmarker grades modules against a Reference. It holds no mutable state.
type Benchmarker struct {
	cfg  config.BenchmarkConfig
	ref  Reference
	calc *Calculator
	now  func() time.Time
}

// Option configures a Benchmarker.
type Option func(*Benchmarker)

// WithClock overrides the clock used for LastUpdated and GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Benchmarker) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBenchmarker validates cfg and ref and returns a Benchmarker.
func NewBenchmarker(cfg config.BenchmarkConfig, ref Reference, opts ...Option) (*Benchmarker, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	b := &Benchmarker{
		cfg:  cfg,
		ref:  ref,
		calc: NewCalculator(Bands{LowerFloor: cfg.LowerFloor, UpperCeiling: cfg.UpperCeiling}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func validateConfig(cfg config.BenchmarkConfig) error {
	switch {
	case cfg.PeerPopulation < 1:
		return eris.Errorf("benchmark: peer_population must be >= 1, got %d", cfg.PeerPopulation)
	case cfg.RankMultiplier <= 0:
		return eris.Errorf("benchmark: rank_multiplier must be > 0, got %g", cfg.RankMultiplier)
	case cfg.LowerFloor <= 0 || cfg.LowerFloor >= 1:
		return eris.Errorf("benchmark: lower_floor must be in (0, 1), got %g", cfg.LowerFloor)
	case cfg.UpperCeiling <= 1:
		return eris.Errorf("benchmark: upper_ceiling must be > 1, got %g", cfg.UpperCeiling)
	case cfg.GapThreshold > cfg.StrengthThreshold:
		return eris.Errorf("benchmark: gap_threshold %g exceeds strength_threshold %g", cfg.GapThreshold, cfg.StrengthThreshold)
	}
	return nil
}

// Reference returns the reference table in use.
func (b *Benchmarker) Reference() Reference { return b.ref }

// BenchmarkModule grades every metric of module m and summarizes the result.
func (b *Benchmarker) BenchmarkModule(m model.Module, in ModuleInput) (model.ModuleBenchmark, error) {
	specs, ok := b.ref[m]
	if !ok {
		return model.ModuleBenchmark{}, eris.Errorf("benchmark: unknown module %q", m)
	}
	b.warnUnknownMetrics(m, in)

	now := b.now().UTC()
	metrics := make([]model.BenchmarkData, 0, len(specs))
	percentiles := make([]float64, 0, len(specs))
	for _, spec := range specs {
		value, ok := in.Values[spec.Key]
		if !ok {
			value = spec.Median
		}
		d := b.calc.Benchmark(spec, value, b.trendFor(spec, value, in), now)
		metrics = append(metrics, d)
		percentiles = append(percentiles, float64(d.Percentile))
	}

	score := stat.Mean(percentiles, nil)
	mb := model.ModuleBenchmark{
		ModuleName:       m,
		OverallScore:     score,
		Grade:            Grade(score),
		Metrics:          metrics,
		Strengths:        []string{},
		ImprovementAreas: []string{},
		PeerComparison:   peerComparison(score, b.cfg),
	}

	text := moduleText[m]
	switch {
	case score >= b.cfg.StrengthThreshold:
		mb.Strengths = append(mb.Strengths, text.strengths...)
	case score < b.cfg.GapThreshold:
		mb.ImprovementAreas = append(mb.ImprovementAreas, text.gaps...)
	}

	zap.L().Debug("benchmark: module graded",
		zap.String("module", string(m)),
		zap.Float64("score", score),
		zap.String("grade", mb.Grade),
	)
	return mb, nil
}

// trendFor prefers an explicit trend, then one derived from the prior value.
func (b *Benchmarker) trendFor(spec MetricSpec, value float64, in ModuleInput) model.Trend {
	if t, ok := in.Trends[spec.Key]; ok {
		return model.ParseTrend(string(t))
	}
	if prior, ok := in.PriorValues[spec.Key]; ok {
		return DeriveTrend(value, prior, spec.LowerIsBetter)
	}
	return model.TrendStable
}

func (b *Benchmarker) warnUnknownMetrics(m model.Module, in ModuleInput) {
	var unknown []string
	for k := range in.Values {
		if _, ok := b.ref.Metric(m, k); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)
	zap.L().Warn("benchmark: ignoring unknown metrics",
		zap.String("module", string(m)),
		zap.Strings("metrics", unknown),
	)
}

func peerComparison(score float64, cfg config.BenchmarkConfig) model.PeerComparison {
	pc := model.PeerComparison{BetterThan: score}
	switch {
	case score >= cfg.StrengthThreshold:
		pc.SimilarTo = []string{"Top-quartile buyout funds", "Established multi-strategy platforms"}
		pc.LaggingBehind = []string{"Top-decile specialist funds"}
	case score >= cfg.GapThreshold:
		pc.SimilarTo = []string{"Mid-market generalist funds", "Regional growth equity funds"}
		pc.LaggingBehind = []string{"Top-quartile buyout funds", "Top-decile specialist funds"}
	default:
		pc.SimilarTo = []string{"Emerging managers", "First-time funds"}
		pc.LaggingBehind = []string{"Mid-market generalist funds", "Top-quartile buyout funds"}
	}
	return pc
}

type cannedText struct {
	strengths []string
	gaps      []string
}

var moduleText = map[model.Module]cannedText{
	model.ModulePortfolioManagement: {
		strengths: []string{
			"Returns ahead of industry benchmarks",
			"Frequent, disciplined portfolio monitoring",
			"Repeatable value creation playbook",
		},
		gaps: []string{
			"Shorten the portfolio monitoring cycle",
			"Formalize value creation plans at entry",
			"Benchmark exits against top-quartile MOIC",
		},
	},
	model.ModuleDueDiligence: {
		strengths: []string{
			"Fast diligence turnaround",
			"High accuracy identifying material issues",
			"Cost-efficient diligence process",
		},
		gaps: []string{
			"Reduce diligence cycle time with standardized workstreams",
			"Improve issue identification with structured checklists",
			"Control third-party diligence spend",
		},
	},
	model.ModuleLegal: {
		strengths: []string{
			"Rapid document turnaround",
			"Near error-free contract execution",
			"Legal spend below industry norms",
		},
		gaps: []string{
			"Adopt clause libraries to speed document turnaround",
			"Add second-review controls for contract accuracy",
			"Renegotiate outside counsel arrangements",
		},
	},
	model.ModuleDealScreening: {
		strengths: []string{
			"High deal flow throughput",
			"Strong screen-to-LOI conversion",
			"Fast initial screening decisions",
		},
		gaps: []string{
			"Expand sourcing channels to lift throughput",
			"Tighten screening criteria to improve conversion",
			"Automate first-pass screening",
		},
	},
	model.ModuleFundOperations: {
		strengths: []string{
			"Lean operating expense base",
			"Timely LP reporting",
			"Accurate capital call execution",
		},
		gaps: []string{
			"Reduce fund operating expenses",
			"Accelerate the quarterly reporting close",
			"Reconcile capital call calculations before issuance",
		},
	},
	model.ModuleInvestmentCommittee: {
		strengths: []string{
			"Efficient committee decision cycle",
			"Approved deals perform well post-close",
			"Comprehensive investment memos",
		},
		gaps: []string{
			"Streamline committee scheduling and pre-reads",
			"Track post-approval outcomes against the original thesis",
			"Standardize investment memo templates",
		},
	},
	model.ModuleMarketIntelligence: {
		strengths: []string{
			"Broad sector coverage",
			"Accurate market signals",
			"Low-latency research delivery",
		},
		gaps: []string{
			"Extend coverage to adjacent sectors",
			"Backtest market signals against realized outcomes",
			"Reduce research turnaround time",
		},
	},
}
