package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscore/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptrFloat64(v float64) *float64 { return &v }

func ptrTime(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultScorerConfig(), DefaultTables(), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return s
}

func TestImpactFor(t *testing.T) {
	assert.Equal(t, model.ImpactPositive, impactFor(0.7))
	assert.Equal(t, model.ImpactNeutral, impactFor(0.69))
	assert.Equal(t, model.ImpactNeutral, impactFor(0.4))
	assert.Equal(t, model.ImpactNegative, impactFor(0.39))
}

func TestAggregateCategory(t *testing.T) {
	factors := []model.ScoringFactor{
		{Name: "a", Value: 1.0, Weight: 3},
		{Name: "b", Value: 0.0, Weight: 1},
	}
	cat, err := AggregateCategory(factors, 0.25, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 75, cat.Score)
	assert.InDelta(t, 0.25, cat.Weight, 0.0001)
	assert.InDelta(t, 0.9, cat.Confidence, 0.0001)
	assert.Len(t, cat.Factors, 2)
}

func TestAggregateCategoryDegenerate(t *testing.T) {
	cat, err := AggregateCategory([]model.ScoringFactor{{Name: "a", Value: 1, Weight: 0}}, 0.2, 0.8)
	require.ErrorIs(t, err, ErrDegenerateCategory)
	assert.Equal(t, 0, cat.Score)
	assert.InDelta(t, 0, cat.Confidence, 0.0001)

	_, err = AggregateCategory(nil, 0.2, 0.8)
	require.ErrorIs(t, err, ErrDegenerateCategory)
}

func TestScoreDealSize(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"missing", 0, 0.1},
		{"half of min", 10_000_000, 0.65},
		{"at min", 20_000_000, 1.0},
		{"sweet spot", 50_000_000, 1.0},
		{"at max", 100_000_000, 1.0},
		{"double max", 200_000_000, 0.5},
		{"far above max", 1_000_000_000, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scoreDealSize(tt.value, 20_000_000, 100_000_000)
			assert.Equal(t, FactorDealSize, f.Name)
			assert.InDelta(t, tt.want, f.Value, 0.001)
			assert.InDelta(t, weightDealSize, f.Weight, 0.0001)
		})
	}
}

func TestScoreValuation(t *testing.T) {
	tables := DefaultTables()
	tech := tables.Sectors[model.SectorTechnology]
	growth := tables.Stages[model.StageGrowth]

	tests := []struct {
		name       string
		project    model.Project
		want       float64
		wantImpact model.Impact
	}{
		{"stage baseline in line", model.Project{DealValue: 50_000_000}, 0.6, model.ImpactNeutral},
		{"cheap supplied multiple", model.Project{DealValue: 50_000_000, ValuationMultiple: ptrFloat64(10)}, 0.9, model.ImpactPositive},
		{"expensive supplied multiple", model.Project{DealValue: 50_000_000, ValuationMultiple: ptrFloat64(20)}, 0.3, model.ImpactNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scoreValuation(tt.project, tech, growth, 20_000_000, 100_000_000)
			assert.InDelta(t, tt.want, f.Value, 0.001)
			assert.Equal(t, tt.wantImpact, f.Impact)
		})
	}
}

func TestImpliedMultipleSizeAdjustment(t *testing.T) {
	buyout := DefaultTables().Stages[model.StageBuyout]
	assert.InDelta(t, 9.0, impliedMultiple(model.Project{DealValue: 5_000_000}, buyout, 20e6, 100e6), 0.001)
	assert.InDelta(t, 10.0, impliedMultiple(model.Project{DealValue: 50_000_000}, buyout, 20e6, 100e6), 0.001)
	assert.InDelta(t, 11.0, impliedMultiple(model.Project{DealValue: 500_000_000}, buyout, 20e6, 100e6), 0.001)
	assert.InDelta(t, 10.0, impliedMultiple(model.Project{}, buyout, 20e6, 100e6), 0.001)
}

func TestScoreExpectedIRR(t *testing.T) {
	tables := DefaultTables()

	f := scoreExpectedIRR(model.Project{Progress: 70}, tables.Sectors[model.SectorTechnology], 0)
	assert.InDelta(t, 0.9, f.Value, 0.001)
	assert.Equal(t, model.ImpactPositive, f.Impact)

	f = scoreExpectedIRR(model.Project{Progress: 50}, tables.Sectors[model.SectorEnergy], tables.IRROffsets[model.RiskCritical])
	assert.InDelta(t, 0.4, f.Value, 0.001)
	assert.Equal(t, model.ImpactNegative, f.Impact)

	f = scoreExpectedIRR(model.Project{Progress: 50}, tables.Sectors[model.SectorFinancialServices], 0)
	assert.Equal(t, model.ImpactNeutral, f.Impact)
}

func TestScoreDealConfidence(t *testing.T) {
	f := scoreDealConfidence(model.Project{})
	assert.InDelta(t, 0.5, f.Value, 0.001)
	assert.Contains(t, f.Description, "No confidence score")

	f = scoreDealConfidence(model.Project{ConfidenceScore: ptrFloat64(0.8)})
	assert.InDelta(t, 0.8, f.Value, 0.001)
	assert.Equal(t, model.ImpactPositive, f.Impact)
}

func TestScoreProgress(t *testing.T) {
	tables := DefaultTables()

	f := scoreProgress(model.Project{Progress: 65, Stage: model.StageGrowth}, tables.Stages[model.StageGrowth])
	assert.InDelta(t, 1/1.2, f.Value, 0.001)
	assert.Equal(t, model.ImpactPositive, f.Impact)

	f = scoreProgress(model.Project{Progress: 100, Stage: model.StageEarly}, tables.Stages[model.StageEarly])
	assert.InDelta(t, 1.0, f.Value, 0.001)

	f = scoreProgress(model.Project{Progress: 0, Stage: model.StageBuyout}, tables.Stages[model.StageBuyout])
	assert.InDelta(t, 0, f.Value, 0.001)
	assert.Equal(t, model.ImpactNegative, f.Impact)

	f = scoreProgress(model.Project{Progress: 50, Stage: model.StageGrowth}, tables.Stages[model.StageGrowth])
	assert.Equal(t, model.ImpactNeutral, f.Impact)
}

func TestOptimalTeamSize(t *testing.T) {
	s := newTestScorer(t)

	assert.Equal(t, 5, s.optimalTeamSize(model.Project{DealValue: 50_000_000, Sector: model.SectorTechnology, RiskRating: model.RiskMedium}))
	assert.Equal(t, 7, s.optimalTeamSize(model.Project{DealValue: 200_000_000, Sector: model.SectorEnergy, RiskRating: model.RiskHigh}))
	assert.Equal(t, 3, s.optimalTeamSize(model.Project{DealValue: 5_000_000, Sector: model.SectorConsumer, RiskRating: model.RiskLow}))
}

func TestScoreTeamCapacity(t *testing.T) {
	tests := []struct {
		name    string
		team    int
		optimal int
		want    float64
	}{
		{"empty team", 0, 5, 0},
		{"understaffed", 4, 5, 0.8},
		{"optimal", 5, 5, 1.0},
		{"slightly over", 6, 5, 0.9},
		{"heavily over", 15, 5, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scoreTeamCapacity(model.Project{TeamSize: tt.team}, tt.optimal)
			assert.InDelta(t, tt.want, f.Value, 0.001)
		})
	}
}

func TestScoreWorkProducts(t *testing.T) {
	growth := DefaultTables().Stages[model.StageGrowth]

	assert.Equal(t, 6, workProductTarget(model.Project{Progress: 70}, growth))
	assert.InDelta(t, 0.5, scoreWorkProducts(model.Project{Progress: 70, WorkProducts: 3}, growth).Value, 0.001)
	assert.InDelta(t, 1.0, scoreWorkProducts(model.Project{Progress: 70, WorkProducts: 12}, growth).Value, 0.001)
	// No work expected yet.
	assert.InDelta(t, 1.0, scoreWorkProducts(model.Project{Progress: 0}, growth).Value, 0.001)
}

func TestScoreDeadline(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name     string
		project  model.Project
		want     float64
		wantDesc string
	}{
		{"no deadline", model.Project{Progress: 50}, 0.7, "No deadline"},
		{"relaxed", model.Project{Progress: 50, Deadline: ptrTime(200 * day)}, 1.0, "remaining"},
		{"on pace", model.Project{Progress: 70, Deadline: ptrTime(30 * day)}, 0.8, "remaining"},
		{"tight", model.Project{Progress: 40, Deadline: ptrTime(40 * day)}, 0.5, "remaining"},
		{"very tight", model.Project{Progress: 40, Deadline: ptrTime(20 * day)}, 0.3, "remaining"},
		{"impossible", model.Project{Progress: 50, Deadline: ptrTime(10 * day)}, 0.1, "remaining"},
		{"passed and complete", model.Project{Progress: 100, Deadline: ptrTime(-5 * day)}, 1.0, "Completed"},
		{"passed and incomplete", model.Project{Progress: 60, Deadline: ptrTime(-5 * day)}, 0.1, "Deadline passed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scoreDeadline(scheduleFor(tt.project, testNow))
			assert.InDelta(t, tt.want, f.Value, 0.001)
			assert.Contains(t, f.Description, tt.wantDesc)
		})
	}
}

func TestScoreExecutionRisk(t *testing.T) {
	day := 24 * time.Hour

	overdue := scheduleFor(model.Project{Progress: 60, Deadline: ptrTime(-day)}, testNow)
	assert.True(t, overdue.overdue())
	f := scoreExecutionRisk(overdue, 0.4)
	assert.InDelta(t, 0.2, f.Value, 0.001)
	assert.Contains(t, f.Description, "deadline passed")

	f = scoreExecutionRisk(schedule{}, 1.0)
	assert.InDelta(t, 1.0, f.Value, 0.001)
	assert.Equal(t, "No execution concerns", f.Description)

	aggressive := scheduleFor(model.Project{Progress: 40, Deadline: ptrTime(20 * day)}, testNow)
	f = scoreExecutionRisk(aggressive, 0.6)
	assert.InDelta(t, 0.55, f.Value, 0.001)

	elevated := scheduleFor(model.Project{Progress: 40, Deadline: ptrTime(40 * day)}, testNow)
	f = scoreExecutionRisk(elevated, 1.0)
	assert.InDelta(t, 0.85, f.Value, 0.001)
}

func TestScoreDiversification(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		sector model.Sector
		geo    model.Geography
		want   float64
	}{
		{model.SectorHealthcare, model.GeoEurope, 1.0},
		{model.SectorEnergy, model.GeoNorthAmerica, 0.7},
		{model.SectorTechnology, model.GeoAsiaPacific, 0.7},
		{model.SectorTechnology, model.GeoOther, 0.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.sector)+"/"+string(tt.geo), func(t *testing.T) {
			f := s.scoreDiversification(model.Project{Sector: tt.sector, Geography: tt.geo})
			assert.InDelta(t, tt.want, f.Value, 0.001)
		})
	}
}

func TestFactorWeightsSumToOne(t *testing.T) {
	s := newTestScorer(t)
	p := model.Project{DealValue: 50_000_000, Sector: model.SectorTechnology, Stage: model.StageGrowth}.Normalize()

	for name, factors := range map[string][]model.ScoringFactor{
		"financial":   s.financialFactors(p),
		"operational": s.operationalFactors(p, testNow),
		"strategic":   s.strategicFactors(p),
		"risk":        s.riskFactors(p, testNow),
	} {
		var sum float64
		for _, f := range factors {
			sum += f.Weight
			assert.GreaterOrEqual(t, f.Value, 0.0, "%s/%s", name, f.Name)
			assert.LessOrEqual(t, f.Value, 1.0, "%s/%s", name, f.Name)
		}
		assert.Len(t, factors, 4, name)
		assert.InDelta(t, 1.0, sum, 0.0001, name)
	}
}
