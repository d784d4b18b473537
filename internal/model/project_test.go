package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSector(t *testing.T) {
	tests := []struct {
		in   string
		want Sector
	}{
		{"Technology", SectorTechnology},
		{"tech", SectorTechnology},
		{"Financial Services", SectorFinancialServices},
		{"financial-services", SectorFinancialServices},
		{"Real Estate", SectorRealEstate},
		{"  HEALTHCARE ", SectorHealthcare},
		{"", SectorOther},
		{"crypto", SectorOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSector(tt.in))
		})
	}
}

func TestSectorKnown(t *testing.T) {
	assert.True(t, SectorEnergy.Known())
	assert.False(t, SectorOther.Known())
	assert.False(t, Sector("crypto").Known())
}

func TestParseStage(t *testing.T) {
	assert.Equal(t, StageGrowth, ParseStage("Growth"))
	assert.Equal(t, StageBuyout, ParseStage("LBO"))
	assert.Equal(t, StageEarly, ParseStage("early-stage"))
	assert.Equal(t, StageOther, ParseStage("pre-ipo"))
	assert.True(t, StageMature.Known())
	assert.False(t, StageOther.Known())
}

func TestParseGeography(t *testing.T) {
	assert.Equal(t, GeoNorthAmerica, ParseGeography("North America"))
	assert.Equal(t, GeoAsiaPacific, ParseGeography("APAC"))
	assert.Equal(t, GeoMiddleEastAfrica, ParseGeography("middle east"))
	assert.Equal(t, GeoOther, ParseGeography("antarctica"))
	assert.Equal(t, GeoOther, ParseGeography(""))
}

func TestParseRiskRating(t *testing.T) {
	tests := []struct {
		in   string
		want RiskRating
	}{
		{"low", RiskLow},
		{"Medium", RiskMedium},
		{"HIGH", RiskHigh},
		{"critical", RiskCritical},
		{"", RiskMedium},
		{"unknown", RiskMedium},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRiskRating(tt.in))
		})
	}
	assert.True(t, RiskHigh.Elevated())
	assert.True(t, RiskCritical.Elevated())
	assert.False(t, RiskMedium.Elevated())
}

func TestProjectNormalize(t *testing.T) {
	p := Project{
		Sector:       "Tech",
		Stage:        "LBO",
		Geography:    "",
		RiskRating:   "",
		Progress:     140,
		TeamSize:     -2,
		WorkProducts: -1,
		DealValue:    -5,
	}
	n := p.Normalize()

	assert.Equal(t, SectorTechnology, n.Sector)
	assert.Equal(t, StageBuyout, n.Stage)
	assert.Equal(t, GeoOther, n.Geography)
	assert.Equal(t, RiskMedium, n.RiskRating)
	assert.InDelta(t, 100, n.Progress, 0.001)
	assert.Equal(t, 0, n.TeamSize)
	assert.Equal(t, 0, n.WorkProducts)
	assert.InDelta(t, 0, n.DealValue, 0.001)

	// Original is untouched.
	assert.Equal(t, Sector("Tech"), p.Sector)
}

func TestProjectConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, Project{}.Confidence(), 0.001)
	c := 0.8
	assert.InDelta(t, 0.8, Project{ConfidenceScore: &c}.Confidence(), 0.001)
}

func TestDealScoreJSONCategoryOrder(t *testing.T) {
	ds := DealScore{
		ProjectID:       "p1",
		Recommendations: []string{"BUY", "Financial: note", "Risk note"},
	}
	data, err := json.Marshal(ds)
	require.NoError(t, err)

	s := string(data)
	fin := strings.Index(s, `"financial"`)
	ops := strings.Index(s, `"operational"`)
	str := strings.Index(s, `"strategic"`)
	risk := strings.Index(s, `"risk"`)
	require.True(t, fin >= 0 && ops >= 0 && str >= 0 && risk >= 0)
	assert.Less(t, fin, ops)
	assert.Less(t, ops, str)
	assert.Less(t, str, risk)

	var back DealScore
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ds.Recommendations, back.Recommendations)
}

func TestParseTrend(t *testing.T) {
	assert.Equal(t, TrendImproving, ParseTrend("Improving"))
	assert.Equal(t, TrendDeclining, ParseTrend("declining"))
	assert.Equal(t, TrendStable, ParseTrend(""))
	assert.Equal(t, TrendStable, ParseTrend("sideways"))
}

func TestModuleTitle(t *testing.T) {
	assert.Equal(t, "Due Diligence", ModuleDueDiligence.Title())
	assert.Equal(t, "custom", Module("custom").Title())
	assert.Len(t, Modules, 7)
}

func TestIndustryBenchmarksModule(t *testing.T) {
	ib := IndustryBenchmarks{Modules: []ModuleBenchmark{
		{ModuleName: ModuleLegal, OverallScore: 55},
	}}
	require.NotNil(t, ib.Module(ModuleLegal))
	assert.InDelta(t, 55, ib.Module(ModuleLegal).OverallScore, 0.001)
	assert.Nil(t, ib.Module(ModuleDueDiligence))
}
