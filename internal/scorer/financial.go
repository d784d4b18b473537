package scorer

import (
	"fmt"

	"github.com/sells-group/dealscore/internal/model"
)

// Financial factor names and weights.
const (
	FactorDealSize          = "Deal Size"
	FactorValuationMultiple = "Valuation Multiple"
	FactorExpectedIRR       = "Expected IRR"
	FactorDealConfidence    = "Deal Confidence"

	weightDealSize          = 0.30
	weightValuationMultiple = 0.25
	weightExpectedIRR       = 0.25
	weightDealConfidence    = 0.20

	// maxExpectedIRR maps to a factor value of 1.0.
	maxExpectedIRR = 0.30
)

func (s *Scorer) financialFactors(p model.Project) []model.ScoringFactor {
	sector := s.tables.sector(p.Sector)
	stage := s.tables.stage(p.Stage)
	return []model.ScoringFactor{
		scoreDealSize(p.DealValue, s.cfg.MinDealSize, s.cfg.MaxDealSize),
		scoreValuation(p, sector, stage, s.cfg.MinDealSize, s.cfg.MaxDealSize),
		scoreExpectedIRR(p, sector, s.tables.IRROffsets[p.RiskRating]),
		scoreDealConfidence(p),
	}
}

// scoreDealSize rewards deals inside the [minSize, maxSize] sweet spot.
func scoreDealSize(value, minSize, maxSize float64) model.ScoringFactor {
	var v float64
	var desc string
	switch {
	case value <= 0:
		v = 0.1
		desc = "Deal value not provided"
	case value < minSize:
		v = 0.3 + 0.7*value/minSize
		desc = fmt.Sprintf("%s is below the %s-%s target range", millions(value), millions(minSize), millions(maxSize))
	case value <= maxSize:
		v = 1.0
		desc = fmt.Sprintf("%s is inside the %s-%s target range", millions(value), millions(minSize), millions(maxSize))
	default:
		v = maxSize / value
		if v < 0.3 {
			v = 0.3
		}
		desc = fmt.Sprintf("%s is above the %s-%s target range", millions(value), millions(minSize), millions(maxSize))
	}
	return factor(FactorDealSize, v, weightDealSize, impactFor(v), desc)
}

// impliedMultiple is the caller-supplied multiple, or the stage baseline
// adjusted by a size premium or discount.
func impliedMultiple(p model.Project, stage StageProfile, minSize, maxSize float64) float64 {
	if p.ValuationMultiple != nil && *p.ValuationMultiple > 0 {
		return *p.ValuationMultiple
	}
	m := stage.BaselineMultiple
	switch {
	case p.DealValue > 0 && p.DealValue < minSize:
		m *= 0.9
	case p.DealValue > maxSize:
		m *= 1.1
	}
	return m
}

// scoreValuation compares the implied multiple against the sector benchmark.
// Cheaper than the sector scores higher.
func scoreValuation(p model.Project, sector SectorProfile, stage StageProfile, minSize, maxSize float64) model.ScoringFactor {
	implied := impliedMultiple(p, stage, minSize, maxSize)
	ratio := 1.0
	if sector.Multiple > 0 {
		ratio = implied / sector.Multiple
	}

	desc := fmt.Sprintf("Implied %.1fx vs sector %.1fx", implied, sector.Multiple)
	switch {
	case ratio < 0.9:
		return factor(FactorValuationMultiple, 0.9, weightValuationMultiple, model.ImpactPositive, desc+": attractive entry valuation")
	case ratio <= 1.2:
		return factor(FactorValuationMultiple, 0.6, weightValuationMultiple, model.ImpactNeutral, desc+": in line with sector")
	default:
		return factor(FactorValuationMultiple, 0.3, weightValuationMultiple, model.ImpactNegative, desc+": premium to sector")
	}
}

// expectedIRR estimates the deal IRR from the sector baseline, the risk
// rating offset and execution progress.
func expectedIRR(p model.Project, sector SectorProfile, riskOffset float64) float64 {
	return sector.IRR + riskOffset + 0.001*(p.Progress-50)
}

func scoreExpectedIRR(p model.Project, sector SectorProfile, riskOffset float64) model.ScoringFactor {
	irr := expectedIRR(p, sector, riskOffset)
	v := clamp(irr/maxExpectedIRR, 0, 1)

	impact := model.ImpactNegative
	switch {
	case irr >= 0.20:
		impact = model.ImpactPositive
	case irr >= 0.15:
		impact = model.ImpactNeutral
	}
	desc := fmt.Sprintf("Expected IRR %.1f%% (sector baseline %.1f%%)", irr*100, sector.IRR*100)
	return factor(FactorExpectedIRR, v, weightExpectedIRR, impact, desc)
}

func scoreDealConfidence(p model.Project) model.ScoringFactor {
	v := clamp(p.Confidence(), 0, 1)
	desc := fmt.Sprintf("Deal team confidence %.2f", v)
	if p.ConfidenceScore == nil {
		desc = "No confidence score provided; assuming 0.50"
	}
	return factor(FactorDealConfidence, v, weightDealConfidence, impactFor(v), desc)
}
