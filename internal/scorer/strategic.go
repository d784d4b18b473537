package scorer

import (
	"fmt"
	"math"

	"github.com/sells-group/dealscore/internal/model"
)

// Strategic factor names and weights.
const (
	FactorSectorPriority     = "Sector Priority"
	FactorGeographicPriority = "Geographic Priority"
	FactorStagePriority      = "Stage Priority"
	FactorDiversification    = "Diversification"

	weightSectorPriority     = 0.35
	weightGeographicPriority = 0.25
	weightStagePriority      = 0.25
	weightDiversification    = 0.15
)

func (s *Scorer) strategicFactors(p model.Project) []model.ScoringFactor {
	sp := s.tables.sector(p.Sector).Priority
	gp := s.tables.geography(p.Geography).Priority
	tp := s.tables.stage(p.Stage).Priority

	return []model.ScoringFactor{
		factor(FactorSectorPriority, sp, weightSectorPriority, impactFor(sp),
			fmt.Sprintf("%s sector priority %.2f", p.Sector, sp)),
		factor(FactorGeographicPriority, gp, weightGeographicPriority, impactFor(gp),
			fmt.Sprintf("%s geographic priority %.2f", p.Geography, gp)),
		factor(FactorStagePriority, tp, weightStagePriority, impactFor(tp),
			fmt.Sprintf("%s stage priority %.2f", p.Stage, tp)),
		s.scoreDiversification(p),
	}
}

// scoreDiversification rewards exposure to underweight sectors and non-core regions.
func (s *Scorer) scoreDiversification(p model.Project) model.ScoringFactor {
	v := 0.5
	under := s.tables.isUnderweight(p.Sector)
	nonCore := s.tables.isNonCore(p.Geography)
	if under {
		v += 0.2
	}
	if nonCore {
		v += 0.2
	}
	if under && nonCore {
		v += 0.1
	}
	v = math.Min(v, 1)

	desc := "No diversification benefit"
	switch {
	case under && nonCore:
		desc = "Underweight sector in a non-core geography"
	case under:
		desc = "Adds exposure to an underweight sector"
	case nonCore:
		desc = "Adds exposure to a non-core geography"
	}
	return factor(FactorDiversification, v, weightDiversification, impactFor(v), desc)
}
