package scorer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/dealscore/internal/model"
)

// Risk factor names and weights. Higher values mean lower risk.
const (
	FactorRiskRating    = "Risk Rating"
	FactorSectorRisk    = "Sector Risk"
	FactorGeographyRisk = "Geographic Risk"
	FactorExecutionRisk = "Execution Risk"

	weightRiskRating    = 0.35
	weightSectorRisk    = 0.25
	weightGeographyRisk = 0.20
	weightExecutionRisk = 0.20
)

func (s *Scorer) riskFactors(p model.Project, now time.Time) []model.ScoringFactor {
	rr := s.tables.RiskRatingScores[p.RiskRating]
	sr := s.tables.sector(p.Sector).RiskScore
	gr := s.tables.geography(p.Geography).RiskScore

	return []model.ScoringFactor{
		factor(FactorRiskRating, rr, weightRiskRating, impactFor(rr),
			fmt.Sprintf("Risk rated %s", p.RiskRating)),
		factor(FactorSectorRisk, sr, weightSectorRisk, impactFor(sr),
			fmt.Sprintf("%s sector risk profile %.2f", p.Sector, sr)),
		factor(FactorGeographyRisk, gr, weightGeographyRisk, impactFor(gr),
			fmt.Sprintf("%s geographic risk profile %.2f", p.Geography, gr)),
		scoreExecutionRisk(scheduleFor(p, now), teamRatio(p, s.optimalTeamSize(p))),
	}
}

// scoreExecutionRisk starts at 1.0 and subtracts penalties for schedule and
// staffing shortfalls. The result is bounded to [0.1, 1].
func scoreExecutionRisk(sched schedule, ratio float64) model.ScoringFactor {
	v := 1.0
	var notes []string

	switch {
	case sched.overdue():
		v -= 0.5
		notes = append(notes, "deadline passed with work outstanding")
	case sched.burn > 2:
		v -= 0.3
		notes = append(notes, "aggressive burn rate")
	case sched.burn > 1:
		v -= 0.15
		notes = append(notes, "elevated burn rate")
	}

	switch {
	case ratio < 0.5:
		v -= 0.3
		notes = append(notes, "severely understaffed")
	case ratio < 0.8:
		v -= 0.15
		notes = append(notes, "understaffed")
	}

	v = clamp(v, 0.1, 1)
	desc := "No execution concerns"
	if len(notes) > 0 {
		desc = "Execution concerns: " + strings.Join(notes, ", ")
	}
	return factor(FactorExecutionRisk, v, weightExecutionRisk, impactFor(v), desc)
}
