package scorer

import (
	"fmt"
	"math"
	"time"

	"github.com/sells-group/dealscore/internal/model"
)

// Operational factor names and weights.
const (
	FactorProgressVsPlan      = "Progress vs Plan"
	FactorTeamCapacity        = "Team Capacity"
	FactorWorkProductCoverage = "Work Product Coverage"
	FactorDeadlinePressure    = "Deadline Pressure"

	weightProgressVsPlan      = 0.30
	weightTeamCapacity        = 0.25
	weightWorkProductCoverage = 0.20
	weightDeadlinePressure    = 0.25

	baseTeamSize = 3
	// maxProgressRatio caps how far ahead of plan a deal is rewarded.
	maxProgressRatio = 1.2
)

func (s *Scorer) operationalFactors(p model.Project, now time.Time) []model.ScoringFactor {
	stage := s.tables.stage(p.Stage)
	return []model.ScoringFactor{
		scoreProgress(p, stage),
		scoreTeamCapacity(p, s.optimalTeamSize(p)),
		scoreWorkProducts(p, stage),
		scoreDeadline(scheduleFor(p, now)),
	}
}

func scoreProgress(p model.Project, stage StageProfile) model.ScoringFactor {
	expected := stage.ExpectedProgress * 100
	ratio := maxProgressRatio
	if expected > 0 {
		ratio = math.Min(p.Progress/expected, maxProgressRatio)
	}

	impact := model.ImpactNegative
	switch {
	case ratio >= 1:
		impact = model.ImpactPositive
	case ratio >= 0.75:
		impact = model.ImpactNeutral
	}
	desc := fmt.Sprintf("%.0f%% complete vs %.0f%% expected for %s stage", p.Progress, expected, p.Stage)
	return factor(FactorProgressVsPlan, ratio/maxProgressRatio, weightProgressVsPlan, impact, desc)
}

// optimalTeamSize grows with deal size, sector specialization and risk.
func (s *Scorer) optimalTeamSize(p model.Project) int {
	n := baseTeamSize
	if p.DealValue >= s.cfg.MinDealSize {
		n++
	}
	if p.DealValue > s.cfg.MaxDealSize {
		n++
	}
	if s.tables.isSpecialized(p.Sector) {
		n++
	}
	if p.RiskRating.Elevated() {
		n++
	}
	return n
}

func teamRatio(p model.Project, optimal int) float64 {
	if optimal <= 0 {
		return 1
	}
	return float64(p.TeamSize) / float64(optimal)
}

func scoreTeamCapacity(p model.Project, optimal int) model.ScoringFactor {
	r := teamRatio(p, optimal)
	v := r
	if r > 1 {
		// Overstaffing is penalized gently.
		v = math.Max(0.6, 1-0.5*(r-1))
	}
	desc := fmt.Sprintf("Team of %d vs optimal %d", p.TeamSize, optimal)
	return factor(FactorTeamCapacity, v, weightTeamCapacity, impactFor(v), desc)
}

// workProductTarget scales the stage target by progress.
func workProductTarget(p model.Project, stage StageProfile) int {
	return int(math.Ceil(float64(stage.WorkProductTarget) * p.Progress / 100))
}

func scoreWorkProducts(p model.Project, stage StageProfile) model.ScoringFactor {
	target := workProductTarget(p, stage)
	v := 1.0
	if target > 0 {
		v = math.Min(float64(p.WorkProducts)/float64(target), 1)
	}
	desc := fmt.Sprintf("%d work products vs %d expected at this progress", p.WorkProducts, target)
	return factor(FactorWorkProductCoverage, v, weightWorkProductCoverage, impactFor(v), desc)
}

// schedule summarizes deadline state relative to a point in time.
type schedule struct {
	hasDeadline bool
	daysLeft    float64
	remaining   float64 // percentage points of work left
	burn        float64 // percentage points required per remaining day
}

func (s schedule) overdue() bool {
	return s.hasDeadline && s.daysLeft <= 0 && s.remaining > 0
}

func scheduleFor(p model.Project, now time.Time) schedule {
	if p.Deadline == nil {
		return schedule{}
	}
	s := schedule{
		hasDeadline: true,
		daysLeft:    p.Deadline.Sub(now).Hours() / 24,
		remaining:   100 - p.Progress,
	}
	if s.daysLeft > 0 {
		s.burn = s.remaining / s.daysLeft
	}
	return s
}

func scoreDeadline(s schedule) model.ScoringFactor {
	if !s.hasDeadline {
		return factor(FactorDeadlinePressure, 0.7, weightDeadlinePressure, model.ImpactNeutral, "No deadline set")
	}
	if s.daysLeft <= 0 {
		if s.remaining <= 0 {
			return factor(FactorDeadlinePressure, 1.0, weightDeadlinePressure, model.ImpactPositive, "Completed by deadline")
		}
		desc := fmt.Sprintf("Deadline passed %.0f days ago with %.0f%% remaining", -s.daysLeft, s.remaining)
		return factor(FactorDeadlinePressure, 0.1, weightDeadlinePressure, model.ImpactNegative, desc)
	}

	var v float64
	switch {
	case s.burn <= 0.5:
		v = 1.0
	case s.burn <= 1:
		v = 0.8
	case s.burn <= 2:
		v = 0.5
	case s.burn <= 4:
		v = 0.3
	default:
		v = 0.1
	}
	desc := fmt.Sprintf("%.0f%% remaining over %.0f days (%.2f pts/day)", s.remaining, s.daysLeft, s.burn)
	return factor(FactorDeadlinePressure, v, weightDeadlinePressure, impactFor(v), desc)
}
