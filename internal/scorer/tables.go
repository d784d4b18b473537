package scorer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dealscore/internal/model"
)

// SectorProfile holds the static reference values for one sector.
type SectorProfile struct {
	IRR       float64 `yaml:"irr" json:"irr"`             // baseline expected IRR, 0.25 = 25%
	Multiple  float64 `yaml:"multiple" json:"multiple"`   // benchmark EV/EBITDA multiple
	Priority  float64 `yaml:"priority" json:"priority"`   // strategic priority, 0.0-1.0
	RiskScore float64 `yaml:"risk_score" json:"risk_score"` // higher = safer, 0.0-1.0
}

// GeographyProfile holds the static reference values for one geography.
type GeographyProfile struct {
	Priority  float64 `yaml:"priority" json:"priority"`
	RiskScore float64 `yaml:"risk_score" json:"risk_score"`
}

// StageProfile holds the static reference values for one investment stage.
type StageProfile struct {
	BaselineMultiple  float64 `yaml:"baseline_multiple" json:"baseline_multiple"`
	Priority          float64 `yaml:"priority" json:"priority"`
	ExpectedProgress  float64 `yaml:"expected_progress" json:"expected_progress"` // 0.0-1.0
	WorkProductTarget int     `yaml:"work_product_target" json:"work_product_target"`
}

// Tables is the static lookup configuration used by the factor evaluators.
// Every enum arm, including the fallback arm, must be present.
type Tables struct {
	Sectors     map[model.Sector]SectorProfile       `yaml:"sectors" json:"sectors"`
	Geographies map[model.Geography]GeographyProfile `yaml:"geographies" json:"geographies"`
	Stages      map[model.Stage]StageProfile         `yaml:"stages" json:"stages"`

	RiskRatingScores map[model.RiskRating]float64 `yaml:"risk_rating_scores" json:"risk_rating_scores"`
	IRROffsets       map[model.RiskRating]float64 `yaml:"irr_offsets" json:"irr_offsets"`
	QuickScoreRisk   map[model.RiskRating]float64 `yaml:"quick_score_risk" json:"quick_score_risk"`

	SpecializedSectors []model.Sector    `yaml:"specialized_sectors" json:"specialized_sectors"`
	UnderweightSectors []model.Sector    `yaml:"underweight_sectors" json:"underweight_sectors"`
	NonCoreGeographies []model.Geography `yaml:"non_core_geographies" json:"non_core_geographies"`
}

// DefaultTables returns the built-in reference tables.
func DefaultTables() Tables {
	return Tables{
		Sectors: map[model.Sector]SectorProfile{
			model.SectorTechnology:        {IRR: 0.25, Multiple: 15, Priority: 0.90, RiskScore: 0.60},
			model.SectorHealthcare:        {IRR: 0.22, Multiple: 13, Priority: 0.85, RiskScore: 0.65},
			model.SectorFinancialServices: {IRR: 0.18, Multiple: 11, Priority: 0.70, RiskScore: 0.70},
			model.SectorIndustrials:       {IRR: 0.17, Multiple: 9, Priority: 0.60, RiskScore: 0.75},
			model.SectorConsumer:          {IRR: 0.19, Multiple: 10, Priority: 0.65, RiskScore: 0.70},
			model.SectorEnergy:            {IRR: 0.20, Multiple: 7, Priority: 0.55, RiskScore: 0.50},
			model.SectorRealEstate:        {IRR: 0.15, Multiple: 12, Priority: 0.50, RiskScore: 0.65},
			model.SectorOther:             {IRR: 0.18, Multiple: 10, Priority: 0.50, RiskScore: 0.60},
		},
		Geographies: map[model.Geography]GeographyProfile{
			model.GeoNorthAmerica:     {Priority: 0.90, RiskScore: 0.85},
			model.GeoEurope:           {Priority: 0.80, RiskScore: 0.80},
			model.GeoAsiaPacific:      {Priority: 0.70, RiskScore: 0.65},
			model.GeoLatinAmerica:     {Priority: 0.55, RiskScore: 0.50},
			model.GeoMiddleEastAfrica: {Priority: 0.50, RiskScore: 0.45},
			model.GeoOther:            {Priority: 0.50, RiskScore: 0.60},
		},
		Stages: map[model.Stage]StageProfile{
			model.StageEarly:      {BaselineMultiple: 18, Priority: 0.60, ExpectedProgress: 0.40, WorkProductTarget: 5},
			model.StageGrowth:     {BaselineMultiple: 14, Priority: 0.90, ExpectedProgress: 0.65, WorkProductTarget: 8},
			model.StageBuyout:     {BaselineMultiple: 10, Priority: 0.85, ExpectedProgress: 0.75, WorkProductTarget: 12},
			model.StageMature:     {BaselineMultiple: 8, Priority: 0.70, ExpectedProgress: 0.85, WorkProductTarget: 10},
			model.StageDistressed: {BaselineMultiple: 5, Priority: 0.40, ExpectedProgress: 0.50, WorkProductTarget: 10},
			model.StageOther:      {BaselineMultiple: 10, Priority: 0.50, ExpectedProgress: 0.60, WorkProductTarget: 8},
		},
		RiskRatingScores: map[model.RiskRating]float64{
			model.RiskLow:      0.90,
			model.RiskMedium:   0.70,
			model.RiskHigh:     0.40,
			model.RiskCritical: 0.15,
		},
		IRROffsets: map[model.RiskRating]float64{
			model.RiskLow:      0.02,
			model.RiskMedium:   0,
			model.RiskHigh:     -0.03,
			model.RiskCritical: -0.08,
		},
		QuickScoreRisk: map[model.RiskRating]float64{
			model.RiskLow:      10,
			model.RiskMedium:   0,
			model.RiskHigh:     -10,
			model.RiskCritical: -20,
		},
		SpecializedSectors: []model.Sector{model.SectorTechnology, model.SectorHealthcare, model.SectorEnergy},
		UnderweightSectors: []model.Sector{model.SectorHealthcare, model.SectorEnergy, model.SectorIndustrials},
		NonCoreGeographies: []model.Geography{model.GeoEurope, model.GeoAsiaPacific, model.GeoLatinAmerica},
	}
}

// Validate checks that every enum arm is covered and values are in range.
func (t Tables) Validate() error {
	var errs []string

	for _, s := range model.Sectors {
		p, ok := t.Sectors[s]
		if !ok {
			errs = append(errs, fmt.Sprintf("sectors: missing %s", s))
			continue
		}
		if p.Multiple <= 0 {
			errs = append(errs, fmt.Sprintf("sectors.%s.multiple must be > 0", s))
		}
		if !unit(p.Priority) || !unit(p.RiskScore) {
			errs = append(errs, fmt.Sprintf("sectors.%s: priority and risk_score must be in [0, 1]", s))
		}
	}
	for _, g := range model.Geographies {
		p, ok := t.Geographies[g]
		if !ok {
			errs = append(errs, fmt.Sprintf("geographies: missing %s", g))
			continue
		}
		if !unit(p.Priority) || !unit(p.RiskScore) {
			errs = append(errs, fmt.Sprintf("geographies.%s: priority and risk_score must be in [0, 1]", g))
		}
	}
	for _, s := range model.Stages {
		p, ok := t.Stages[s]
		if !ok {
			errs = append(errs, fmt.Sprintf("stages: missing %s", s))
			continue
		}
		if p.BaselineMultiple <= 0 {
			errs = append(errs, fmt.Sprintf("stages.%s.baseline_multiple must be > 0", s))
		}
		if p.ExpectedProgress <= 0 || p.ExpectedProgress > 1 {
			errs = append(errs, fmt.Sprintf("stages.%s.expected_progress must be in (0, 1]", s))
		}
		if !unit(p.Priority) {
			errs = append(errs, fmt.Sprintf("stages.%s.priority must be in [0, 1]", s))
		}
		if p.WorkProductTarget < 0 {
			errs = append(errs, fmt.Sprintf("stages.%s.work_product_target must be >= 0", s))
		}
	}
	for _, r := range model.RiskRatings {
		if v, ok := t.RiskRatingScores[r]; !ok || !unit(v) {
			errs = append(errs, fmt.Sprintf("risk_rating_scores.%s must be set and in [0, 1]", r))
		}
		if _, ok := t.IRROffsets[r]; !ok {
			errs = append(errs, fmt.Sprintf("irr_offsets: missing %s", r))
		}
		if _, ok := t.QuickScoreRisk[r]; !ok {
			errs = append(errs, fmt.Sprintf("quick_score_risk: missing %s", r))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: tables validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadTables reads a YAML overlay from path on top of DefaultTables.
// An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Tables{}, eris.Wrapf(err, "scorer: open tables %s", path)
	}
	defer f.Close() //nolint:errcheck
	return DecodeTables(f)
}

// tablesOverlay mirrors Tables with free-form keys so that aliases are accepted.
type tablesOverlay struct {
	Sectors            map[string]SectorProfile    `yaml:"sectors"`
	Geographies        map[string]GeographyProfile `yaml:"geographies"`
	Stages             map[string]StageProfile     `yaml:"stages"`
	RiskRatingScores   map[string]float64          `yaml:"risk_rating_scores"`
	IRROffsets         map[string]float64          `yaml:"irr_offsets"`
	QuickScoreRisk     map[string]float64          `yaml:"quick_score_risk"`
	SpecializedSectors []string                    `yaml:"specialized_sectors"`
	UnderweightSectors []string                    `yaml:"underweight_sectors"`
	NonCoreGeographies []string                    `yaml:"non_core_geographies"`
}

// DecodeTables decodes a YAML overlay and merges it onto DefaultTables. Each
// listed entry replaces the whole profile for that key; unlisted keys keep
// their defaults. Keys that do not name a known arm are rejected.
func DecodeTables(r io.Reader) (Tables, error) {
	var ov tablesOverlay
	if err := yaml.NewDecoder(r).Decode(&ov); err != nil && err != io.EOF {
		return Tables{}, eris.Wrap(err, "scorer: decode tables")
	}

	t := DefaultTables()
	var errs []string

	for k, v := range ov.Sectors {
		s := model.ParseSector(k)
		if s == model.SectorOther && !isOtherKey(k) {
			errs = append(errs, fmt.Sprintf("unknown sector %q", k))
			continue
		}
		t.Sectors[s] = v
	}
	for k, v := range ov.Geographies {
		g := model.ParseGeography(k)
		if g == model.GeoOther && !isOtherKey(k) {
			errs = append(errs, fmt.Sprintf("unknown geography %q", k))
			continue
		}
		t.Geographies[g] = v
	}
	for k, v := range ov.Stages {
		s := model.ParseStage(k)
		if s == model.StageOther && !isOtherKey(k) {
			errs = append(errs, fmt.Sprintf("unknown stage %q", k))
			continue
		}
		t.Stages[s] = v
	}
	mergeRisk := func(dst map[model.RiskRating]float64, src map[string]float64, name string) {
		for k, v := range src {
			r := model.ParseRiskRating(k)
			if string(r) != strings.ToLower(strings.TrimSpace(k)) {
				errs = append(errs, fmt.Sprintf("%s: unknown risk rating %q", name, k))
				continue
			}
			dst[r] = v
		}
	}
	mergeRisk(t.RiskRatingScores, ov.RiskRatingScores, "risk_rating_scores")
	mergeRisk(t.IRROffsets, ov.IRROffsets, "irr_offsets")
	mergeRisk(t.QuickScoreRisk, ov.QuickScoreRisk, "quick_score_risk")

	if ov.SpecializedSectors != nil {
		t.SpecializedSectors = parseSectorList(ov.SpecializedSectors)
	}
	if ov.UnderweightSectors != nil {
		t.UnderweightSectors = parseSectorList(ov.UnderweightSectors)
	}
	if ov.NonCoreGeographies != nil {
		t.NonCoreGeographies = t.NonCoreGeographies[:0:0]
		for _, g := range ov.NonCoreGeographies {
			t.NonCoreGeographies = append(t.NonCoreGeographies, model.ParseGeography(g))
		}
	}

	if len(errs) > 0 {
		return Tables{}, eris.Errorf("scorer: tables overlay: %s", strings.Join(errs, "; "))
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func parseSectorList(in []string) []model.Sector {
	out := make([]model.Sector, 0, len(in))
	for _, s := range in {
		out = append(out, model.ParseSector(s))
	}
	return out
}

// sector returns the profile for s, falling back to the "other" arm.
func (t Tables) sector(s model.Sector) SectorProfile {
	if p, ok := t.Sectors[s]; ok {
		return p
	}
	return t.Sectors[model.SectorOther]
}

// geography returns the profile for g, falling back to the "other" arm.
func (t Tables) geography(g model.Geography) GeographyProfile {
	if p, ok := t.Geographies[g]; ok {
		return p
	}
	return t.Geographies[model.GeoOther]
}

// stage returns the profile for s, falling back to the "other" arm.
func (t Tables) stage(s model.Stage) StageProfile {
	if p, ok := t.Stages[s]; ok {
		return p
	}
	return t.Stages[model.StageOther]
}

func (t Tables) isSpecialized(s model.Sector) bool {
	for _, v := range t.SpecializedSectors {
		if v == s {
			return true
		}
	}
	return false
}

func (t Tables) isUnderweight(s model.Sector) bool {
	for _, v := range t.UnderweightSectors {
		if v == s {
			return true
		}
	}
	return false
}

func (t Tables) isNonCore(g model.Geography) bool {
	for _, v := range t.NonCoreGeographies {
		if v == g {
			return true
		}
	}
	return false
}

func isOtherKey(k string) bool {
	return strings.EqualFold(strings.TrimSpace(k), "other")
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
