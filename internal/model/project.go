package model

import (
	"strings"
	"time"
)

// Sector is the industry sector of a deal.
type Sector string

const (
	SectorTechnology        Sector = "technology"
	SectorHealthcare        Sector = "healthcare"
	SectorFinancialServices Sector = "financial_services"
	SectorIndustrials       Sector = "industrials"
	SectorConsumer          Sector = "consumer"
	SectorEnergy            Sector = "energy"
	SectorRealEstate        Sector = "real_estate"
	SectorOther             Sector = "other" // fallback for unknown sectors
)

// Sectors lists every sector arm, fallback last.
var Sectors = []Sector{
	SectorTechnology, SectorHealthcare, SectorFinancialServices, SectorIndustrials,
	SectorConsumer, SectorEnergy, SectorRealEstate, SectorOther,
}

var sectorAliases = map[string]Sector{
	"technology":         SectorTechnology,
	"tech":               SectorTechnology,
	"software":           SectorTechnology,
	"healthcare":         SectorHealthcare,
	"health_care":        SectorHealthcare,
	"health":             SectorHealthcare,
	"financial_services": SectorFinancialServices,
	"financial":          SectorFinancialServices,
	"financials":         SectorFinancialServices,
	"fintech":            SectorFinancialServices,
	"industrials":        SectorIndustrials,
	"industrial":         SectorIndustrials,
	"manufacturing":      SectorIndustrials,
	"consumer":           SectorConsumer,
	"retail":             SectorConsumer,
	"energy":             SectorEnergy,
	"real_estate":        SectorRealEstate,
	"realestate":         SectorRealEstate,
	"property":           SectorRealEstate,
	"other":              SectorOther,
}

// ParseSector maps free-form input to a Sector. Unknown values map to SectorOther.
func ParseSector(s string) Sector {
	if v, ok := sectorAliases[normalizeKey(s)]; ok {
		return v
	}
	return SectorOther
}

// Known reports whether s is one of the named (non-fallback) sectors.
func (s Sector) Known() bool {
	return s != SectorOther && sectorAliases[string(s)] == s
}

// Stage is the investment stage of a deal.
type Stage string

const (
	StageEarly      Stage = "early"
	StageGrowth     Stage = "growth"
	StageBuyout     Stage = "buyout"
	StageMature     Stage = "mature"
	StageDistressed Stage = "distressed"
	StageOther      Stage = "other"
)

// Stages lists every stage arm, fallback last.
var Stages = []Stage{StageEarly, StageGrowth, StageBuyout, StageMature, StageDistressed, StageOther}

var stageAliases = map[string]Stage{
	"early":       StageEarly,
	"early_stage": StageEarly,
	"venture":     StageEarly,
	"seed":        StageEarly,
	"growth":      StageGrowth,
	"expansion":   StageGrowth,
	"buyout":      StageBuyout,
	"lbo":         StageBuyout,
	"mature":      StageMature,
	"distressed":  StageDistressed,
	"turnaround":  StageDistressed,
	"other":       StageOther,
}

// ParseStage maps free-form input to a Stage. Unknown values map to StageOther.
func ParseStage(s string) Stage {
	if v, ok := stageAliases[normalizeKey(s)]; ok {
		return v
	}
	return StageOther
}

// Known reports whether s is one of the named (non-fallback) stages.
func (s Stage) Known() bool {
	return s != StageOther && stageAliases[string(s)] == s
}

// Geography is the primary region of a deal.
type Geography string

const (
	GeoNorthAmerica     Geography = "north_america"
	GeoEurope           Geography = "europe"
	GeoAsiaPacific      Geography = "asia_pacific"
	GeoLatinAmerica     Geography = "latin_america"
	GeoMiddleEastAfrica Geography = "middle_east_africa"
	GeoOther            Geography = "other"
)

// Geographies lists every geography arm, fallback last.
var Geographies = []Geography{
	GeoNorthAmerica, GeoEurope, GeoAsiaPacific, GeoLatinAmerica, GeoMiddleEastAfrica, GeoOther,
}

var geoAliases = map[string]Geography{
	"north_america":      GeoNorthAmerica,
	"northamerica":       GeoNorthAmerica,
	"na":                 GeoNorthAmerica,
	"us":                 GeoNorthAmerica,
	"usa":                GeoNorthAmerica,
	"united_states":      GeoNorthAmerica,
	"canada":             GeoNorthAmerica,
	"europe":             GeoEurope,
	"eu":                 GeoEurope,
	"emea":               GeoEurope,
	"uk":                 GeoEurope,
	"asia_pacific":       GeoAsiaPacific,
	"asia":               GeoAsiaPacific,
	"apac":               GeoAsiaPacific,
	"latin_america":      GeoLatinAmerica,
	"latam":              GeoLatinAmerica,
	"south_america":      GeoLatinAmerica,
	"middle_east_africa": GeoMiddleEastAfrica,
	"middle_east":        GeoMiddleEastAfrica,
	"mea":                GeoMiddleEastAfrica,
	"africa":             GeoMiddleEastAfrica,
	"other":              GeoOther,
}

// ParseGeography maps free-form input to a Geography. Unknown values map to GeoOther.
func ParseGeography(s string) Geography {
	if v, ok := geoAliases[normalizeKey(s)]; ok {
		return v
	}
	return GeoOther
}

// Known reports whether g is one of the named (non-fallback) geographies.
func (g Geography) Known() bool {
	return g != GeoOther && geoAliases[string(g)] == g
}

// RiskRating is the qualitative risk tag assigned to a deal.
type RiskRating string

const (
	RiskLow      RiskRating = "low"
	RiskMedium   RiskRating = "medium"
	RiskHigh     RiskRating = "high"
	RiskCritical RiskRating = "critical"
)

// RiskRatings lists every rating from safest to riskiest.
var RiskRatings = []RiskRating{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// ParseRiskRating maps input to a RiskRating. Missing or unknown values map to RiskMedium.
func ParseRiskRating(s string) RiskRating {
	switch normalizeKey(s) {
	case "low":
		return RiskLow
	case "high":
		return RiskHigh
	case "critical", "severe":
		return RiskCritical
	default:
		return RiskMedium
	}
}

// Elevated reports whether the rating is high or critical.
func (r RiskRating) Elevated() bool {
	return r == RiskHigh || r == RiskCritical
}

func normalizeKey(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ", "&", " ", "/", " ").Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), "_")
}

// Project is the raw attribute record of a deal handed to the scorer.
type Project struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	DealValue         float64    `json:"deal_value" yaml:"deal_value" validate:"gte=0"`
	Sector            Sector     `json:"sector" yaml:"sector"`
	Stage             Stage      `json:"stage" yaml:"stage"`
	Geography         Geography  `json:"geography" yaml:"geography"`
	RiskRating        RiskRating `json:"risk_rating" yaml:"risk_rating"`
	Progress          float64    `json:"progress" yaml:"progress" validate:"gte=0,lte=100"`
	TeamSize          int        `json:"team_size" yaml:"team_size" validate:"gte=0"`
	WorkProducts      int        `json:"work_products" yaml:"work_products" validate:"gte=0"`
	Deadline          *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	ConfidenceScore   *float64   `json:"confidence_score,omitempty" yaml:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	ValuationMultiple *float64   `json:"valuation_multiple,omitempty" yaml:"valuation_multiple,omitempty" validate:"omitempty,gt=0"`
	SalesforceID      string     `json:"salesforce_id,omitempty" yaml:"salesforce_id,omitempty"`
}

// Normalize returns a copy of p with every enumerated field mapped onto its
// total match and numeric fields clamped to their documented ranges.
func (p Project) Normalize() Project {
	p.Sector = ParseSector(string(p.Sector))
	p.Stage = ParseStage(string(p.Stage))
	p.Geography = ParseGeography(string(p.Geography))
	p.RiskRating = ParseRiskRating(string(p.RiskRating))
	if p.Progress < 0 {
		p.Progress = 0
	}
	if p.Progress > 100 {
		p.Progress = 100
	}
	if p.TeamSize < 0 {
		p.TeamSize = 0
	}
	if p.WorkProducts < 0 {
		p.WorkProducts = 0
	}
	if p.DealValue < 0 {
		p.DealValue = 0
	}
	return p
}

// Confidence returns the caller-supplied confidence score, or 0.5 when absent.
func (p Project) Confidence() float64 {
	if p.ConfidenceScore == nil {
		return 0.5
	}
	return *p.ConfidenceScore
}
