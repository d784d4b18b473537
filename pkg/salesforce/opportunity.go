package salesforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// SObjectOpportunity is the Salesforce object deals are synced with.
const SObjectOpportunity = "Opportunity"

// Opportunity represents a Salesforce Opportunity carrying deal attributes
// in custom fields.
type Opportunity struct {
	ID                string  `json:"Id" salesforce:"Id"`
	Name              string  `json:"Name" salesforce:"Name"`
	Amount            float64 `json:"Amount" salesforce:"Amount"`
	StageName         string  `json:"StageName" salesforce:"StageName"`
	Probability       float64 `json:"Probability" salesforce:"Probability"`
	CloseDate         string  `json:"CloseDate" salesforce:"CloseDate"`
	IsClosed          bool    `json:"IsClosed" salesforce:"IsClosed"`
	Sector            string  `json:"Sector__c" salesforce:"Sector__c"`
	DealStage         string  `json:"Deal_Stage__c" salesforce:"Deal_Stage__c"`
	Region            string  `json:"Region__c" salesforce:"Region__c"`
	RiskRating        string  `json:"Risk_Rating__c" salesforce:"Risk_Rating__c"`
	Progress          float64 `json:"Progress__c" salesforce:"Progress__c"`
	TeamSize          float64 `json:"Team_Size__c" salesforce:"Team_Size__c"`
	WorkProducts      float64 `json:"Work_Products__c" salesforce:"Work_Products__c"`
	ValuationMultiple float64 `json:"Valuation_Multiple__c" salesforce:"Valuation_Multiple__c"`
}

// opportunityFields are the SOQL fields selected for Opportunity queries.
var opportunityFields = []string{
	"Id", "Name", "Amount", "StageName", "Probability", "CloseDate", "IsClosed",
	"Sector__c", "Deal_Stage__c", "Region__c", "Risk_Rating__c",
	"Progress__c", "Team_Size__c", "Work_Products__c", "Valuation_Multiple__c",
}

// FindOpenOpportunities returns open Opportunities ordered by close date.
// A limit of zero or less selects all of them.
func FindOpenOpportunities(ctx context.Context, c Client, limit int) ([]Opportunity, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE IsClosed = false ORDER BY CloseDate ASC",
		strings.Join(opportunityFields, ", "),
	)
	if limit > 0 {
		soql += fmt.Sprintf(" LIMIT %d", limit)
	}

	var opps []Opportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, "sf: find open opportunities")
	}
	return opps, nil
}

// FindOpportunityByID queries Salesforce for an Opportunity by its ID.
// Returns nil if no opportunity is found.
func FindOpportunityByID(ctx context.Context, c Client, id string) (*Opportunity, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE Id = '%s' LIMIT 1",
		strings.Join(opportunityFields, ", "),
		escapeSoql(id),
	)

	var opps []Opportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find opportunity by id %s", id))
	}
	if len(opps) == 0 {
		return nil, nil
	}
	return &opps[0], nil
}

// Project converts the Opportunity into a scorer input. Probability (0-100)
// becomes the confidence score; an unparseable CloseDate leaves the deadline
// unset.
func (o Opportunity) Project() model.Project {
	p := model.Project{
		ID:           o.ID,
		Name:         o.Name,
		DealValue:    o.Amount,
		Sector:       model.ParseSector(o.Sector),
		Stage:        model.ParseStage(o.DealStage),
		Geography:    model.ParseGeography(o.Region),
		RiskRating:   model.ParseRiskRating(o.RiskRating),
		Progress:     o.Progress,
		TeamSize:     int(o.TeamSize),
		WorkProducts: int(o.WorkProducts),
		SalesforceID: o.ID,
	}
	if d, err := time.Parse(time.DateOnly, o.CloseDate); err == nil {
		p.Deadline = &d
	}
	if o.Probability > 0 {
		conf := o.Probability / 100
		if conf > 1 {
			conf = 1
		}
		p.ConfidenceScore = &conf
	}
	if o.ValuationMultiple > 0 {
		vm := o.ValuationMultiple
		p.ValuationMultiple = &vm
	}
	return p
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
