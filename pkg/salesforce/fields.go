package salesforce

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// Score keys that can be mapped onto Opportunity fields.
const (
	KeyOverallScore      = "overall_score"
	KeyRiskAdjustedScore = "risk_adjusted_score"
	KeyConfidence        = "confidence"
	KeyRecommendation    = "recommendation"
	KeyFinancialScore    = "financial_score"
	KeyOperationalScore  = "operational_score"
	KeyStrategicScore    = "strategic_score"
	KeyRiskScore         = "risk_score"
	KeyLastScored        = "last_scored"
)

// maxTextField is the length of a standard Salesforce text field.
const maxTextField = 255

// DefaultScoreFields maps score keys to the default Opportunity custom fields.
func DefaultScoreFields() map[string]string {
	return map[string]string{
		KeyOverallScore:      "Deal_Score__c",
		KeyRiskAdjustedScore: "Risk_Adjusted_Score__c",
		KeyConfidence:        "Score_Confidence__c",
		KeyRecommendation:    "Score_Recommendation__c",
		KeyLastScored:        "Last_Scored__c",
	}
}

// ScoreFields renders a deal score into Opportunity field values using
// mapping (score key to field API name). Unknown keys are ignored.
func ScoreFields(score *model.DealScore, mapping map[string]string) map[string]any {
	if score == nil {
		return nil
	}
	values := map[string]any{
		KeyOverallScore:      score.OverallScore,
		KeyRiskAdjustedScore: score.RiskAdjustedScore,
		KeyConfidence:        score.Confidence,
		KeyFinancialScore:    score.Categories.Financial.Score,
		KeyOperationalScore:  score.Categories.Operational.Score,
		KeyStrategicScore:    score.Categories.Strategic.Score,
		KeyRiskScore:         score.Categories.Risk.Score,
		KeyLastScored:        score.LastUpdated.UTC().Format(time.RFC3339),
	}
	if len(score.Recommendations) > 0 {
		values[KeyRecommendation] = truncate(score.Recommendations[0], maxTextField)
	}

	fields := make(map[string]any, len(mapping))
	for key, field := range mapping {
		if v, ok := values[key]; ok && field != "" {
			fields[field] = v
		}
	}
	return fields
}

// ValidateFields checks that every field exists on sObject and is updateable.
func ValidateFields(ctx context.Context, c Client, sObject string, fields []string) error {
	desc, err := c.DescribeSObject(ctx, sObject)
	if err != nil {
		return eris.Wrapf(err, "sf: validate %s fields", sObject)
	}
	updateable := make(map[string]bool, len(desc.Fields))
	for _, f := range desc.Fields {
		updateable[strings.ToLower(f.Name)] = f.Updateable
	}

	var problems []string
	for _, name := range fields {
		ok, exists := updateable[strings.ToLower(name)]
		switch {
		case !exists:
			problems = append(problems, name+" does not exist")
		case !ok:
			problems = append(problems, name+" is not updateable")
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return eris.Errorf("sf: %s fields invalid: %s", sObject, strings.Join(problems, "; "))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
