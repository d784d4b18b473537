package salesforce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscore/internal/model"
)

func TestFindOpenOpportunities(t *testing.T) {
	var gotSOQL string
	mock := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			gotSOQL = soql
			opps := out.(*[]Opportunity)
			*opps = []Opportunity{{ID: "006a", Name: "Atlas"}, {ID: "006b", Name: "Borealis"}}
			return nil
		},
	}

	opps, err := FindOpenOpportunities(context.Background(), mock, 25)
	require.NoError(t, err)
	assert.Len(t, opps, 2)
	assert.Contains(t, gotSOQL, "FROM Opportunity WHERE IsClosed = false")
	assert.Contains(t, gotSOQL, "Risk_Rating__c")
	assert.Contains(t, gotSOQL, "LIMIT 25")

	_, err = FindOpenOpportunities(context.Background(), mock, 0)
	require.NoError(t, err)
	assert.NotContains(t, gotSOQL, "LIMIT")
}

func TestFindOpenOpportunities_Error(t *testing.T) {
	mock := &mockClient{
		queryFn: func(context.Context, string, any) error { return errors.New("session expired") },
	}
	_, err := FindOpenOpportunities(context.Background(), mock, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: find open opportunities")
}

func TestFindOpportunityByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "WHERE Id = '006a'")
				*out.(*[]Opportunity) = []Opportunity{{ID: "006a"}}
				return nil
			},
		}
		opp, err := FindOpportunityByID(context.Background(), mock, "006a")
		require.NoError(t, err)
		require.NotNil(t, opp)
		assert.Equal(t, "006a", opp.ID)
	})

	t.Run("missing", func(t *testing.T) {
		opp, err := FindOpportunityByID(context.Background(), &mockClient{}, "006z")
		require.NoError(t, err)
		assert.Nil(t, opp)
	})

	t.Run("escapes quotes", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, _ any) error {
				assert.Contains(t, soql, `Id = '006\' OR Id != \''`)
				return nil
			},
		}
		_, err := FindOpportunityByID(context.Background(), mock, "006' OR Id != '")
		require.NoError(t, err)
	})
}

func TestOpportunityProject(t *testing.T) {
	o := Opportunity{
		ID:                "006a",
		Name:              "Project Atlas",
		Amount:            45_000_000,
		Probability:       70,
		CloseDate:         "2025-12-31",
		Sector:            "Software",
		DealStage:         "Expansion",
		Region:            "North America",
		RiskRating:        "High",
		Progress:          40,
		TeamSize:          5,
		WorkProducts:      7,
		ValuationMultiple: 11.5,
	}

	p := o.Project()
	assert.Equal(t, "006a", p.ID)
	assert.Equal(t, "006a", p.SalesforceID)
	assert.Equal(t, model.SectorTechnology, p.Sector)
	assert.Equal(t, model.StageGrowth, p.Stage)
	assert.Equal(t, model.GeoNorthAmerica, p.Geography)
	assert.Equal(t, model.RiskHigh, p.RiskRating)
	assert.Equal(t, 5, p.TeamSize)
	assert.Equal(t, 7, p.WorkProducts)
	require.NotNil(t, p.Deadline)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *p.Deadline)
	require.NotNil(t, p.ConfidenceScore)
	assert.InDelta(t, 0.7, *p.ConfidenceScore, 0.0001)
	require.NotNil(t, p.ValuationMultiple)
	assert.InDelta(t, 11.5, *p.ValuationMultiple, 0.0001)
}

func TestOpportunityProject_Sparse(t *testing.T) {
	p := Opportunity{ID: "006b", Name: "Borealis", CloseDate: "next quarter"}.Project()
	assert.Nil(t, p.Deadline)
	assert.Nil(t, p.ConfidenceScore)
	assert.Nil(t, p.ValuationMultiple)
	assert.Equal(t, model.SectorOther, p.Sector)
	assert.Equal(t, model.RiskMedium, p.RiskRating)
}
