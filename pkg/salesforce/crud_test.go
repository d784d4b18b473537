package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateOpportunity(t *testing.T) {
	var gotObject, gotID string
	var gotFields map[string]any
	mock := &mockClient{
		updateOneFn: func(_ context.Context, sObject, id string, fields map[string]any) error {
			gotObject, gotID, gotFields = sObject, id, fields
			return nil
		},
	}

	err := UpdateOpportunity(context.Background(), mock, "006a", map[string]any{"Deal_Score__c": 82})
	require.NoError(t, err)
	assert.Equal(t, SObjectOpportunity, gotObject)
	assert.Equal(t, "006a", gotID)
	assert.Equal(t, 82, gotFields["Deal_Score__c"])
}

func TestUpdateOpportunity_Validation(t *testing.T) {
	err := UpdateOpportunity(context.Background(), &mockClient{}, "", map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opportunity id is required")

	err = UpdateOpportunity(context.Background(), &mockClient{}, "006a", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to update")
}

func TestUpdateOpportunity_Error(t *testing.T) {
	mock := &mockClient{
		updateOneFn: func(context.Context, string, string, map[string]any) error {
			return errors.New("ENTITY_IS_LOCKED")
		},
	}
	err := UpdateOpportunity(context.Background(), mock, "006a", map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: update opportunity 006a")
}
