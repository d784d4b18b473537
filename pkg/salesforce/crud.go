package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// UpdateOpportunity updates an Opportunity record with the given fields.
func UpdateOpportunity(ctx context.Context, c Client, opportunityID string, fields map[string]any) error {
	if opportunityID == "" {
		return eris.New("sf: opportunity id is required")
	}
	if len(fields) == 0 {
		return eris.New("sf: no fields to update")
	}
	if err := c.UpdateOne(ctx, SObjectOpportunity, opportunityID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update opportunity %s", opportunityID))
	}
	return nil
}
