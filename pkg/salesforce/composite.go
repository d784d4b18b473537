package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// OpportunityUpdate holds an opportunity ID and the fields to update.
type OpportunityUpdate struct {
	ID     string
	Fields map[string]any
}

// BulkUpdateOpportunities splits updates into batches of 200 and sends them
// via UpdateCollection. Results from batches sent before a failure are
// returned alongside the error.
func BulkUpdateOpportunities(ctx context.Context, c Client, updates []OpportunityUpdate) ([]CollectionResult, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult

	for start := 0; start < len(updates); start += maxBatchSize {
		end := min(start+maxBatchSize, len(updates))
		batch := updates[start:end]

		records := make([]CollectionRecord, len(batch))
		for i, u := range batch {
			records[i] = CollectionRecord(u)
		}

		results, err := c.UpdateCollection(ctx, SObjectOpportunity, records)
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk update opportunities batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}
