// Package notion publishes fund benchmark results to a Notion database.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client is the subset of the Notion API the benchmark publisher needs:
// finding existing module pages and creating or updating them.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// defaultRPS is Notion's documented average request rate per integration.
const defaultRPS = 3

// ClientOption configures a Client built by NewClient.
type ClientOption func(*workspace)

// WithRateLimit sets the request rate. rps <= 0 disables throttling.
func WithRateLimit(rps float64) ClientOption {
	return func(w *workspace) {
		w.limiter = nil
		if rps > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

type workspace struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

// NewClient returns a throttled Client authenticated with an integration
// token.
func NewClient(token string, opts ...ClientOption) Client {
	w := &workspace{
		api:     notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(defaultRPS, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// throttled waits for a request slot, runs fn and wraps its error with what.
func throttled[T any](ctx context.Context, w *workspace, what string, fn func() (T, error)) (T, error) {
	var zero T
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return zero, eris.Wrapf(err, "notion: throttle before %s", what)
		}
	}
	v, err := fn()
	if err != nil {
		return zero, eris.Wrap(err, "notion: "+what)
	}
	return v, nil
}

func (w *workspace) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return throttled(ctx, w, "query benchmark database "+dbID, func() (*notionapi.DatabaseQueryResponse, error) {
		return w.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	})
}

func (w *workspace) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return throttled(ctx, w, "create module page", func() (*notionapi.Page, error) {
		return w.api.Page.Create(ctx, req)
	})
}

func (w *workspace) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	return throttled(ctx, w, "update module page "+pageID, func() (*notionapi.Page, error) {
		return w.api.Page.Update(ctx, notionapi.PageID(pageID), req)
	})
}
