package pagination

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/geofetch/arcfetch/pkg/client"
	"github.com/geofetch/arcfetch/pkg/logging"
	"github.com/geofetch/arcfetch/pkg/service"
)

// PageFetcher fetches a single planned page and returns its features in
// payload order.
type PageFetcher interface {
	FetchPage(ctx context.Context, page Page) ([]json.RawMessage, error)
}

// QueryFetcher is the HTTP PageFetcher against a layer Query endpoint.
// One GET per page, no retries; a failed page fails the fetch.
type QueryFetcher struct {
	client   *client.Client
	queryURL string
	params   service.QueryParameters
	logger   zerolog.Logger
}

// NewQueryFetcher creates a page fetcher for one fetch session.
func NewQueryFetcher(c *client.Client, ref *service.Reference, params service.QueryParameters) *QueryFetcher {
	return &QueryFetcher{
		client:   c,
		queryURL: ref.QueryURL(),
		params:   params,
		logger:   logging.NewLogger("page-fetcher"),
	}
}

// FetchPage performs the page request and parses the features array.
func (f *QueryFetcher) FetchPage(ctx context.Context, page Page) ([]json.RawMessage, error) {
	f.logger.Debug().
		Str("url", f.queryURL).
		Int("offset", page.Offset).
		Int("record_count", page.RecordCount).
		Msg("Fetching page")

	body, err := f.client.Get(ctx, f.queryURL, f.params.Values(page.Offset, page.RecordCount))
	if err != nil {
		return nil, &PageError{Offset: page.Offset, Err: err}
	}

	var payload struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &PageError{Offset: page.Offset, Err: fmt.Errorf("parse page payload: %w", err)}
	}
	if payload.Features == nil {
		return nil, &PageError{Offset: page.Offset, Err: fmt.Errorf("page payload has no features array")}
	}

	return payload.Features, nil
}
