// Package metadata discovers the service metadata needed to plan a
// paginated fetch: record limits, pagination support, schema, and
// geometry type.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/geofetch/arcfetch/pkg/client"
	"github.com/geofetch/arcfetch/pkg/feature"
	"github.com/geofetch/arcfetch/pkg/logging"
	"github.com/geofetch/arcfetch/pkg/service"
)

var (
	// ErrMetadataUnavailable indicates the service could not be reached.
	ErrMetadataUnavailable = errors.New("service metadata unavailable")

	// ErrMalformedMetadata indicates the service responded with a
	// document missing the expected keys, or with a non-success status.
	ErrMalformedMetadata = errors.New("malformed service metadata")
)

// Metadata holds the per-session service metadata. Created once at
// session start and read-only afterward.
type Metadata struct {
	// TotalRecords is the total record count of the layer query.
	TotalRecords int

	// MaxPageSize is the layer's maxRecordCount page limit.
	MaxPageSize int

	// Fields is the ordered layer field schema.
	Fields []feature.Field

	// SupportsPagination reports the advanced query capability flag.
	SupportsPagination bool

	// GeometryType is the layer geometry type, e.g. "esriGeometryPolygon".
	GeometryType string
}

// Fetcher retrieves service metadata. Both metadata requests run
// sequentially; planning cannot start without them.
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a metadata fetcher on top of the given client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: logging.NewLogger("metadata"),
	}
}

// Fetch issues the layer description and count-only requests and returns
// the combined metadata.
func (f *Fetcher) Fetch(ctx context.Context, ref *service.Reference) (*Metadata, error) {
	md, err := f.describeLayer(ctx, ref)
	if err != nil {
		return nil, err
	}

	total, err := f.countRecords(ctx, ref)
	if err != nil {
		return nil, err
	}
	md.TotalRecords = total

	f.logger.Info().
		Str("url", ref.BaseURL).
		Int("total_records", md.TotalRecords).
		Int("max_page_size", md.MaxPageSize).
		Str("geometry_type", md.GeometryType).
		Msg("Service metadata loaded")

	return md, nil
}

// describeLayer fetches <base>?f=json and extracts the planning fields.
func (f *Fetcher) describeLayer(ctx context.Context, ref *service.Reference) (*Metadata, error) {
	body, err := f.client.Get(ctx, ref.BaseURL, url.Values{"f": {"json"}})
	if err != nil {
		return nil, classify("layer description", err)
	}

	maxCount := gjson.GetBytes(body, "maxRecordCount")
	if !maxCount.Exists() || maxCount.Int() <= 0 {
		return nil, fmt.Errorf("%w: missing or non-positive maxRecordCount", ErrMalformedMetadata)
	}

	supports := gjson.GetBytes(body, "advancedQueryCapabilities.supportsPagination")
	if !supports.Exists() {
		return nil, fmt.Errorf("%w: missing advancedQueryCapabilities.supportsPagination", ErrMalformedMetadata)
	}
	if !supports.Bool() {
		return nil, fmt.Errorf("%w: layer does not support pagination", ErrMalformedMetadata)
	}

	geometryType := gjson.GetBytes(body, "geometryType")
	if !geometryType.Exists() {
		return nil, fmt.Errorf("%w: missing geometryType", ErrMalformedMetadata)
	}

	fieldsRaw := gjson.GetBytes(body, "fields")
	if !fieldsRaw.Exists() || !fieldsRaw.IsArray() {
		return nil, fmt.Errorf("%w: missing fields array", ErrMalformedMetadata)
	}

	var fields []feature.Field
	if err := json.Unmarshal([]byte(fieldsRaw.Raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid fields array: %v", ErrMalformedMetadata, err)
	}

	return &Metadata{
		MaxPageSize:        int(maxCount.Int()),
		Fields:             fields,
		SupportsPagination: true,
		GeometryType:       geometryType.String(),
	}, nil
}

// countRecords fetches the total record count via a count-only query.
func (f *Fetcher) countRecords(ctx context.Context, ref *service.Reference) (int, error) {
	body, err := f.client.Get(ctx, ref.QueryURL(), url.Values{
		"returnCountOnly": {"true"},
		"where":           {"1=1"},
		"f":               {"json"},
	})
	if err != nil {
		return 0, classify("record count", err)
	}

	count := gjson.GetBytes(body, "count")
	if !count.Exists() || count.Type != gjson.Number {
		return 0, fmt.Errorf("%w: missing or non-numeric count", ErrMalformedMetadata)
	}
	if count.Int() < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrMalformedMetadata, count.Int())
	}

	return int(count.Int()), nil
}

// classify maps transport failures to ErrMetadataUnavailable and HTTP
// status failures to ErrMalformedMetadata.
func classify(stage string, err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %s request returned status %d", ErrMalformedMetadata, stage, httpErr.StatusCode)
	}
	return fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, stage, err)
}
