package pagination

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geofetch/arcfetch/internal/testutil"
	"github.com/geofetch/arcfetch/pkg/client"
	"github.com/geofetch/arcfetch/pkg/service"
)

func newQueryFetcher(t *testing.T, mock *testutil.MockMapServer, params service.QueryParameters) *QueryFetcher {
	t.Helper()

	c, err := client.New(client.DefaultConfig())
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}

	ref, err := service.Validate(mock.URL())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	return NewQueryFetcher(c, ref, params)
}

func TestQueryFetcher_FetchPage(t *testing.T) {
	mock := testutil.NewMockMapServer(testutil.LayerFixture{
		MaxRecordCount:     100,
		SupportsPagination: true,
		GeometryType:       "esriGeometryPoint",
		Features:           testutil.PointFeatures(250),
	})
	defer mock.Close()

	fetcher := newQueryFetcher(t, mock, service.DefaultQueryParameters())

	features, err := fetcher.FetchPage(context.Background(), Page{Index: 1, Offset: 100, RecordCount: 100})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(features) != 100 {
		t.Errorf("len(features) = %d, want 100", len(features))
	}
}

func TestQueryFetcher_FetchPage_LastPageTruncatedByService(t *testing.T) {
	mock := testutil.NewMockMapServer(testutil.LayerFixture{
		MaxRecordCount:     100,
		SupportsPagination: true,
		GeometryType:       "esriGeometryPoint",
		Features:           testutil.PointFeatures(250),
	})
	defer mock.Close()

	fetcher := newQueryFetcher(t, mock, service.DefaultQueryParameters())

	// Over-request past the true count; the service returns what remains.
	features, err := fetcher.FetchPage(context.Background(), Page{Index: 2, Offset: 200, RecordCount: 100})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(features) != 50 {
		t.Errorf("len(features) = %d, want 50", len(features))
	}
}

func TestQueryFetcher_FetchPage_ServerError(t *testing.T) {
	mock := testutil.NewMockMapServer(testutil.LayerFixture{
		MaxRecordCount:     100,
		SupportsPagination: true,
		Features:           testutil.PointFeatures(250),
	})
	defer mock.Close()
	mock.FailOffsets[100] = true

	fetcher := newQueryFetcher(t, mock, service.DefaultQueryParameters())

	_, err := fetcher.FetchPage(context.Background(), Page{Index: 1, Offset: 100, RecordCount: 100})

	var pageErr *PageError
	if !errors.As(err, &pageErr) {
		t.Fatalf("FetchPage error = %v, want *PageError", err)
	}
	if pageErr.Offset != 100 {
		t.Errorf("PageError.Offset = %d, want 100", pageErr.Offset)
	}
}

func TestQueryFetcher_FetchPage_MalformedPayload(t *testing.T) {
	mock := testutil.NewMockMapServer(testutil.LayerFixture{})
	defer mock.Close()

	mock.SetHandler("/rest/services/test/MapServer/0/Query", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "no features here"}`))
	})

	fetcher := newQueryFetcher(t, mock, service.DefaultQueryParameters())

	_, err := fetcher.FetchPage(context.Background(), Page{Index: 0, Offset: 0, RecordCount: 100})

	var pageErr *PageError
	if !errors.As(err, &pageErr) {
		t.Fatalf("FetchPage error = %v, want *PageError", err)
	}
}

func TestQueryFetcher_FetchPage_SendsQueryOptions(t *testing.T) {
	mock := testutil.NewMockMapServer(testutil.LayerFixture{
		MaxRecordCount:     100,
		SupportsPagination: true,
		Features:           testutil.PointFeatures(10),
	})
	defer mock.Close()

	var gotQuery map[string][]string
	mock.SetHandler("/rest/services/test/MapServer/0/Query", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"features":[]}`))
	})

	params := service.DefaultQueryParameters()
	params.Where = "POP > 1000"
	params.OutFields = "NAME,POP"
	params.OutSR = "3857"

	fetcher := newQueryFetcher(t, mock, params)

	if _, err := fetcher.FetchPage(context.Background(), Page{Index: 0, Offset: 40, RecordCount: 20}); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	want := map[string]string{
		"where":             "POP > 1000",
		"outFields":         "NAME,POP",
		"outSR":             "3857",
		"resultOffset":      "40",
		"resultRecordCount": "20",
		"f":                 "geojson",
	}
	for name, wantVal := range want {
		if got := gotQuery[name]; len(got) != 1 || got[0] != wantVal {
			t.Errorf("query %s = %v, want %q", name, got, wantVal)
		}
	}
}
