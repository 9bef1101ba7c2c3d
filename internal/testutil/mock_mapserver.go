// Package testutil provides testing utilities for the map-service fetcher.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// LayerFixture configures the layer served by a MockMapServer.
type LayerFixture struct {
	// MaxRecordCount is the per-page record limit reported by the layer.
	MaxRecordCount int

	// SupportsPagination is the advanced query capability flag.
	SupportsPagination bool

	// GeometryType is the reported geometry type, e.g. "esriGeometryPoint".
	GeometryType string

	// FieldsJSON is the raw fields array of the layer description.
	FieldsJSON string

	// Features holds the full ordered feature set; page requests slice it
	// by resultOffset/resultRecordCount.
	Features []json.RawMessage
}

// MockMapServer is a configurable mock ArcGIS map server for testing. It
// serves the layer description, count-only queries, and paged feature
// queries for a single layer at /rest/services/test/MapServer/0.
type MockMapServer struct {
	server *httptest.Server
	mu     sync.RWMutex

	layer    LayerFixture
	handlers map[string]http.HandlerFunc

	// FailOffsets lists resultOffset values whose page requests return a
	// 500 response, to simulate single-page failures.
	FailOffsets map[int]bool

	// PageDelay delays every page response, to surface arrival-order
	// effects in concurrent fetches.
	PageDelay time.Duration

	// Tracking
	RequestCount int
	PageOffsets  []int
}

const layerPath = "/rest/services/test/MapServer/0"

// NewMockMapServer creates a mock map server for the given layer fixture.
func NewMockMapServer(layer LayerFixture) *MockMapServer {
	mock := &MockMapServer{
		layer:       layer,
		handlers:    make(map[string]http.HandlerFunc),
		FailOffsets: make(map[int]bool),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case layerPath:
			mock.describeHandler(w, r)
		case layerPath + "/Query":
			mock.queryHandler(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the layer URL of the mock server.
func (m *MockMapServer) URL() string {
	return m.server.URL + layerPath
}

// Close shuts down the mock server.
func (m *MockMapServer) Close() {
	m.server.Close()
}

// SetHandler overrides the handler for a specific path.
func (m *MockMapServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// describeHandler serves the layer description document.
func (m *MockMapServer) describeHandler(w http.ResponseWriter, r *http.Request) {
	fields := m.layer.FieldsJSON
	if fields == "" {
		fields = "[]"
	}

	fmt.Fprintf(w, `{
		"maxRecordCount": %d,
		"geometryType": %q,
		"fields": %s,
		"advancedQueryCapabilities": {"supportsPagination": %t}
	}`, m.layer.MaxRecordCount, m.layer.GeometryType, fields, m.layer.SupportsPagination)
}

// queryHandler serves count-only and paged feature queries.
func (m *MockMapServer) queryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m.mu.RLock()
	features := m.layer.Features
	m.mu.RUnlock()

	if q.Get("returnCountOnly") == "true" {
		fmt.Fprintf(w, `{"count": %d}`, len(features))
		return
	}

	offset, _ := strconv.Atoi(q.Get("resultOffset"))
	count, _ := strconv.Atoi(q.Get("resultRecordCount"))

	m.mu.Lock()
	m.PageOffsets = append(m.PageOffsets, offset)
	fail := m.FailOffsets[offset]
	m.mu.Unlock()

	if fail {
		http.Error(w, "simulated page failure", http.StatusInternalServerError)
		return
	}

	if m.PageDelay > 0 {
		time.Sleep(m.PageDelay)
	}

	// Slice like the real service: over-requesting past the end returns
	// only what remains.
	start := offset
	if start > len(features) {
		start = len(features)
	}
	end := start + count
	if count <= 0 || end > len(features) {
		end = len(features)
	}

	page := struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}{
		Type:     "FeatureCollection",
		Features: features[start:end],
	}

	json.NewEncoder(w).Encode(page)
}

// PointFeatures generates n point features with sequential ids, for use
// as a layer fixture.
func PointFeatures(n int) []json.RawMessage {
	features := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		features = append(features, json.RawMessage(fmt.Sprintf(
			`{"type":"Feature","id":%d,"geometry":{"type":"Point","coordinates":[%d.5,%d.5]},"properties":{"name":"feature-%d"}}`,
			i, i%180, i%90, i,
		)))
	}
	return features
}
