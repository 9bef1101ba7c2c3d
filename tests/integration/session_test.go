package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/geofetch/arcfetch/internal/testutil"
	"github.com/geofetch/arcfetch/pkg/cache"
	"github.com/geofetch/arcfetch/pkg/client"
	"github.com/geofetch/arcfetch/pkg/pagination"
	"github.com/geofetch/arcfetch/pkg/service"
	"github.com/geofetch/arcfetch/pkg/session"
)

const testFields = `[
	{"name": "OBJECTID", "type": "esriFieldTypeOID"},
	{"name": "name", "type": "esriFieldTypeString", "length": 30}
]`

func newLayer(records int) testutil.LayerFixture {
	return testutil.LayerFixture{
		MaxRecordCount:     500,
		SupportsPagination: true,
		GeometryType:       "esriGeometryPoint",
		FieldsJSON:         testFields,
		Features:           testutil.PointFeatures(records),
	}
}

// 1200 records at 500 per page makes a three page plan; the merged
// output carries every feature in plan order.
func TestSession_EndToEnd(t *testing.T) {
	mock := testutil.NewMockMapServer(newLayer(1200))
	defer mock.Close()

	sess, err := session.Open(context.Background(), session.Config{
		URL:        mock.URL() + "/extra/trailing/segments",
		Params:     service.DefaultQueryParameters(),
		Concurrent: true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if sess.RecordCount() != 1200 {
		t.Errorf("RecordCount() = %d, want 1200", sess.RecordCount())
	}

	// Three pages: description + count + 3 page requests.
	if mock.RequestCount != 5 {
		t.Errorf("RequestCount = %d, want 5", mock.RequestCount)
	}

	offsets := map[int]bool{}
	for _, o := range mock.PageOffsets {
		offsets[o] = true
	}
	for _, want := range []int{0, 500, 1000} {
		if !offsets[want] {
			t.Errorf("no page request at offset %d (offsets: %v)", want, mock.PageOffsets)
		}
	}

	for i, raw := range sess.Collection().Features {
		var f struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("unmarshal feature %d: %v", i, err)
		}
		if f.ID != i {
			t.Fatalf("feature %d has id %d; merge is not plan-ordered", i, f.ID)
		}
	}
}

func TestSession_ConcurrentMatchesSequential(t *testing.T) {
	mock := testutil.NewMockMapServer(newLayer(1200))
	defer mock.Close()
	mock.PageDelay = 10 * time.Millisecond

	open := func(concurrent bool) []byte {
		t.Helper()

		sess, err := session.Open(context.Background(), session.Config{
			URL:        mock.URL(),
			Params:     service.DefaultQueryParameters(),
			Concurrent: concurrent,
		})
		if err != nil {
			t.Fatalf("Open(concurrent=%t): %v", concurrent, err)
		}

		data, err := json.Marshal(sess.Collection())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	sequential := open(false)
	concurrent := open(true)

	if string(sequential) != string(concurrent) {
		t.Error("concurrent and sequential sessions produced different collections")
	}
}

func TestSession_EmptyLayer(t *testing.T) {
	mock := testutil.NewMockMapServer(newLayer(0))
	defer mock.Close()

	sess, err := session.Open(context.Background(), session.Config{
		URL:    mock.URL(),
		Params: service.DefaultQueryParameters(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if sess.RecordCount() != 0 {
		t.Errorf("RecordCount() = %d, want 0", sess.RecordCount())
	}
}

func TestSession_AbortCarriesFailingOffset(t *testing.T) {
	mock := testutil.NewMockMapServer(newLayer(1200))
	defer mock.Close()
	mock.FailOffsets[1000] = true

	_, err := session.Open(context.Background(), session.Config{
		URL:        mock.URL(),
		Params:     service.DefaultQueryParameters(),
		Concurrent: false,
	})

	var aborted *pagination.FetchAbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("Open error = %v, want *FetchAbortedError", err)
	}
	if aborted.Offset != 1000 {
		t.Errorf("aborted offset = %d, want 1000", aborted.Offset)
	}
}

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available for Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func TestSession_WithResponseCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	redisClient := setupRedis(t)

	mock := testutil.NewMockMapServer(newLayer(1200))
	defer mock.Close()

	cfg := client.DefaultConfig()
	cfg.Cache = cache.NewManager(redisClient)
	cfg.CacheTTL = time.Minute

	httpClient, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}

	open := func() *session.Session {
		t.Helper()

		sess, err := session.Open(context.Background(), session.Config{
			URL:    mock.URL(),
			Params: service.DefaultQueryParameters(),
			Client: httpClient,
		})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return sess
	}

	first := open()
	requestsAfterFirst := mock.RequestCount

	second := open()

	if mock.RequestCount != requestsAfterFirst {
		t.Errorf("second session made %d extra requests, want 0 (cache)", mock.RequestCount-requestsAfterFirst)
	}
	if first.RecordCount() != second.RecordCount() {
		t.Errorf("cached session record count %d != %d", second.RecordCount(), first.RecordCount())
	}
}
