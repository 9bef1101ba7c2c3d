package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached map-service response.
type Key struct {
	// Endpoint is the full request URL without query parameters.
	Endpoint string

	// Query holds the request query parameters.
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: arcgis:<endpoint>:param1=val1:param2=val2
//
// Example:
//
//	arcgis:https://maps.example.com/MapServer/0/Query:f=geojson:resultOffset=100
func (k Key) String() string {
	parts := []string{"arcgis"}

	endpoint := strings.TrimRight(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism.
	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
