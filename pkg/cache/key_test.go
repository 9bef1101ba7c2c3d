package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "https://maps.example.com/MapServer/0"},
			want: "arcgis:https://maps.example.com/MapServer/0",
		},
		{
			name: "query params sorted",
			key: Key{
				Endpoint: "https://maps.example.com/MapServer/0/Query",
				Query: url.Values{
					"resultOffset": {"100"},
					"f":            {"geojson"},
					"where":        {"1=1"},
				},
			},
			want: "arcgis:https://maps.example.com/MapServer/0/Query:f=geojson:resultOffset=100:where=1=1",
		},
		{
			name: "trailing slash normalized",
			key:  Key{Endpoint: "https://maps.example.com/MapServer/0/"},
			want: "arcgis:https://maps.example.com/MapServer/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "https://maps.example.com/MapServer/0/Query",
		Query: url.Values{
			"where":             {"1=1"},
			"outFields":         {"*"},
			"resultOffset":      {"0"},
			"resultRecordCount": {"500"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}
