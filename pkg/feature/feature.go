// Package feature holds the in-memory GeoJSON feature collection model
// produced by a fetch session.
package feature

import (
	"encoding/json"
)

// Field describes one attribute column of a layer schema, as served by
// the map service.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Alias  string `json:"alias,omitempty"`
	Length int    `json:"length,omitempty"`
}

// CRS is the GeoJSON named coordinate reference system member.
type CRS struct {
	Type       string   `json:"type"`
	Properties CRSProps `json:"properties"`
}

// CRSProps holds the CRS name.
type CRSProps struct {
	Name string `json:"name"`
}

// NamedCRS builds a named CRS from a spatial reference code, e.g. "4326"
// becomes "EPSG:4326".
func NamedCRS(sr string) CRS {
	return CRS{
		Type:       "name",
		Properties: CRSProps{Name: "EPSG:" + sr},
	}
}

// Collection is the merged, ordered feature collection of one fetch
// session. Features keep their raw page payload bytes so the merged
// output is byte-stable across runs. Ownership passes to the caller once
// the fetch completes.
type Collection struct {
	Features     []json.RawMessage
	SpatialRef   string
	GeometryType string
	Schema       []Field
}

// Count returns the number of features in the collection.
func (c *Collection) Count() int {
	return len(c.Features)
}

// Append concatenates one page of features onto the collection. Pages
// must be appended in plan order.
func (c *Collection) Append(page []json.RawMessage) {
	c.Features = append(c.Features, page...)
}

// MarshalJSON renders the collection as a GeoJSON FeatureCollection.
func (c *Collection) MarshalJSON() ([]byte, error) {
	features := c.Features
	if features == nil {
		features = []json.RawMessage{}
	}

	out := struct {
		Type     string            `json:"type"`
		CRS      *CRS              `json:"crs,omitempty"`
		Features []json.RawMessage `json:"features"`
	}{
		Type:     "FeatureCollection",
		Features: features,
	}

	if c.SpatialRef != "" {
		crs := NamedCRS(c.SpatialRef)
		out.CRS = &crs
	}

	return json.Marshal(out)
}

// Merge concatenates pages of features strictly in slice order.
func Merge(pages [][]json.RawMessage) []json.RawMessage {
	total := 0
	for _, p := range pages {
		total += len(p)
	}

	merged := make([]json.RawMessage, 0, total)
	for _, p := range pages {
		merged = append(merged, p...)
	}
	return merged
}
