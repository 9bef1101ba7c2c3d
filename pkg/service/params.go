package service

import (
	"net/url"
	"strconv"
)

// DefaultOutSR is the spatial reference used when the caller does not
// request a specific output CRS (WGS 84).
const DefaultOutSR = "4326"

// QueryParameters holds the recognized layer query options. A zero value
// is not usable directly; start from DefaultQueryParameters. The struct is
// passed by value into a fetch session and never mutated afterward.
type QueryParameters struct {
	// Where is the attribute filter clause (default "1=1", all records).
	Where string

	// Text is a free-text search against the layer's display field.
	Text string

	// ObjectIDs restricts the query to a comma-separated ID list.
	ObjectIDs string

	// Geometry is the spatial filter geometry.
	Geometry string

	// GeometryType names the spatial filter geometry type.
	GeometryType string

	// InSR is the spatial reference of the filter geometry.
	InSR string

	// SpatialRel is the spatial relationship operator for the filter.
	SpatialRel string

	// OutFields selects the attribute fields to return (default "*").
	OutFields string

	// OutSR is the requested output spatial reference. Empty means the
	// service default; exported collections fall back to DefaultOutSR.
	OutSR string
}

// DefaultQueryParameters returns the options for an unfiltered full-layer
// query.
func DefaultQueryParameters() QueryParameters {
	return QueryParameters{
		Where:     "1=1",
		OutFields: "*",
	}
}

// Values renders the query options for a single page request, including
// the pagination window and the GeoJSON output format.
func (p QueryParameters) Values(offset, recordCount int) url.Values {
	v := url.Values{}
	v.Set("where", p.Where)
	v.Set("text", p.Text)
	v.Set("objectIds", p.ObjectIDs)
	v.Set("geometry", p.Geometry)
	v.Set("geometryType", p.GeometryType)
	v.Set("inSR", p.InSR)
	v.Set("spatialRel", p.SpatialRel)
	v.Set("outFields", p.OutFields)
	v.Set("outSR", p.OutSR)
	v.Set("resultOffset", strconv.Itoa(offset))
	v.Set("resultRecordCount", strconv.Itoa(recordCount))
	v.Set("f", "geojson")
	return v
}

// OutputSR returns the effective output spatial reference for the merged
// collection.
func (p QueryParameters) OutputSR() string {
	if p.OutSR == "" {
		return DefaultOutSR
	}
	return p.OutSR
}
