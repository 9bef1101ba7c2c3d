// Package service provides map-service URL validation and the query
// options recognized by the layer Query endpoint.
package service

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidServiceURL is returned when no layer number can be located in
// the service URL path.
var ErrInvalidServiceURL = errors.New("invalid service URL")

// Reference is a validated map-service layer reference. The base URL
// always ends in the integer layer segment.
type Reference struct {
	// BaseURL is the normalized layer URL, e.g.
	// https://server/arcgis/rest/services/Parcels/MapServer/0
	BaseURL string

	// LayerID is the integer layer identifier extracted from the path.
	LayerID int
}

// QueryURL returns the layer's Query endpoint.
func (r *Reference) QueryURL() string {
	return r.BaseURL + "/Query"
}

// Validate parses a user-supplied service URL and normalizes it to end at
// the layer number segment. The path is scanned backward for the last
// segment that parses as a non-negative integer; everything after that
// segment is dropped.
func Validate(rawURL string) (*Reference, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServiceURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host, expected format: https://<SERVER>/arcgis/rest/services/<FOLDER(S)>/MapServer/<LAYER_NUMBER>", ErrInvalidServiceURL)
	}

	segments := strings.Split(parsed.Path, "/")

	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}

		layerID, err := strconv.Atoi(segments[i])
		if err != nil || layerID < 0 {
			continue
		}

		// Keep the path up to and including the layer segment. When the
		// layer number is already the final segment the path is retained
		// verbatim.
		path := strings.Join(segments[:i+1], "/")

		return &Reference{
			BaseURL: parsed.Scheme + "://" + parsed.Host + path,
			LayerID: layerID,
		}, nil
	}

	return nil, fmt.Errorf("%w: no layer number found in path, expected format: https://<SERVER>/arcgis/rest/services/<FOLDER(S)>/MapServer/<LAYER_NUMBER>", ErrInvalidServiceURL)
}
