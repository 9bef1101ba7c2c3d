// Package export writes a fetched feature collection to geospatial file
// formats: GeoJSON, ESRI shapefile, and raw schema JSON.
package export

import (
	"strings"

	"github.com/geofetch/arcfetch/pkg/feature"
)

// Exporter writes a feature collection to a file.
type Exporter interface {
	// Export writes coll to path. The path should already carry the
	// format's extension; see EnsureExtension.
	Export(coll *feature.Collection, path string) error
}

// EnsureExtension appends ext (including the leading dot) when path does
// not already end with it, case-insensitively.
func EnsureExtension(path, ext string) string {
	if strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext)) {
		return path
	}
	return path + ext
}
