package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/geofetch/arcfetch/pkg/feature"
	"github.com/geofetch/arcfetch/pkg/logging"
)

// GeoJSONExporter writes the collection as a GeoJSON FeatureCollection
// file. The merged payload is validated as GeoJSON before anything is
// written, so a malformed page never produces a half-written file.
type GeoJSONExporter struct{}

// Export implements Exporter.
func (GeoJSONExporter) Export(coll *feature.Collection, path string) error {
	data, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}

	if _, err := geojson.UnmarshalFeatureCollection(data); err != nil {
		return fmt.Errorf("collection is not valid GeoJSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}

	logger := logging.NewLogger("export")
	logger.Info().
		Str("format", "geojson").
		Str("path", path).
		Int("records", coll.Count()).
		Msg("Export complete")

	return nil
}
