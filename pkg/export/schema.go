package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geofetch/arcfetch/pkg/feature"
	"github.com/geofetch/arcfetch/pkg/logging"
)

// SchemaExporter writes the layer field schema as raw JSON.
type SchemaExporter struct{}

// Export implements Exporter.
func (SchemaExporter) Export(coll *feature.Collection, path string) error {
	schema := coll.Schema
	if schema == nil {
		schema = []feature.Field{}
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	logger := logging.NewLogger("export")
	logger.Info().
		Str("format", "schema").
		Str("path", path).
		Int("fields", len(schema)).
		Msg("Export complete")

	return nil
}
