package export

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geofetch/arcfetch/pkg/feature"
	"github.com/geofetch/arcfetch/pkg/logging"
)

// ShapefileExporter writes the collection as an ESRI shapefile. Geometry
// comes from each feature's GeoJSON geometry; attributes come from the
// layer schema, truncated to the DBF 10-character field name limit.
type ShapefileExporter struct{}

// Export implements Exporter.
func (ShapefileExporter) Export(coll *feature.Collection, path string) error {
	shapeType, err := shapeTypeFor(coll.GeometryType)
	if err != nil {
		return err
	}

	writer, err := shp.Create(path, shapeType)
	if err != nil {
		return fmt.Errorf("create shapefile: %w", err)
	}
	defer writer.Close()

	fields := dbfFields(coll.Schema)
	if err := writer.SetFields(fields); err != nil {
		return fmt.Errorf("set shapefile fields: %w", err)
	}

	for i, raw := range coll.Features {
		feat, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}

		shape, err := toShape(feat.Geometry, shapeType)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		row := int(writer.Write(shape))

		for fi, field := range coll.Schema {
			if fi >= len(fields) {
				break
			}
			value := feat.Properties[field.Name]
			if value == nil {
				continue
			}
			if err := writer.WriteAttribute(row, fi, attributeValue(field, value)); err != nil {
				return fmt.Errorf("feature %d attribute %s: %w", i, field.Name, err)
			}
		}
	}

	logger := logging.NewLogger("export")
	logger.Info().
		Str("format", "shapefile").
		Str("path", path).
		Int("records", coll.Count()).
		Msg("Export complete")

	return nil
}

// shapeTypeFor maps the service geometry type to a shapefile shape type.
func shapeTypeFor(geometryType string) (shp.ShapeType, error) {
	switch geometryType {
	case "esriGeometryPoint":
		return shp.POINT, nil
	case "esriGeometryMultipoint":
		return shp.MULTIPOINT, nil
	case "esriGeometryPolyline":
		return shp.POLYLINE, nil
	case "esriGeometryPolygon":
		return shp.POLYGON, nil
	default:
		return 0, fmt.Errorf("unsupported geometry type for shapefile export: %q", geometryType)
	}
}

// dbfFields builds the DBF attribute table from the layer schema.
func dbfFields(schema []feature.Field) []shp.Field {
	if len(schema) == 0 {
		return []shp.Field{shp.NumberField("FID", 16)}
	}

	fields := make([]shp.Field, 0, len(schema))
	for _, f := range schema {
		name := f.Name
		if len(name) > 10 {
			name = name[:10]
		}

		switch f.Type {
		case "esriFieldTypeOID", "esriFieldTypeInteger", "esriFieldTypeSmallInteger":
			fields = append(fields, shp.NumberField(name, 16))
		case "esriFieldTypeDouble", "esriFieldTypeSingle":
			fields = append(fields, shp.FloatField(name, 19, 6))
		default:
			length := f.Length
			if length <= 0 || length > 254 {
				length = 64
			}
			fields = append(fields, shp.StringField(name, uint8(length)))
		}
	}
	return fields
}

// toShape converts an orb geometry to its shapefile representation.
func toShape(geom orb.Geometry, shapeType shp.ShapeType) (shp.Shape, error) {
	switch g := geom.(type) {
	case orb.Point:
		return &shp.Point{X: g[0], Y: g[1]}, nil
	case orb.MultiPoint:
		if len(g) == 0 {
			return nil, fmt.Errorf("empty multipoint")
		}
		points := make([]shp.Point, 0, len(g))
		for _, p := range g {
			points = append(points, shp.Point{X: p[0], Y: p[1]})
		}
		return &shp.MultiPoint{
			Box:       shp.BBoxFromPoints(points),
			NumPoints: int32(len(points)),
			Points:    points,
		}, nil
	case orb.LineString:
		return shp.NewPolyLine([][]shp.Point{ringToPoints(g)}), nil
	case orb.MultiLineString:
		parts := make([][]shp.Point, 0, len(g))
		for _, line := range g {
			parts = append(parts, ringToPoints(line))
		}
		return shp.NewPolyLine(parts), nil
	case orb.Polygon:
		parts := make([][]shp.Point, 0, len(g))
		for _, ring := range g {
			parts = append(parts, ringToPoints(orb.LineString(ring)))
		}
		polygon := shp.Polygon(*shp.NewPolyLine(parts))
		return &polygon, nil
	case orb.MultiPolygon:
		var parts [][]shp.Point
		for _, poly := range g {
			for _, ring := range poly {
				parts = append(parts, ringToPoints(orb.LineString(ring)))
			}
		}
		polygon := shp.Polygon(*shp.NewPolyLine(parts))
		return &polygon, nil
	case nil:
		return nil, fmt.Errorf("feature has no geometry")
	default:
		return nil, fmt.Errorf("unsupported geometry %T for shape type %v", geom, shapeType)
	}
}

// ringToPoints converts a line string to shapefile points.
func ringToPoints(line orb.LineString) []shp.Point {
	points := make([]shp.Point, 0, len(line))
	for _, p := range line {
		points = append(points, shp.Point{X: p[0], Y: p[1]})
	}
	return points
}

// attributeValue converts a GeoJSON property value to the Go type matching
// the field's DBF column, so numeric columns receive numbers rather than
// left-justified text.
func attributeValue(field feature.Field, value interface{}) interface{} {
	switch field.Type {
	case "esriFieldTypeOID", "esriFieldTypeInteger", "esriFieldTypeSmallInteger":
		switch v := value.(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
	case "esriFieldTypeDouble", "esriFieldTypeSingle":
		switch v := value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		s := fmt.Sprintf("%f", v)
		s = strings.TrimRight(s, "0")
		return strings.TrimRight(s, ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}
