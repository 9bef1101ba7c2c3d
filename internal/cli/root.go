// Package cli implements the arcfetch command line interface. It parses
// flags, runs one fetch session, and hands the merged collection to the
// export writers; all pagination logic lives in the core packages.
package cli

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/geofetch/arcfetch/pkg/cache"
	"github.com/geofetch/arcfetch/pkg/client"
	"github.com/geofetch/arcfetch/pkg/export"
	"github.com/geofetch/arcfetch/pkg/logging"
	"github.com/geofetch/arcfetch/pkg/service"
	"github.com/geofetch/arcfetch/pkg/session"
)

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var (
	flagConcurrent bool
	flagWhere      string
	flagOutFields  string
	flagOutSR      string
	flagGeoJSON    string
	flagShapefile  string
	flagSchema     string
	flagLogLevel   string
	flagRedisAddr  string
	flagCacheTTL   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "arcfetch <service-url>",
	Short: "Fetch all features of an ArcGIS map-service layer",
	Long: `arcfetch downloads every feature of an ArcGIS REST API map-service
layer through its paginated Query endpoint, merges the pages into one
ordered feature collection, and exports it to GeoJSON, shapefile, or
raw schema JSON.

The service URL must end in the integer layer number, e.g.
https://<SERVER>/arcgis/rest/services/<FOLDER(S)>/MapServer/<LAYER_NUMBER>`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFetch,
}

// Execute runs the CLI application.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVarP(&flagConcurrent, "concurrent", "c", false, "Fetch pages concurrently")
	rootCmd.Flags().StringVarP(&flagWhere, "where", "w", "1=1", "Attribute filter clause")
	rootCmd.Flags().StringVarP(&flagOutFields, "out-fields", "f", "*", "Comma-separated output fields")
	rootCmd.Flags().StringVar(&flagOutSR, "out-sr", "", "Output spatial reference code")
	rootCmd.Flags().StringVar(&flagGeoJSON, "geojson", "", "Write GeoJSON to this path")
	rootCmd.Flags().StringVar(&flagShapefile, "shapefile", "", "Write a shapefile to this path")
	rootCmd.Flags().StringVar(&flagSchema, "schema", "", "Write the layer schema JSON to this path")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flagRedisAddr, "redis", "", "Redis address for the response cache (disabled when empty)")
	rootCmd.Flags().DurationVar(&flagCacheTTL, "cache-ttl", 5*time.Minute, "Response cache TTL")
}

func runFetch(cmd *cobra.Command, args []string) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(flagLogLevel),
		Pretty: true,
	})

	params := service.DefaultQueryParameters()
	params.Where = flagWhere
	params.OutFields = flagOutFields
	params.OutSR = flagOutSR

	httpClient, err := buildClient()
	if err != nil {
		return err
	}

	sess, err := session.Open(cmd.Context(), session.Config{
		URL:        args[0],
		Params:     params,
		Concurrent: flagConcurrent,
		Client:     httpClient,
	})
	if err != nil {
		return err
	}

	if flagGeoJSON != "" {
		path := export.EnsureExtension(flagGeoJSON, ".geojson")
		if err := sess.Export(export.GeoJSONExporter{}, path); err != nil {
			return err
		}
		pterm.Printf("GeoJSON saved at %s\n", path)
	}

	if flagShapefile != "" {
		path := export.EnsureExtension(flagShapefile, ".shp")
		if err := sess.Export(export.ShapefileExporter{}, path); err != nil {
			return err
		}
		pterm.Printf("Shapefile saved at %s\n", path)
	}

	if flagSchema != "" {
		path := export.EnsureExtension(flagSchema, ".json")
		if err := sess.Export(export.SchemaExporter{}, path); err != nil {
			return err
		}
		pterm.Printf("Schema saved at %s\n", path)
	}

	pterm.Println("Processing complete.")
	pterm.Printf("Retrieved %d records.\n", sess.RecordCount())

	return nil
}

// buildClient assembles the HTTP client, with the Redis response cache
// when --redis is set.
func buildClient() (*client.Client, error) {
	cfg := client.DefaultConfig()
	cfg.UserAgent = "arcfetch/" + version

	if flagRedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: flagRedisAddr})
		cfg.Cache = cache.NewManager(redisClient)
		cfg.CacheTTL = flagCacheTTL
	}

	c, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	return c, nil
}
