// Command arcfetch downloads all features of an ArcGIS map-service layer
// and exports them to GeoJSON, shapefile, or schema JSON.
package main

import (
	"fmt"
	"os"

	"github.com/geofetch/arcfetch/internal/cli"
)

var version = "0.1.0"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
