// Command flightwx turns a flight dataset into a per-airport weather
// report.
package main

import (
	"os"

	"github.com/flightwx/flightwx/internal/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
