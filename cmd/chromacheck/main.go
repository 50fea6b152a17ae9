// Chromacheck - colour-vision screening and filter tuning
//
// Chromacheck generates deterministic colour-vision test plates, scores
// screening sessions, and tunes a colour-correction filter by bounded
// local search.
package main

import (
	"os"

	"github.com/chromacheck/chromacheck/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
