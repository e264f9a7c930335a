package testtrials

import (
	"os"
)

// ShowHelp prints usage information for the trial generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Free-throw Trial Generator
==========================

Writes synthetic motion-capture trials in the format read by the analysis service.

Usage:
  go run ./cmd/gen-trials [options]

Options:
  -out string
        Root data directory (default "data")
  -participant string
        Participant id and sub-directory (default "P0001")
  -trials int
        Number of trials (default 20)
  -frames int
        Frames per trial (default 60)
  -fps float
        Frame rate (default 120)
  -made float
        Fraction of made shots (default 0.6)
  -gaps float
        Probability that a marker is missing in a frame (default 0.02)
  -seed uint
        Random seed (default 1)
  -uuid
        Use UUID trial ids
  -url string
        Service base URL; when set, POST /analyze and check the counts
  -help
        Show this help message

Examples:
  # Twenty trials for P0001 under ./data
  go run ./cmd/gen-trials

  # Generate and have a running service analyze them
  go run ./cmd/gen-trials -trials 50 -url http://localhost:9080
`)
}
