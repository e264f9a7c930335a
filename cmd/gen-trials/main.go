package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/freethrow/internal/testtrials"
	"github.com/okian/freethrow/pkg/logger"
)

// Default configuration constants.
const (
	defaultTrials    = 20
	defaultFrames    = 60
	defaultFrameRate = 120.0
	defaultMadeRatio = 0.6
	defaultGapRate   = 0.02
	defaultTimeout   = 30 * time.Second
	runTimeout       = 5 * time.Minute
)

func main() {
	var (
		outDir      = flag.String("out", "data", "Root data directory")
		participant = flag.String("participant", "P0001", "Participant id and sub-directory")
		trials      = flag.Int("trials", defaultTrials, "Number of trials")
		frames      = flag.Int("frames", defaultFrames, "Frames per trial")
		fps         = flag.Float64("fps", defaultFrameRate, "Frame rate")
		made        = flag.Float64("made", defaultMadeRatio, "Fraction of made shots")
		gaps        = flag.Float64("gaps", defaultGapRate, "Probability that a marker is missing in a frame")
		seed        = flag.Uint64("seed", 1, "Random seed")
		uuids       = flag.Bool("uuid", false, "Use UUID trial ids")
		baseURL     = flag.String("url", "", "Service base URL; when set, POST /analyze and check the counts")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testtrials.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &testtrials.Config{
		OutDir:        *outDir,
		ParticipantID: *participant,
		Trials:        *trials,
		Frames:        *frames,
		FrameRate:     *fps,
		MadeRatio:     *made,
		GapRate:       *gaps,
		Seed:          *seed,
		UUIDs:         *uuids,
		BaseURL:       *baseURL,
		Timeout:       *timeout,
	}

	if _, err := testtrials.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
