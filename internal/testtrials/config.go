package testtrials

import "time"

// Config holds configuration for synthetic trial generation.
type Config struct {
	OutDir        string  // Root data directory; files go to OutDir/ParticipantID
	ParticipantID string  // Participant directory and document participant_id
	Trials        int     // Number of trial documents
	Frames        int     // Frames per trial
	FrameRate     float64 // Frames per second, sets the frame time step
	MadeRatio     float64 // Fraction of trials labelled made
	GapRate       float64 // Probability that a marker is null in a frame
	Seed          uint64  // Seed for every random draw; equal seeds give equal output
	UUIDs         bool    // Use UUID trial ids instead of sequential numbers

	// BaseURL, when set, triggers POST /analyze on a running service after
	// writing and checks the reported outcome counts.
	BaseURL string
	Timeout time.Duration
}

// Document is one trial file in the on-disk format read by the loader.
type Document struct {
	ParticipantID string  `json:"participant_id"`
	TrialID       string  `json:"trial_id"`
	Result        string  `json:"result"`
	Tracking      []Track `json:"tracking"`
}

// Track is a single motion-capture frame.
type Track struct {
	Frame int       `json:"frame"`
	Time  float64   `json:"time"`
	Data  TrackData `json:"data"`
}

// TrackData carries the body markers and the ball position. A nil marker
// encodes as null.
type TrackData struct {
	Player map[string][]*float64 `json:"player"`
	Ball   []*float64            `json:"ball"`
}

// Stats summarizes a generation run.
type Stats struct {
	Trials int
	Made   int
	Missed int
	Frames int
	Gaps   int
	Files  []string
}
