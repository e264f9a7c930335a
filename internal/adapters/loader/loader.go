// Package loader reads free-throw trial documents from disk and converts them
// into domain trials.
//
// A participant directory holds one JSON document per trial. Files are read in
// name order, which is also the trial numbering order.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/okian/freethrow/internal/domain/geometry"
	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
	"github.com/okian/freethrow/pkg/metrics"
)

// DefaultPattern matches trial documents inside a participant directory.
const DefaultPattern = "BB_FT_*.json"

// Marker names used by the tracking documents.
const (
	markerLeftShoulder  = "L_SHOULDER"
	markerRightShoulder = "R_SHOULDER"
	markerRightElbow    = "R_ELBOW"
	markerRightWrist    = "R_WRIST"
	markerFirstFinger   = "R_1STFINGER"
	markerFifthFinger   = "R_5THFINGER"
)

// Loader reads trials for a participant from a data directory.
type Loader struct {
	dataDir string
	pattern string
	logger  logger.Logger
}

// New creates a Loader rooted at dataDir.
func New(dataDir string, opts ...Option) *Loader {
	l := &Loader{
		dataDir: dataDir,
		pattern: DefaultPattern,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("loader")
	}
	return l
}

// LoadParticipant reads every trial document of participantID, in file name order.
// A single malformed document fails the whole load.
func (l *Loader) LoadParticipant(ctx context.Context, participantID string) ([]model.Trial, error) {
	dir := filepath.Join(l.dataDir, participantID)
	paths, err := filepath.Glob(filepath.Join(dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoTrials, dir, l.pattern)
	}
	sort.Strings(paths)

	trials := make([]model.Trial, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load cancelled: %w", err)
		}
		l.logger.Debug(ctx, "loading trial",
			logger.Int("index", i+1),
			logger.Int("total", len(paths)),
			logger.String("path", path),
		)
		trial, err := LoadFile(path)
		if err != nil {
			metrics.RecordErrorByComponent("loader", "malformed_input")
			return nil, err
		}
		if prev, ok := seen[trial.TrialID]; ok {
			metrics.RecordErrorByComponent("loader", "duplicate_trial")
			return nil, fmt.Errorf("%w: %w: %q in %s and %s", ErrMalformedInput, model.ErrDuplicateTrial, trial.TrialID, prev, path)
		}
		seen[trial.TrialID] = path
		metrics.RecordTrialLoaded(string(trial.Outcome))
		trials = append(trials, trial)
	}

	l.logger.Info(ctx, "loaded trials",
		logger.String("participant", participantID),
		logger.Int("trials", len(trials)),
	)
	return trials, nil
}

// LoadFile reads and decodes a single trial document.
func LoadFile(path string) (model.Trial, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Trial{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	trial, err := Decode(f)
	if err != nil {
		return model.Trial{}, fmt.Errorf("%s: %w", path, err)
	}
	return trial, nil
}

// document mirrors the on-disk trial JSON.
type document struct {
	ParticipantID string  `json:"participant_id"`
	TrialID       string  `json:"trial_id"`
	Result        string  `json:"result"`
	Tracking      []track `json:"tracking"`
}

type track struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	Data  struct {
		Player map[string][]*float64 `json:"player"`
	} `json:"data"`
}

// Decode parses one trial document. Null coordinates and absent markers are
// decoded as missing; anything non-numeric is malformed.
func Decode(r io.Reader) (model.Trial, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Trial{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	outcome, err := model.ParseOutcome(doc.Result)
	if err != nil {
		return model.Trial{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	trial := model.Trial{
		ParticipantID: doc.ParticipantID,
		TrialID:       doc.TrialID,
		Outcome:       outcome,
		Frames:        make([]model.Frame, 0, len(doc.Tracking)),
	}
	for i := range doc.Tracking {
		frame, err := toFrame(doc.TrialID, &doc.Tracking[i])
		if err != nil {
			return model.Trial{}, err
		}
		trial.Frames = append(trial.Frames, frame)
	}

	if err := trial.Validate(); err != nil {
		return model.Trial{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return trial, nil
}

func toFrame(trialID string, t *track) (model.Frame, error) {
	markers := make(map[string]model.Point, len(t.Data.Player))
	for name, raw := range t.Data.Player {
		p, err := toPoint(raw)
		if err != nil {
			return model.Frame{}, fmt.Errorf("%w: frame %d marker %s: %v", ErrMalformedInput, t.Frame, name, err)
		}
		markers[name] = p
	}

	marker := func(name string) model.Point {
		if p, ok := markers[name]; ok {
			return p
		}
		return model.MissingPoint()
	}

	return model.Frame{
		TrialID:       trialID,
		Index:         t.Frame,
		Time:          t.Time,
		LeftShoulder:  marker(markerLeftShoulder),
		RightShoulder: marker(markerRightShoulder),
		Elbow:         marker(markerRightElbow),
		Wrist:         marker(markerRightWrist),
		Hand:          geometry.Midpoint(marker(markerFirstFinger), marker(markerFifthFinger)),
	}, nil
}

func toPoint(raw []*float64) (model.Point, error) {
	if raw == nil {
		return model.MissingPoint(), nil
	}
	if len(raw) != 3 {
		return model.Point{}, fmt.Errorf("expected 3 coordinates, got %d", len(raw))
	}
	var xyz [3]float64
	for i, c := range raw {
		if c == nil {
			xyz[i] = math.NaN()
			continue
		}
		if math.IsInf(*c, 0) || math.IsNaN(*c) {
			return model.Point{}, fmt.Errorf("coordinate %d out of range", i)
		}
		xyz[i] = *c
	}
	return model.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
