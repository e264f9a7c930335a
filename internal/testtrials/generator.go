package testtrials

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Marker names written into each frame.
const (
	markerLeftShoulder  = "L_SHOULDER"
	markerRightShoulder = "R_SHOULDER"
	markerElbow         = "R_ELBOW"
	markerWrist         = "R_WRIST"
	markerFirstFinger   = "R_1STFINGER"
	markerFifthFinger   = "R_5THFINGER"
)

// Noise levels, in metres, of the shooting arm around its nominal path.
const (
	madeNoise   = 0.01
	missedNoise = 0.04
	bodyNoise   = 0.002
)

type vec [3]float64

func (v vec) add(o vec) vec { return vec{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v vec) lerp(o vec, t float64) vec {
	return vec{v[0] + (o[0]-v[0])*t, v[1] + (o[1]-v[1])*t, v[2] + (o[2]-v[2])*t}
}

// Nominal shooting motion from set point (t=0) to release (t=1).
var (
	leftShoulder  = vec{-0.20, 1.45, 0}
	rightShoulder = vec{0.20, 1.45, 0}
	elbowSet      = vec{0.25, 1.30, 0.20}
	elbowRelease  = vec{0.22, 1.75, 0.15}
	wristSet      = vec{0.20, 1.55, 0.25}
	wristRelease  = vec{0.18, 2.05, 0.25}
	fingerOffset  = vec{0.03, 0.08, 0.02}
	fifthOffset   = vec{-0.03, 0.07, 0.01}
	ballOffset    = vec{0, 0.12, 0.05}
)

type generator struct {
	cfg *Config
	rng *rand.Rand
	src *rand.ChaCha8
}

func newGenerator(cfg *Config) *generator {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	return &generator{cfg: cfg, rng: rand.New(src), src: src}
}

// Generate builds cfg.Trials documents. The result depends only on cfg.
func Generate(cfg *Config) ([]Document, Stats, error) {
	if cfg.Trials < 1 || cfg.Frames < 1 {
		return nil, Stats{}, fmt.Errorf("%w: trials and frames must be positive", ErrInvalidConfig)
	}
	if cfg.MadeRatio < 0 || cfg.MadeRatio > 1 || cfg.GapRate < 0 || cfg.GapRate > 1 {
		return nil, Stats{}, fmt.Errorf("%w: ratios must be within [0,1]", ErrInvalidConfig)
	}
	if cfg.FrameRate <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: frame rate must be positive", ErrInvalidConfig)
	}

	g := newGenerator(cfg)
	docs := make([]Document, cfg.Trials)
	var stats Stats
	for i := range docs {
		id, err := g.trialID(i)
		if err != nil {
			return nil, Stats{}, err
		}
		made := g.rng.Float64() < cfg.MadeRatio
		docs[i] = g.trial(id, made, &stats)
		if made {
			stats.Made++
		} else {
			stats.Missed++
		}
	}
	stats.Trials = len(docs)
	return docs, stats, nil
}

func (g *generator) trialID(i int) (string, error) {
	if !g.cfg.UUIDs {
		return fmt.Sprintf("%04d", i+1), nil
	}
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "", fmt.Errorf("trial id: %w", err)
	}
	return id.String(), nil
}

func (g *generator) trial(id string, made bool, stats *Stats) Document {
	noise := missedNoise
	result := "missed"
	if made {
		noise = madeNoise
		result = "made"
	}

	doc := Document{
		ParticipantID: g.cfg.ParticipantID,
		TrialID:       id,
		Result:        result,
		Tracking:      make([]Track, g.cfg.Frames),
	}
	step := 1 / g.cfg.FrameRate
	for f := range doc.Tracking {
		t := 0.0
		if g.cfg.Frames > 1 {
			t = float64(f) / float64(g.cfg.Frames-1)
		}
		elbow := elbowSet.lerp(elbowRelease, t).add(g.jitter(noise))
		wrist := wristSet.lerp(wristRelease, t).add(g.jitter(noise))

		player := map[string][]*float64{
			markerLeftShoulder:  g.marker(leftShoulder.add(g.jitter(bodyNoise)), stats),
			markerRightShoulder: g.marker(rightShoulder.add(g.jitter(bodyNoise)), stats),
			markerElbow:         g.marker(elbow, stats),
			markerWrist:         g.marker(wrist, stats),
			markerFirstFinger:   g.marker(wrist.add(fingerOffset).add(g.jitter(noise/2)), stats),
			markerFifthFinger:   g.marker(wrist.add(fifthOffset).add(g.jitter(noise/2)), stats),
		}
		doc.Tracking[f] = Track{
			Frame: f,
			Time:  float64(f) * step,
			Data:  TrackData{Player: player, Ball: coords(wrist.add(ballOffset))},
		}
		stats.Frames++
	}
	return doc
}

func (g *generator) jitter(sigma float64) vec {
	return vec{g.rng.NormFloat64() * sigma, g.rng.NormFloat64() * sigma, g.rng.NormFloat64() * sigma}
}

// marker returns the coordinates of p, or nil when the marker drops out.
func (g *generator) marker(p vec, stats *Stats) []*float64 {
	if g.cfg.GapRate > 0 && g.rng.Float64() < g.cfg.GapRate {
		stats.Gaps++
		return nil
	}
	return coords(p)
}

func coords(p vec) []*float64 {
	x, y, z := p[0], p[1], p[2]
	return []*float64{&x, &y, &z}
}
