// Package deviation computes per-frame shooting-arm deviations from the
// shoulder midpoint.
package deviation

import (
	"github.com/okian/freethrow/internal/domain/geometry"
	"github.com/okian/freethrow/internal/domain/model"
)

// FrameAnalysis holds the measurements derived from a single frame.
// Each frame is analyzed independently; no smoothing is applied.
type FrameAnalysis struct {
	Index            int                         `json:"frame"`
	Time             float64                     `json:"time"`
	Midpoint         model.Point                 `json:"shoulder_midpoint"`
	Deviation        map[model.Joint]model.Value `json:"deviation"`
	ShoulderDistance map[model.Joint]model.Value `json:"shoulder_distance"`
}

// TrialAnalysis is the ordered sequence of frame analyses for one trial.
type TrialAnalysis struct {
	ParticipantID string          `json:"participant_id"`
	TrialID       string          `json:"trial_id"`
	Outcome       model.Outcome   `json:"result"`
	Frames        []FrameAnalysis `json:"frames"`
}

// AnalyzeFrame measures the elbow, wrist and hand against the shoulder
// midpoint and against the right shoulder.
func AnalyzeFrame(f *model.Frame) FrameAnalysis {
	mid := geometry.Midpoint(f.LeftShoulder, f.RightShoulder)
	fa := FrameAnalysis{
		Index:            f.Index,
		Time:             f.Time,
		Midpoint:         mid,
		Deviation:        make(map[model.Joint]model.Value, len(model.Joints())),
		ShoulderDistance: make(map[model.Joint]model.Value, len(model.Joints())),
	}
	for _, j := range model.Joints() {
		p := f.Joint(j)
		fa.Deviation[j] = geometry.Deviation(p, mid)
		fa.ShoulderDistance[j] = geometry.Deviation(p, f.RightShoulder)
	}
	return fa
}

// AnalyzeTrial analyzes every frame of t in order.
func AnalyzeTrial(t *model.Trial) TrialAnalysis {
	ta := TrialAnalysis{
		ParticipantID: t.ParticipantID,
		TrialID:       t.TrialID,
		Outcome:       t.Outcome,
		Frames:        make([]FrameAnalysis, len(t.Frames)),
	}
	for i := range t.Frames {
		ta.Frames[i] = AnalyzeFrame(&t.Frames[i])
	}
	return ta
}

// Deviations returns the per-frame deviation samples of joint j, in frame order.
func (ta *TrialAnalysis) Deviations(j model.Joint) []model.Value {
	out := make([]model.Value, len(ta.Frames))
	for i := range ta.Frames {
		out[i] = ta.Frames[i].Deviation[j]
	}
	return out
}

// ShoulderDistances returns the per-frame joint to right-shoulder distances of j.
func (ta *TrialAnalysis) ShoulderDistances(j model.Joint) []model.Value {
	out := make([]model.Value, len(ta.Frames))
	for i := range ta.Frames {
		out[i] = ta.Frames[i].ShoulderDistance[j]
	}
	return out
}

// MissingSamples counts the frames where the deviation of j could not be computed.
func (ta *TrialAnalysis) MissingSamples(j model.Joint) int {
	n := 0
	for i := range ta.Frames {
		if !ta.Frames[i].Deviation[j].Valid {
			n++
		}
	}
	return n
}
