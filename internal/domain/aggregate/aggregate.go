// Package aggregate reduces per-frame samples into per-trial summaries and
// groups trial summaries by shot outcome.
package aggregate

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/freethrow/internal/domain/deviation"
	"github.com/okian/freethrow/internal/domain/model"
)

// Spread selects the standard deviation convention used for Summary.Spread.
type Spread int

// Supported spread conventions. SampleStdDev divides by n-1, PopulationStdDev by n.
const (
	SampleStdDev Spread = iota
	PopulationStdDev
)

// ParseSpread maps "sample" or "population" to a Spread.
func ParseSpread(s string) (Spread, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sample":
		return SampleStdDev, nil
	case "population":
		return PopulationStdDev, nil
	}
	return SampleStdDev, fmt.Errorf("%w: %q", ErrUnknownSpread, s)
}

func (s Spread) String() string {
	if s == PopulationStdDev {
		return "population"
	}
	return "sample"
}

// Summarize computes count, mean, spread and max over the valid samples.
// Missing samples are skipped. When no sample is valid the returned Summary
// is missing; it is never reported as zero.
//
// With a single valid sample the sample spread is undefined and reported as
// missing, while the population spread is 0.
func Summarize(samples []model.Value, conv Spread) model.Summary {
	xs := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Valid {
			xs = append(xs, s.V)
		}
	}
	if len(xs) == 0 {
		return model.Summary{}
	}

	var mean, std float64
	if conv == PopulationStdDev {
		mean, std = stat.PopMeanStdDev(xs, nil)
	} else {
		mean, std = stat.MeanStdDev(xs, nil)
	}
	return model.Summary{
		Count:  len(xs),
		Mean:   model.ValueOf(mean),
		Spread: model.ValueOf(std),
		Max:    model.ValueOf(floats.Max(xs)),
	}
}

// SummarizeTrial summarizes every joint of an analyzed trial. number is the
// 1-based position of the trial in load order.
func SummarizeTrial(number int, ta *deviation.TrialAnalysis, conv Spread) model.TrialSummary {
	ts := model.TrialSummary{
		Number:           number,
		ParticipantID:    ta.ParticipantID,
		TrialID:          ta.TrialID,
		Outcome:          ta.Outcome,
		Frames:           len(ta.Frames),
		Deviation:        make(map[model.Joint]model.Summary, len(model.Joints())),
		ShoulderDistance: make(map[model.Joint]model.Summary, len(model.Joints())),
	}
	for _, j := range model.Joints() {
		ts.Deviation[j] = Summarize(ta.Deviations(j), conv)
		ts.ShoulderDistance[j] = Summarize(ta.ShoulderDistances(j), conv)
	}
	return ts
}

// Partition splits summaries into made and missed groups. It is a stable
// partition: relative order within each group matches the input.
// Summaries with any other outcome are dropped.
func Partition(summaries []model.TrialSummary) model.Groups {
	var g model.Groups
	for i := range summaries {
		switch summaries[i].Outcome {
		case model.Made:
			g.Made = append(g.Made, summaries[i])
		case model.Missed:
			g.Missed = append(g.Missed, summaries[i])
		}
	}
	return g
}

// Distribution counts trials per outcome. Every known outcome is present.
func Distribution(summaries []model.TrialSummary) map[model.Outcome]int {
	out := make(map[model.Outcome]int, len(model.Outcomes()))
	for _, o := range model.Outcomes() {
		out[o] = 0
	}
	for i := range summaries {
		out[summaries[i].Outcome]++
	}
	return out
}

// Profile summarizes, per outcome and joint, the per-trial deviation spreads
// of a group. Trials whose spread is missing do not contribute.
func Profile(g model.Groups, conv Spread) map[model.Outcome]map[model.Joint]model.Summary {
	return map[model.Outcome]map[model.Joint]model.Summary{
		model.Made:   profileOf(g.Made, conv),
		model.Missed: profileOf(g.Missed, conv),
	}
}

func profileOf(trials []model.TrialSummary, conv Spread) map[model.Joint]model.Summary {
	out := make(map[model.Joint]model.Summary, len(model.Joints()))
	for _, j := range model.Joints() {
		spreads := make([]model.Value, len(trials))
		for i := range trials {
			spreads[i] = trials[i].Deviation[j].Spread
		}
		out[j] = Summarize(spreads, conv)
	}
	return out
}
