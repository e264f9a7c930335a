package aggregate_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/okian/freethrow/internal/domain/aggregate"
	"github.com/okian/freethrow/internal/domain/deviation"
	"github.com/okian/freethrow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func values(xs ...float64) []model.Value {
	out := make([]model.Value, len(xs))
	for i, x := range xs {
		out[i] = model.ValueOf(x)
	}
	return out
}

func TestSummarize(t *testing.T) {
	Convey("Given deviations [1.0, 2.0, 3.0]", t, func() {
		samples := values(1, 2, 3)

		Convey("When summarized with the sample convention", func() {
			s := aggregate.Summarize(samples, aggregate.SampleStdDev)

			Convey("Then mean is 2 and spread is the n-1 standard deviation", func() {
				So(s.Count, ShouldEqual, 3)
				So(s.Mean.V, ShouldAlmostEqual, 2.0)
				So(s.Spread.Valid, ShouldBeTrue)
				So(s.Spread.V, ShouldAlmostEqual, 1.0)
				So(s.Max, ShouldResemble, model.Some(3))
			})
		})

		Convey("When summarized with the population convention", func() {
			s := aggregate.Summarize(samples, aggregate.PopulationStdDev)

			Convey("Then mean is 2 and spread is the n standard deviation", func() {
				So(s.Mean.V, ShouldAlmostEqual, 2.0)
				So(s.Spread.V, ShouldAlmostEqual, math.Sqrt(2.0/3.0))
			})
		})

		Convey("When some samples are missing", func() {
			gappy := append(values(1, math.NaN()), values(2, 3)...)
			gappy = append(gappy, model.None())

			Convey("Then missing samples are ignored rather than treated as zero", func() {
				s := aggregate.Summarize(gappy, aggregate.SampleStdDev)
				So(s.Count, ShouldEqual, 3)
				So(s.Mean.V, ShouldAlmostEqual, 2.0)
				So(s.Spread.V, ShouldAlmostEqual, 1.0)
			})
		})
	})

	Convey("Given a trial where every sample is missing", t, func() {
		samples := []model.Value{model.None(), model.None(), model.None()}

		Convey("Then the summary is missing, not zero", func() {
			for _, conv := range []aggregate.Spread{aggregate.SampleStdDev, aggregate.PopulationStdDev} {
				s := aggregate.Summarize(samples, conv)
				So(s.Missing(), ShouldBeTrue)
				So(s.Mean.Valid, ShouldBeFalse)
				So(s.Spread.Valid, ShouldBeFalse)
				So(s.Max.Valid, ShouldBeFalse)
			}
		})
	})

	Convey("Given an empty sequence", t, func() {
		Convey("Then the summary is missing", func() {
			So(aggregate.Summarize(nil, aggregate.SampleStdDev).Missing(), ShouldBeTrue)
		})
	})

	Convey("Given a single valid sample", t, func() {
		samples := values(4.5)

		Convey("Then the sample spread is undefined", func() {
			s := aggregate.Summarize(samples, aggregate.SampleStdDev)
			So(s.Mean, ShouldResemble, model.Some(4.5))
			So(s.Spread.Valid, ShouldBeFalse)
		})

		Convey("Then the population spread is zero", func() {
			s := aggregate.Summarize(samples, aggregate.PopulationStdDev)
			So(s.Spread, ShouldResemble, model.Some(0))
		})
	})
}

func TestParseSpread(t *testing.T) {
	Convey("Given spread labels", t, func() {
		Convey("Then known labels parse", func() {
			s, err := aggregate.ParseSpread("sample")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, aggregate.SampleStdDev)

			s, err = aggregate.ParseSpread(" Population ")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, aggregate.PopulationStdDev)
			So(s.String(), ShouldEqual, "population")
		})

		Convey("Then unknown labels fail", func() {
			_, err := aggregate.ParseSpread("mad")
			So(errors.Is(err, aggregate.ErrUnknownSpread), ShouldBeTrue)
		})
	})
}

func TestSummarizeTrial(t *testing.T) {
	Convey("Given an analyzed trial", t, func() {
		trial := model.Trial{
			ParticipantID: "P0001",
			TrialID:       "0007",
			Outcome:       model.Missed,
		}
		for i, y := range []float64{1, 2, 3} {
			trial.Frames = append(trial.Frames, model.Frame{
				Index:         i,
				LeftShoulder:  model.Point{X: 0, Y: 0, Z: 0},
				RightShoulder: model.Point{X: 2, Y: 0, Z: 0},
				Elbow:         model.Point{X: 1, Y: y, Z: 0},
				Wrist:         model.MissingPoint(),
				Hand:          model.Point{X: 1, Y: 0, Z: 1},
			})
		}
		ta := deviation.AnalyzeTrial(&trial)

		Convey("When summarized", func() {
			ts := aggregate.SummarizeTrial(7, &ta, aggregate.SampleStdDev)

			Convey("Then identity and frame count are carried through", func() {
				So(ts.Number, ShouldEqual, 7)
				So(ts.TrialID, ShouldEqual, "0007")
				So(ts.Outcome, ShouldEqual, model.Missed)
				So(ts.Frames, ShouldEqual, 3)
			})

			Convey("Then the elbow summary matches the synthetic deviations", func() {
				So(ts.Deviation[model.Elbow].Mean.V, ShouldAlmostEqual, 2.0)
				So(ts.Deviation[model.Elbow].Spread.V, ShouldAlmostEqual, 1.0)
				So(ts.Deviation[model.Elbow].Max.V, ShouldAlmostEqual, 3.0)
			})

			Convey("Then the always-missing wrist yields a missing summary", func() {
				So(ts.Deviation[model.Wrist].Missing(), ShouldBeTrue)
				So(ts.ShoulderDistance[model.Wrist].Missing(), ShouldBeTrue)
			})

			Convey("Then a constant hand deviation has zero spread", func() {
				So(ts.Deviation[model.Hand].Spread, ShouldResemble, model.Some(0))
			})
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Given 10 trials with outcomes made x6 and missed x4", t, func() {
		outcomes := []model.Outcome{
			model.Made, model.Missed, model.Made, model.Made, model.Missed,
			model.Made, model.Missed, model.Made, model.Missed, model.Made,
		}
		summaries := make([]model.TrialSummary, len(outcomes))
		for i, o := range outcomes {
			summaries[i] = model.TrialSummary{Number: i + 1, TrialID: fmt.Sprintf("%04d", i+1), Outcome: o}
		}

		Convey("When partitioned", func() {
			g := aggregate.Partition(summaries)

			Convey("Then group sizes are 6 and 4", func() {
				So(len(g.Made), ShouldEqual, 6)
				So(len(g.Missed), ShouldEqual, 4)
				So(g.Len(), ShouldEqual, 10)
			})

			Convey("Then relative input order is preserved", func() {
				var made, missed []int
				for _, s := range g.Made {
					made = append(made, s.Number)
				}
				for _, s := range g.Missed {
					missed = append(missed, s.Number)
				}
				So(made, ShouldResemble, []int{1, 3, 4, 6, 8, 10})
				So(missed, ShouldResemble, []int{2, 5, 7, 9})
			})
		})

		Convey("When the distribution is counted", func() {
			d := aggregate.Distribution(summaries)

			Convey("Then it reports 6 made and 4 missed", func() {
				So(d[model.Made], ShouldEqual, 6)
				So(d[model.Missed], ShouldEqual, 4)
			})
		})
	})

	Convey("Given no trials", t, func() {
		Convey("Then groups are empty and the distribution reports zeros", func() {
			So(aggregate.Partition(nil).Len(), ShouldEqual, 0)
			d := aggregate.Distribution(nil)
			So(d[model.Made], ShouldEqual, 0)
			So(d[model.Missed], ShouldEqual, 0)
		})
	})
}

func TestProfile(t *testing.T) {
	Convey("Given grouped trials with known elbow spreads", t, func() {
		mk := func(o model.Outcome, spread model.Value) model.TrialSummary {
			return model.TrialSummary{
				Outcome: o,
				Deviation: map[model.Joint]model.Summary{
					model.Elbow: {Count: 3, Spread: spread},
				},
			}
		}
		g := aggregate.Partition([]model.TrialSummary{
			mk(model.Made, model.Some(0.1)),
			mk(model.Missed, model.Some(0.4)),
			mk(model.Made, model.Some(0.3)),
			mk(model.Missed, model.None()),
		})

		Convey("When profiled", func() {
			p := aggregate.Profile(g, aggregate.SampleStdDev)

			Convey("Then each outcome summarizes its trials' spreads", func() {
				So(p[model.Made][model.Elbow].Count, ShouldEqual, 2)
				So(p[model.Made][model.Elbow].Mean.V, ShouldAlmostEqual, 0.2)
				So(p[model.Missed][model.Elbow].Count, ShouldEqual, 1)
				So(p[model.Missed][model.Elbow].Mean.V, ShouldAlmostEqual, 0.4)
			})

			Convey("Then joints without data are missing", func() {
				So(p[model.Made][model.Wrist].Missing(), ShouldBeTrue)
			})
		})
	})
}
