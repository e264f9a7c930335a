package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/freethrow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPoint(t *testing.T) {
	Convey("Given marker positions", t, func() {
		Convey("When a coordinate is NaN", func() {
			p := model.Point{X: 1, Y: math.NaN(), Z: 3}

			Convey("Then the point is missing and encodes as null", func() {
				So(p.Missing(), ShouldBeTrue)
				b, err := json.Marshal(p)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "null")
			})
		})

		Convey("When every coordinate is present", func() {
			p := model.Point{X: 1, Y: 2.5, Z: -3}

			Convey("Then the point encodes as a triple", func() {
				b, err := json.Marshal(p)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "[1,2.5,-3]")
			})

			Convey("Then equality is coordinate-wise", func() {
				So(p.Equal(model.Point{X: 1, Y: 2.5, Z: -3}), ShouldBeTrue)
				So(p.Equal(model.Point{X: 1, Y: 2.5, Z: 3}), ShouldBeFalse)
				So(p.Equal(model.MissingPoint()), ShouldBeFalse)
				So(model.MissingPoint().Equal(model.MissingPoint()), ShouldBeTrue)
			})
		})
	})
}

func TestValue(t *testing.T) {
	Convey("Given optional measurements", t, func() {
		Convey("Then non-finite inputs become missing", func() {
			So(model.ValueOf(math.NaN()).Valid, ShouldBeFalse)
			So(model.ValueOf(math.Inf(1)).Valid, ShouldBeFalse)
			So(model.ValueOf(0).Valid, ShouldBeTrue)
			So(math.IsNaN(model.None().Float()), ShouldBeTrue)
			So(model.Some(2).Float(), ShouldEqual, 2)
		})

		Convey("Then missing encodes as null and round-trips", func() {
			b, err := json.Marshal([]model.Value{model.Some(1.5), model.None()})
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "[1.5,null]")

			var back []model.Value
			So(json.Unmarshal(b, &back), ShouldBeNil)
			So(back, ShouldResemble, []model.Value{model.Some(1.5), model.None()})
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Given outcome labels", t, func() {
		Convey("Then labels are case-insensitive", func() {
			o, err := model.ParseOutcome("Made")
			So(err, ShouldBeNil)
			So(o, ShouldEqual, model.Made)

			o, err = model.ParseOutcome(" missed")
			So(err, ShouldBeNil)
			So(o, ShouldEqual, model.Missed)
		})

		Convey("Then unknown labels are rejected", func() {
			_, err := model.ParseOutcome("blocked")
			So(errors.Is(err, model.ErrUnknownOutcome), ShouldBeTrue)
		})
	})
}

func TestTrialValidate(t *testing.T) {
	Convey("Given trials", t, func() {
		Convey("When a trial has no frames", func() {
			tr := model.Trial{TrialID: "0001", Outcome: model.Made}

			Convey("Then validation fails", func() {
				So(errors.Is(tr.Validate(), model.ErrEmptyTrial), ShouldBeTrue)
			})
		})

		Convey("When a trial has frames and a known outcome", func() {
			tr := model.Trial{TrialID: "0001", Outcome: model.Missed, Frames: []model.Frame{{}}}

			Convey("Then validation passes", func() {
				So(tr.Validate(), ShouldBeNil)
			})
		})

		Convey("When the trial id is blank", func() {
			tr := model.Trial{TrialID: "  ", Outcome: model.Made, Frames: []model.Frame{{}}}

			Convey("Then validation fails", func() {
				So(errors.Is(tr.Validate(), model.ErrMissingTrialID), ShouldBeTrue)
			})
		})

		Convey("When the outcome is unset", func() {
			tr := model.Trial{TrialID: "0001", Frames: []model.Frame{{}}}

			Convey("Then validation fails", func() {
				So(errors.Is(tr.Validate(), model.ErrUnknownOutcome), ShouldBeTrue)
			})
		})
	})
}
