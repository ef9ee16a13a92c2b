package prediction_test

import (
	"errors"
	"testing"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/internal/domain/inference/inferencetest"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndicators(t *testing.T) {
	Convey("Given the digital balance ratio", t, func() {
		So(prediction.DigitalBalanceRatio(5, 2), ShouldEqual, 2.0)
		So(prediction.DigitalBalanceRatio(3, 0), ShouldEqual, 6.0)
	})

	Convey("Given a full vector", t, func() {
		ind := prediction.ComputeIndicators(features.FeatureVector{0, 0, 5, 2, 7, 85, 0})
		So(ind.DigitalBalanceRatio, ShouldEqual, 2.0)
		So(ind.Radar.Sleep, ShouldEqual, 0.7)
		So(ind.Radar.Attendance, ShouldEqual, 0.85)
	})
}

func TestRadarDimensions(t *testing.T) {
	Convey("Given a vector at half of each scale", t, func() {
		v := features.FeatureVector{0, 0, 6, 3, 5, 50, 0}
		r := prediction.RadarDimensions(v)

		Convey("Then each dimension follows its formula", func() {
			So(r.Study, ShouldEqual, 0.5)
			So(r.Attendance, ShouldEqual, 0.5)
			So(r.Sleep, ShouldEqual, 0.5)
			So(r.DigitalControl, ShouldEqual, 0.75)
			So(r.Deadlines, ShouldEqual, 1.0)
		})
	})

	Convey("Given five missed deadlines", t, func() {
		var v features.FeatureVector
		v[features.MissedDeadlines] = 5
		So(prediction.RadarDimensions(v).Deadlines, ShouldEqual, 0.0)
	})

	Convey("Given inputs beyond the form ranges", t, func() {
		var v features.FeatureVector
		v[features.SocialMediaHours] = 15
		v[features.StudyHours] = 15

		Convey("Then values leave [0, 1] unclamped", func() {
			r := prediction.RadarDimensions(v)
			So(r.DigitalControl, ShouldEqual, -0.25)
			So(r.Study, ShouldEqual, 1.25)
		})
	})
}

func TestProgress(t *testing.T) {
	Convey("Given scores around the bar's range", t, func() {
		So(prediction.Progress(86), ShouldEqual, 0.86)
		So(prediction.Progress(100), ShouldEqual, 1)
		So(prediction.Progress(140), ShouldEqual, 1)
		So(prediction.Progress(-3), ShouldEqual, 0)
	})
}

func TestOrchestrator(t *testing.T) {
	Convey("Given an orchestrator over the fixture artifacts", t, func() {
		o, err := prediction.New(inferencetest.ArtifactSet())
		So(err, ShouldBeNil)

		Convey("When running the baseline student", func() {
			rep, err := o.Run(inferencetest.Baseline())

			Convey("Then prediction and indicators are produced", func() {
				So(err, ShouldBeNil)
				So(rep.Features, ShouldResemble, features.FeatureVector{0, 0, 5, 2, 7, 85, 0})
				So(rep.Prediction.PredictedScore, ShouldEqual, inferencetest.BaselineScore)
				So(rep.Prediction.RiskLabel, ShouldEqual, inferencetest.BaselineRisk)
				So(rep.Indicators.DigitalBalanceRatio, ShouldEqual, 2.0)
				So(rep.Indicators.Radar.Deadlines, ShouldEqual, 1.0)
			})

			Convey("And the run is reproducible", func() {
				again, err := o.Run(inferencetest.Baseline())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, rep)
			})
		})

		Convey("When the gender label is unknown", func() {
			in := inferencetest.Baseline()
			in.Gender = "Other"
			_, err := o.Run(in)

			Convey("Then the request fails instead of defaulting", func() {
				So(errors.Is(err, features.ErrUnknownCategory), ShouldBeTrue)
				var uc *features.UnknownCategoryError
				So(errors.As(err, &uc), ShouldBeTrue)
				So(uc.Label, ShouldEqual, "Other")
			})
		})

		Convey("When running a scenario", func() {
			rep, err := o.RunScenario(inferencetest.Baseline(), simulation.Deltas{StudyHours: 1, AttendancePercent: 5})

			Convey("Then the scenario sits on top of the baseline", func() {
				So(err, ShouldBeNil)
				So(rep.Prediction.PredictedScore, ShouldEqual, 79)
				So(rep.Scenario.Prediction.PredictedScore, ShouldEqual, 86)
				So(rep.Scenario.DeltaScore, ShouldEqual, 7)
				So(rep.Progress, ShouldEqual, 0.86)
				So(rep.ScenarioIndicators.Radar.Attendance, ShouldEqual, 0.9)
				So(rep.Features.AttendancePercent(), ShouldEqual, 85)
			})
		})

		Convey("When a scenario delta is negative", func() {
			_, err := o.RunScenario(inferencetest.Baseline(), simulation.Deltas{StudyHours: -2})
			So(errors.Is(err, features.ErrInvalidRange), ShouldBeTrue)
		})
	})

	Convey("Given range validation is enabled", t, func() {
		o, err := prediction.New(inferencetest.ArtifactSet(), prediction.WithRangeValidation(true))
		So(err, ShouldBeNil)
		in := inferencetest.Baseline()
		in.SleepHours = 2

		_, err = o.Run(in)
		So(errors.Is(err, features.ErrInvalidRange), ShouldBeTrue)
	})

	Convey("Given no artifacts", t, func() {
		_, err := prediction.New(nil)
		So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
	})

	Convey("Given a zero-value orchestrator", t, func() {
		var o *prediction.Orchestrator
		_, err := o.Run(inferencetest.Baseline())
		So(errors.Is(err, prediction.ErrNotReady), ShouldBeTrue)
	})
}
