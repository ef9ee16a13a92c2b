package features_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/edupredict/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func mustEncoding(name string, labels ...string) *features.CategoryEncoding {
	e, err := features.NewCategoryEncoding(name, labels)
	if err != nil {
		panic(err)
	}
	return e
}

func baselineInputs() features.RawInputs {
	return features.RawInputs{
		Gender:            "Female",
		ParentEducation:   "Bachelor",
		StudyHours:        5.0,
		SocialMediaHours:  2.0,
		SleepHours:        7.0,
		AttendancePercent: 85,
		MissedDeadlines:   0,
	}
}

func TestCategoryEncoding(t *testing.T) {
	Convey("Given a gender encoding", t, func() {
		enc := mustEncoding(features.EncodingGender, "Female", "Male", "Other")

		Convey("When encoding known labels", func() {
			Convey("Then codes follow canonical order", func() {
				for i, l := range []string{"Female", "Male", "Other"} {
					code, err := enc.Encode(l)
					So(err, ShouldBeNil)
					So(code, ShouldEqual, i)
				}
			})
		})

		Convey("When encoding an unknown label", func() {
			_, err := enc.Encode("female")

			Convey("Then it fails with UnknownCategoryError", func() {
				So(errors.Is(err, features.ErrUnknownCategory), ShouldBeTrue)
				var uc *features.UnknownCategoryError
				So(errors.As(err, &uc), ShouldBeTrue)
				So(uc.Encoding, ShouldEqual, features.EncodingGender)
				So(uc.Label, ShouldEqual, "female")
			})
		})

		Convey("When decoding", func() {
			l, err := enc.Decode(1)
			So(err, ShouldBeNil)
			So(l, ShouldEqual, "Male")

			_, err = enc.Decode(3)
			So(errors.Is(err, features.ErrUnknownCategory), ShouldBeTrue)
			_, err = enc.Decode(-1)
			So(err, ShouldNotBeNil)
		})

		Convey("When mutating the returned labels", func() {
			labels := enc.Labels()
			labels[0] = "changed"

			Convey("Then the encoding is unaffected", func() {
				So(enc.Labels()[0], ShouldEqual, "Female")
				So(enc.Len(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given invalid label sets", t, func() {
		_, err := features.NewCategoryEncoding("x", nil)
		So(errors.Is(err, features.ErrInvalidEncoding), ShouldBeTrue)

		_, err = features.NewCategoryEncoding("x", []string{"a", "a"})
		So(errors.Is(err, features.ErrInvalidEncoding), ShouldBeTrue)

		_, err = features.NewCategoryEncoding("x", []string{"a", " "})
		So(errors.Is(err, features.ErrInvalidEncoding), ShouldBeTrue)
	})
}

func TestEncoder_Encode(t *testing.T) {
	Convey("Given an encoder over the trained encodings", t, func() {
		gender := mustEncoding(features.EncodingGender, "Female", "Male")
		parent := mustEncoding(features.EncodingParentEducation, "Bachelor", "High School", "Master", "PhD")
		enc, err := features.NewEncoder(gender, parent)
		So(err, ShouldBeNil)

		Convey("When encoding the baseline student", func() {
			v, err := enc.Encode(baselineInputs())

			Convey("Then fields land in training order", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, features.FeatureVector{0, 0, 5.0, 2.0, 7.0, 85, 0})
				So(v.StudyHours(), ShouldEqual, 5.0)
				So(v.AttendancePercent(), ShouldEqual, 85)
			})
		})

		Convey("When the gender label is unknown", func() {
			in := baselineInputs()
			in.Gender = "Unknown"
			_, err := enc.Encode(in)

			Convey("Then it fails instead of defaulting", func() {
				So(errors.Is(err, features.ErrUnknownCategory), ShouldBeTrue)
			})
		})

		Convey("When the parent education label is unknown", func() {
			in := baselineInputs()
			in.ParentEducation = "Kindergarten"
			_, err := enc.Encode(in)

			So(errors.Is(err, features.ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("When numerics are out of range without validation", func() {
			in := baselineInputs()
			in.SocialMediaHours = 20
			v, err := enc.Encode(in)

			Convey("Then the value passes through untouched", func() {
				So(err, ShouldBeNil)
				So(v.SocialMediaHours(), ShouldEqual, 20)
			})
		})
	})

	Convey("Given an encoder with range validation", t, func() {
		gender := mustEncoding(features.EncodingGender, "Female", "Male")
		parent := mustEncoding(features.EncodingParentEducation, "Bachelor", "Master")
		enc, err := features.NewEncoder(gender, parent, features.WithRangeValidation(true))
		So(err, ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(*features.RawInputs)
		}{
			{"attendance", func(in *features.RawInputs) { in.AttendancePercent = 101 }},
			{"study", func(in *features.RawInputs) { in.StudyHours = -1 }},
			{"social", func(in *features.RawInputs) { in.SocialMediaHours = 12.5 }},
			{"sleep", func(in *features.RawInputs) { in.SleepHours = 3 }},
			{"deadlines", func(in *features.RawInputs) { in.MissedDeadlines = 5 }},
			{"fractional", func(in *features.RawInputs) { in.MissedDeadlines = 1.5 }},
			{"not a number", func(in *features.RawInputs) { in.StudyHours = math.NaN() }},
		}
		for _, tc := range cases {
			Convey("When "+tc.name+" is invalid", func() {
				in := baselineInputs()
				tc.mutate(&in)
				_, err := enc.Encode(in)

				Convey("Then it fails with InvalidRangeError", func() {
					So(errors.Is(err, features.ErrInvalidRange), ShouldBeTrue)
				})
			})
		}

		Convey("When inputs sit on the range edges", func() {
			in := baselineInputs()
			in.AttendancePercent = 100
			in.StudyHours = 15
			in.SleepHours = 4
			in.MissedDeadlines = 4
			_, err := enc.Encode(in)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given missing encodings", t, func() {
		_, err := features.NewEncoder(nil, nil)
		So(errors.Is(err, features.ErrMissingEncodings), ShouldBeTrue)
	})
}

func TestFeatureVector_Slice(t *testing.T) {
	Convey("Given a feature vector", t, func() {
		v := features.FeatureVector{1, 2, 3, 4, 5, 6, 7}

		Convey("When the slice is modified", func() {
			s := v.Slice()
			s[0] = 99

			Convey("Then the vector keeps its value", func() {
				So(v[features.GenderCode], ShouldEqual, 1)
				So(len(s), ShouldEqual, features.NumFeatures)
			})
		})
	})
}
