package features

import (
	"math"
)

// RawInputs are the values a presentation layer collects for one student.
type RawInputs struct {
	Gender            string  `json:"gender"`
	ParentEducation   string  `json:"parent_education"`
	StudyHours        float64 `json:"study_hours"`
	SocialMediaHours  float64 `json:"social_media_hours"`
	SleepHours        float64 `json:"sleep_hours"`
	AttendancePercent float64 `json:"attendance_percent"`
	MissedDeadlines   float64 `json:"missed_deadlines"`
}

// Bounds is an inclusive numeric range.
type Bounds struct {
	Min float64
	Max float64
}

// Input ranges offered by the data-entry form.
var (
	AttendanceBounds      = Bounds{Min: 0, Max: 100}
	StudyHoursBounds      = Bounds{Min: 0, Max: 15}
	SocialMediaBounds     = Bounds{Min: 0, Max: 12}
	SleepHoursBounds      = Bounds{Min: 4, Max: 10}
	MissedDeadlinesBounds = Bounds{Min: 0, Max: 4}
)

// Option applies a configuration option to the Encoder.
type Option func(*Encoder)

// WithRangeValidation makes Encode reject numerics outside the form ranges.
// Off by default: callers usually validate before encoding.
func WithRangeValidation(enabled bool) Option {
	return func(e *Encoder) {
		e.validateRanges = enabled
	}
}

// Encoder maps RawInputs to a FeatureVector.
type Encoder struct {
	gender          *CategoryEncoding
	parentEducation *CategoryEncoding
	validateRanges  bool
}

// NewEncoder creates an encoder over the trained gender and parent
// education encodings.
func NewEncoder(gender, parentEducation *CategoryEncoding, opts ...Option) (*Encoder, error) {
	if gender == nil || parentEducation == nil {
		return nil, ErrMissingEncodings
	}
	e := &Encoder{
		gender:          gender,
		parentEducation: parentEducation,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Encode builds the FeatureVector for in. Unknown labels always fail;
// numeric ranges fail only when range validation is enabled.
func (e *Encoder) Encode(in RawInputs) (FeatureVector, error) {
	var v FeatureVector

	g, err := e.gender.Encode(in.Gender)
	if err != nil {
		return v, err
	}
	p, err := e.parentEducation.Encode(in.ParentEducation)
	if err != nil {
		return v, err
	}

	if e.validateRanges {
		if err := ValidateRanges(in); err != nil {
			return v, err
		}
	}

	v[GenderCode] = float64(g)
	v[ParentEducationCode] = float64(p)
	v[StudyHours] = in.StudyHours
	v[SocialMediaHours] = in.SocialMediaHours
	v[SleepHours] = in.SleepHours
	v[AttendancePercent] = in.AttendancePercent
	v[MissedDeadlines] = in.MissedDeadlines
	return v, nil
}

// ValidateRanges checks every numeric input against the form ranges.
// Missed deadlines must also be a whole number.
func ValidateRanges(in RawInputs) error {
	checks := []struct {
		field  string
		value  float64
		bounds Bounds
	}{
		{"study_hours", in.StudyHours, StudyHoursBounds},
		{"social_media_hours", in.SocialMediaHours, SocialMediaBounds},
		{"sleep_hours", in.SleepHours, SleepHoursBounds},
		{"attendance_percent", in.AttendancePercent, AttendanceBounds},
		{"missed_deadlines", in.MissedDeadlines, MissedDeadlinesBounds},
	}
	for _, c := range checks {
		if !c.bounds.Contains(c.value) {
			return &InvalidRangeError{Field: c.field, Value: c.value, Min: c.bounds.Min, Max: c.bounds.Max}
		}
	}
	if in.MissedDeadlines != math.Trunc(in.MissedDeadlines) {
		return &InvalidRangeError{
			Field: "missed_deadlines",
			Value: in.MissedDeadlines,
			Min:   MissedDeadlinesBounds.Min,
			Max:   MissedDeadlinesBounds.Max,
		}
	}
	return nil
}

// Contains reports whether x lies in b. NaN is never contained.
func (b Bounds) Contains(x float64) bool {
	return x >= b.Min && x <= b.Max
}
