// Package features turns raw student inputs into the fixed-order numeric
// vector the scaler and models were fitted on.
package features

// Positions within a FeatureVector. The order is the training order and
// must not change.
const (
	GenderCode = iota
	ParentEducationCode
	StudyHours
	SocialMediaHours
	SleepHours
	AttendancePercent
	MissedDeadlines

	NumFeatures
)

// FeatureNames lists column names in vector order.
var FeatureNames = [NumFeatures]string{
	"gender_code",
	"parent_education_code",
	"study_hours",
	"social_media_hours",
	"sleep_hours",
	"attendance_percent",
	"missed_deadlines",
}

// FeatureVector is one student's encoded inputs. It is an array, so
// assignment copies it and callers cannot alias each other's vectors.
type FeatureVector [NumFeatures]float64

// Slice returns a fresh slice with the vector's values.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

func (v FeatureVector) StudyHours() float64        { return v[StudyHours] }
func (v FeatureVector) SocialMediaHours() float64  { return v[SocialMediaHours] }
func (v FeatureVector) SleepHours() float64        { return v[SleepHours] }
func (v FeatureVector) AttendancePercent() float64 { return v[AttendancePercent] }
func (v FeatureVector) MissedDeadlines() float64   { return v[MissedDeadlines] }
