package prediction

import "github.com/okian/edupredict/internal/domain/features"

// Indicator formula constants.
const (
	balanceSmoothing   = 0.5
	radarStudyHours    = 12
	radarAttendance    = 100
	radarSleepHours    = 10
	radarSocialHours   = 12
	radarDeadlineLimit = 5
)

// Radar holds the five chart dimensions. Each is nominally in [0, 1] but is
// not clamped: inputs past the form ranges push a value outside.
type Radar struct {
	Study          float64 `json:"study"`
	Attendance     float64 `json:"attendance"`
	Sleep          float64 `json:"sleep"`
	DigitalControl float64 `json:"digital_control"`
	Deadlines      float64 `json:"deadlines"`
}

// Indicators are the derived, user-facing numbers shown next to a prediction.
type Indicators struct {
	DigitalBalanceRatio float64 `json:"digital_balance_ratio"`
	Radar               Radar   `json:"radar"`
}

// DigitalBalanceRatio is study time per hour of social media. The 0.5 keeps
// the ratio finite when social media time is zero.
func DigitalBalanceRatio(studyHours, socialMediaHours float64) float64 {
	return studyHours / (socialMediaHours + balanceSmoothing)
}

// RadarDimensions computes the chart dimensions for v.
func RadarDimensions(v features.FeatureVector) Radar {
	return Radar{
		Study:          v.StudyHours() / radarStudyHours,
		Attendance:     v.AttendancePercent() / radarAttendance,
		Sleep:          v.SleepHours() / radarSleepHours,
		DigitalControl: (radarSocialHours - v.SocialMediaHours()) / radarSocialHours,
		Deadlines:      (radarDeadlineLimit - v.MissedDeadlines()) / radarDeadlineLimit,
	}
}

// ComputeIndicators derives every indicator for v.
func ComputeIndicators(v features.FeatureVector) Indicators {
	return Indicators{
		DigitalBalanceRatio: DigitalBalanceRatio(v.StudyHours(), v.SocialMediaHours()),
		Radar:               RadarDimensions(v),
	}
}

// Progress maps a score onto a progress bar: score/100 capped to [0, 1].
func Progress(score float64) float64 {
	p := score / 100
	switch {
	case p > 1:
		return 1
	case p < 0:
		return 0
	}
	return p
}
