package main

import (
	"fmt"

	"github.com/okian/edupredict/internal/config"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/simulation"
	"github.com/urfave/cli/v3"
)

const (
	flagDebug    = "debug"
	flagModel    = "model"
	flagDB       = "db"
	flagValidate = "validate-ranges"

	flagGender           = "gender"
	flagParentEducation  = "parent-education"
	flagStudyHours       = "study-hours"
	flagSocialMediaHours = "social-media-hours"
	flagSleepHours       = "sleep-hours"
	flagAttendance       = "attendance"
	flagMissedDeadlines  = "missed-deadlines"

	flagStudyDelta      = "study-delta"
	flagAttendanceDelta = "attendance-delta"

	flagUser  = "user"
	flagID    = "id"
	flagLimit = "limit"
)

// Flags are built per app; urfave flags keep parsed state.
func globalFlags() []cli.Flag {
	defaults := config.New()
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "Prints verbose logs to stderr",
		},
		&cli.StringFlag{
			Name:    flagModel,
			Usage:   "Path to the model artifact bundle",
			Value:   defaults.ArtifactPath,
			Sources: cli.EnvVars(config.EnvPrefix + "ARTIFACT_PATH"),
		},
		&cli.StringFlag{
			Name:    flagDB,
			Usage:   "Path to the SQLite history database",
			Value:   defaults.HistoryDSN,
			Sources: cli.EnvVars(config.EnvPrefix + "HISTORY_DSN"),
		},
		&cli.BoolFlag{
			Name:    flagValidate,
			Usage:   "Reject numeric inputs outside the form ranges",
			Value:   defaults.ValidateRanges,
			Sources: cli.EnvVars(config.EnvPrefix + "VALIDATE_RANGES"),
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagGender, Usage: "Gender label, e.g. Female", Required: true},
		&cli.StringFlag{Name: flagParentEducation, Usage: "Parent education label, e.g. Bachelor", Required: true},
		&cli.FloatFlag{Name: flagStudyHours, Usage: "Daily study hours " + rangeText(features.StudyHoursBounds), Required: true},
		&cli.FloatFlag{Name: flagSocialMediaHours, Usage: "Daily social media hours " + rangeText(features.SocialMediaBounds), Required: true},
		&cli.FloatFlag{Name: flagSleepHours, Usage: "Nightly sleep hours " + rangeText(features.SleepHoursBounds), Required: true},
		&cli.FloatFlag{Name: flagAttendance, Usage: "Attendance percent " + rangeText(features.AttendanceBounds), Required: true},
		&cli.FloatFlag{Name: flagMissedDeadlines, Usage: "Missed deadlines, whole number " + rangeText(features.MissedDeadlinesBounds), Required: true},
	}
}

func rangeText(b features.Bounds) string {
	return fmt.Sprintf("(%g-%g)", b.Min, b.Max)
}

func deltaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{Name: flagStudyDelta, Usage: "Extra daily study hours"},
		&cli.FloatFlag{Name: flagAttendanceDelta, Usage: "Extra attendance percentage points"},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{Name: flagUser, Usage: "User the log belongs to", Required: true}
}

func recordIDFlag() cli.Flag {
	return &cli.StringFlag{Name: flagID, Usage: "Record id; repeating an id is a no-op (optional, generated when empty)"}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{Name: flagLimit, Usage: "Newest records to print (0 means the server maximum)"}
}

func rawInputs(cmd *cli.Command) features.RawInputs {
	return features.RawInputs{
		Gender:            cmd.String(flagGender),
		ParentEducation:   cmd.String(flagParentEducation),
		StudyHours:        cmd.Float(flagStudyHours),
		SocialMediaHours:  cmd.Float(flagSocialMediaHours),
		SleepHours:        cmd.Float(flagSleepHours),
		AttendancePercent: cmd.Float(flagAttendance),
		MissedDeadlines:   cmd.Float(flagMissedDeadlines),
	}
}

func deltas(cmd *cli.Command) simulation.Deltas {
	return simulation.Deltas{
		StudyHours:        cmd.Float(flagStudyDelta),
		AttendancePercent: cmd.Float(flagAttendanceDelta),
	}
}
