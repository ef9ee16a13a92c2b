// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/edupredict/internal/domain/features"
)

// Validation errors for history records.
var (
	ErrMissingUserID = errors.New("user id is required")
	ErrMissingID     = errors.New("record id is required")
)

// HistoryRecord is one saved prediction in a user's performance log.
type HistoryRecord struct {
	ID                string    `json:"id"`          // unique id for idempotency
	UserID            string    `json:"user_id"`     // passed through as-is, never interpolated into SQL
	Timestamp         time.Time `json:"timestamp"`   // when the prediction was made
	PredictedScore    float64   `json:"predicted_score"`
	RiskLabel         string    `json:"risk_label"`
	StudyHours        float64   `json:"study_hours"`
	AttendancePercent float64   `json:"attendance_percent"`
}

// HistoryRequest asks for a prediction to be run and saved to a user's log.
// An empty ID is replaced with a fresh one, so only callers that supply an
// ID get idempotent retries.
type HistoryRequest struct {
	ID     string             `json:"id,omitempty"`
	UserID string             `json:"user_id"`
	Inputs features.RawInputs `json:"inputs"`
}

// NewHistoryRecord builds a record with a fresh id when id is empty.
func NewHistoryRecord(id, userID string, ts time.Time, score float64, risk string, studyHours, attendance float64) HistoryRecord {
	if id == "" {
		id = uuid.NewString()
	}
	return HistoryRecord{
		ID:                id,
		UserID:            userID,
		Timestamp:         ts.UTC(),
		PredictedScore:    score,
		RiskLabel:         risk,
		StudyHours:        studyHours,
		AttendancePercent: attendance,
	}
}

// Validate checks the fields the store keys on.
func (r HistoryRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	return nil
}
