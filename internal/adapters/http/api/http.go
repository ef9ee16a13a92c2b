// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/okian/edupredict/internal/adapters/mq/queue"
	"github.com/okian/edupredict/internal/adapters/repository"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/internal/domain/model"
	"github.com/okian/edupredict/internal/domain/simulation"
)

// maxBodyBytes caps request bodies; a prediction request is a few hundred bytes.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictionDependencies
	HistoryDependencies
	CategoriesDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	predictHandler    *PredictHandler
	historyHandler    *HistoryHandler
	categoriesHandler *CategoriesHandler

	allowedOrigins []string
	validateRanges bool
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAllowedOrigins sets the origins browsers may call the API from.
// Without it no CORS headers are sent.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRangeValidation controls whether request inputs must lie inside the
// form ranges. On by default.
func WithRangeValidation(enabled bool) ServerOption {
	return func(s *Server) {
		s.validateRanges = enabled
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		predictHandler:    NewPredictHandler(deps),
		historyHandler:    NewHistoryHandler(deps),
		categoriesHandler: NewCategoriesHandler(deps),
		validateRanges:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.predictHandler.validateRanges = s.validateRanges
	s.historyHandler.validateRanges = s.validateRanges
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("POST /predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("POST /simulate", MetricsMiddleware(s.predictHandler.HandleSimulate, "simulate"))
	mux.HandleFunc("POST /history", MetricsMiddleware(s.historyHandler.HandlePostHistory, "history_save"))
	mux.HandleFunc("GET /history/{user_id}", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history_list"))
}

// Handler wraps next with the CORS policy.
func (s *Server) Handler(next http.Handler) http.Handler {
	if len(s.allowedOrigins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(next)
}

// inputsRequest is RawInputs as it arrives on the wire. Every field is
// required; pointers tell a missing field from a zero.
type inputsRequest struct {
	Gender            *string  `json:"gender"`
	ParentEducation   *string  `json:"parent_education"`
	StudyHours        *float64 `json:"study_hours"`
	SocialMediaHours  *float64 `json:"social_media_hours"`
	SleepHours        *float64 `json:"sleep_hours"`
	AttendancePercent *float64 `json:"attendance_percent"`
	MissedDeadlines   *float64 `json:"missed_deadlines"`
}

// rawInputs checks that every field was sent and, when validate is set,
// that the numerics lie inside the form ranges.
func (in *inputsRequest) rawInputs(validate bool) (features.RawInputs, error) {
	var missing []string
	str := func(name string, p *string) string {
		if p == nil {
			missing = append(missing, name)
			return ""
		}
		return *p
	}
	num := func(name string, p *float64) float64 {
		if p == nil {
			missing = append(missing, name)
			return 0
		}
		return *p
	}

	raw := features.RawInputs{
		Gender:            str("gender", in.Gender),
		ParentEducation:   str("parent_education", in.ParentEducation),
		StudyHours:        num("study_hours", in.StudyHours),
		SocialMediaHours:  num("social_media_hours", in.SocialMediaHours),
		SleepHours:        num("sleep_hours", in.SleepHours),
		AttendancePercent: num("attendance_percent", in.AttendancePercent),
		MissedDeadlines:   num("missed_deadlines", in.MissedDeadlines),
	}
	if len(missing) > 0 {
		return raw, fmt.Errorf("%w: missing fields %v", ErrBadRequest, missing)
	}
	if validate {
		if err := features.ValidateRanges(raw); err != nil {
			return raw, err
		}
	}
	return raw, nil
}

// simulateRequest mirrors the OpenAPI schema for POST /simulate.
type simulateRequest struct {
	Inputs inputsRequest `json:"inputs"`
	simulation.Deltas
}

// historyRequest mirrors the OpenAPI schema for POST /history.
type historyRequest struct {
	ID     string        `json:"id,omitempty"`
	UserID string        `json:"user_id"`
	Inputs inputsRequest `json:"inputs"`
}

type ackResponse struct {
	Status    string              `json:"status"`
	Duplicate bool                `json:"duplicate"`
	Record    model.HistoryRecord `json:"record"`
}

type historyResponse struct {
	UserID  string                `json:"user_id"`
	Records []model.HistoryRecord `json:"records"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must hold a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps a domain error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, features.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, features.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, model.ErrMissingUserID), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, inference.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
