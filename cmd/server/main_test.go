package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	service "github.com/okian/edupredict/internal/app"
	"github.com/okian/edupredict/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

const studentJSON = `{"gender":"Female","parent_education":"Bachelor","study_hours":5,"social_media_hours":2,"sleep_hours":7,"attendance_percent":85,"missed_deadlines":0}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.ArtifactPath = filepath.Join("..", "..", "models", "student_model_v1.json")
	cfg.HistoryDSN = filepath.Join(t.TempDir(), "history.db")
	cfg.WorkerCount = 2
	cfg.QueueSize = 100
	cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("EDUPREDICT_ADDR", ":8080")
		_ = os.Setenv("EDUPREDICT_QUEUE_SIZE", "1000")
		_ = os.Setenv("EDUPREDICT_WORKER_COUNT", "4")
		defer func() {
			_ = os.Unsetenv("EDUPREDICT_ADDR")
			_ = os.Unsetenv("EDUPREDICT_QUEUE_SIZE")
			_ = os.Unsetenv("EDUPREDICT_WORKER_COUNT")
		}()

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(len(serviceOptions(cfg)), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		_ = os.Setenv("EDUPREDICT_ADDR", "")
		defer func() { _ = os.Unsetenv("EDUPREDICT_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given a service wired the way main wires it", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		svc := service.New(serviceOptions(cfg)...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		handler := newHandler(ctx, cfg, svc)

		convey.Convey("When predicting with the shipped model", func() {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(studentJSON))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			convey.Convey("Then a report is returned", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var body map[string]any
				convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body, convey.ShouldContainKey, "prediction")
				convey.So(body, convey.ShouldContainKey, "indicators")
			})
		})

		convey.Convey("When a body leaves out the numeric inputs", func() {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"gender":"Female","parent_education":"Bachelor"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When inputs are far outside the form ranges", func() {
			body := `{"gender":"Female","parent_education":"Bachelor","study_hours":-40,"social_media_hours":99,"sleep_hours":0,"attendance_percent":900,"missed_deadlines":17}`
			for _, path := range []string{"/predict", "/history"} {
				payload := body
				if path == "/history" {
					payload = `{"user_id":"alice","inputs":` + body + `}`
				}
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload)))

				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "invalid_range")
			}
		})

		convey.Convey("When a browser sends a preflight from an allowed origin", func() {
			req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			convey.Convey("Then CORS headers are set", func() {
				convey.So(rec.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "http://localhost:3000")
			})
		})

		convey.Convey("When the docs are requested", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When service metrics are refreshed", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)

			cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startServiceMetricsUpdater(cctx, svc) }, convey.ShouldNotPanic)
		})
	})
}
