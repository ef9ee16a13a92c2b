package artifacts_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/edupredict/internal/adapters/artifacts"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/internal/domain/inference/inferencetest"
	. "github.com/smartystreets/goconvey/convey"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given the fixture bundle", t, func() {
		set, err := artifacts.Load(ctx, testdata("fixture.json"))

		Convey("Then it decodes into a working artifact set", func() {
			So(err, ShouldBeNil)
			So(set.Version, ShouldEqual, "fixture")
			So(set.Risk.Labels(), ShouldResemble, inferencetest.RiskLabels)
			So(set.Gender.Labels(), ShouldResemble, inferencetest.GenderLabels)

			engine, err := inference.NewEngine(set)
			So(err, ShouldBeNil)
			res, err := engine.Evaluate(features.FeatureVector{0, 0, 5, 2, 7, 85, 0})
			So(err, ShouldBeNil)
			So(res.PredictedScore, ShouldEqual, inferencetest.BaselineScore)
			So(res.RiskLabel, ShouldEqual, inferencetest.BaselineRisk)
		})
	})

	Convey("Given the shipped model", t, func() {
		set, err := artifacts.Load(ctx, filepath.Join("..", "..", "..", "models", "student_model_v1.json"))
		So(err, ShouldBeNil)
		So(set.Version, ShouldEqual, "student_model_v1")
	})

	Convey("Given bundles that cannot be used", t, func() {
		cases := []struct {
			name string
			path string
			kind error
		}{
			{"missing file", testdata("nope.json"), os.ErrNotExist},
			{"empty path", "", artifacts.ErrEmptyPath},
			{"reordered features", testdata("reordered.json"), artifacts.ErrFeatureOrder},
			{"class count mismatch", testdata("class_mismatch.json"), inference.ErrClassCountMismatch},
		}

		for _, tc := range cases {
			Convey("When loading a bundle with "+tc.name, func() {
				_, err := artifacts.Load(ctx, tc.path)

				Convey("Then the model is reported unavailable", func() {
					So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
					So(errors.Is(err, tc.kind), ShouldBeTrue)
				})
			})
		}

		Convey("When the file is truncated", func() {
			_, err := artifacts.Load(ctx, testdata("corrupt.json"))
			So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)

			var mu *inference.ModelUnavailableError
			So(errors.As(err, &mu), ShouldBeTrue)
			So(mu.Source, ShouldEqual, testdata("corrupt.json"))
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := artifacts.Load(cctx, testdata("fixture.json"))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestBundleRoundTrip(t *testing.T) {
	Convey("Given a decoded bundle", t, func() {
		f, err := os.Open(testdata("fixture.json"))
		So(err, ShouldBeNil)
		defer f.Close()
		b, err := artifacts.Decode(f)
		So(err, ShouldBeNil)

		Convey("When it is written and loaded from a new file", func() {
			var buf bytes.Buffer
			So(artifacts.Encode(&buf, b), ShouldBeNil)
			path := filepath.Join(t.TempDir(), "copy.json")
			So(os.WriteFile(path, buf.Bytes(), 0o600), ShouldBeNil)

			set, err := artifacts.Load(context.Background(), path)

			Convey("Then it yields the same labels", func() {
				So(err, ShouldBeNil)
				So(set.ParentEducation.Labels(), ShouldResemble, inferencetest.ParentEducationLabels)
			})
		})

		Convey("When the format is unknown", func() {
			b.Format = 2
			_, err := b.ArtifactSet()
			So(errors.Is(err, artifacts.ErrUnsupportedBundle), ShouldBeTrue)
		})

		Convey("When an encoding repeats a label", func() {
			b.Encodings.Gender = []string{"Female", "Female"}
			_, err := b.ArtifactSet()
			So(errors.Is(err, features.ErrInvalidEncoding), ShouldBeTrue)
		})
	})

	Convey("Given JSON with unknown fields", t, func() {
		_, err := artifacts.Decode(bytes.NewBufferString(`{"format": 1, "pickle": "x"}`))
		So(err, ShouldNotBeNil)
	})
}

func TestCache(t *testing.T) {
	Convey("Given a cache with a counting loader", t, func() {
		var calls atomic.Int32
		loader := func(ctx context.Context, path string) (*inference.ArtifactSet, error) {
			calls.Add(1)
			return inferencetest.ArtifactSet(), nil
		}
		c := artifacts.NewCache("bundle.json", artifacts.WithLoadFunc(loader))

		Convey("When many goroutines ask at once", func() {
			var wg sync.WaitGroup
			sets := make([]*inference.ArtifactSet, 20)
			for i := range sets {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					sets[i], _ = c.Get(context.Background())
				}(i)
			}
			wg.Wait()

			Convey("Then the bundle is loaded once and shared", func() {
				So(int(calls.Load()), ShouldEqual, 1)
				for _, s := range sets {
					So(s, ShouldPointTo, sets[0])
				}
			})
		})
	})

	Convey("Given a cache whose load fails", t, func() {
		var calls atomic.Int32
		c := artifacts.NewCache("bundle.json", artifacts.WithLoadFunc(func(context.Context, string) (*inference.ArtifactSet, error) {
			calls.Add(1)
			return nil, &inference.ModelUnavailableError{Source: "bundle.json", Err: os.ErrNotExist}
		}))

		_, err1 := c.Get(context.Background())
		_, err2 := c.Get(context.Background())

		Convey("Then the failure sticks for the cache's lifetime", func() {
			So(errors.Is(err1, inference.ErrModelUnavailable), ShouldBeTrue)
			So(err2, ShouldEqual, err1)
			So(int(calls.Load()), ShouldEqual, 1)
		})
	})

	Convey("Given the process-wide cache", t, func() {
		path := testdata("fixture.json")

		Convey("Then the same path yields the same cache and set", func() {
			a, b := artifacts.Shared(path), artifacts.Shared(path)
			So(a, ShouldPointTo, b)
			So(a.Path(), ShouldEqual, path)

			s1, err := a.Get(context.Background())
			So(err, ShouldBeNil)
			s2, _ := b.Get(context.Background())
			So(s1, ShouldPointTo, s2)
		})
	})
}
