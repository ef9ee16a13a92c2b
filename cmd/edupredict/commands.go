package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	service "github.com/okian/edupredict/internal/app"
	"github.com/okian/edupredict/internal/domain/model"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/urfave/cli/v3"
)

// Commands that never touch history get a throwaway store.
const memoryDSN = ":memory:"

// runner owns the service for a single command invocation.
type runner struct {
	out io.Writer
	svc *service.Service
}

// open starts a service from the global flags before the action runs.
func (r *runner) open(history bool) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cmd.Bool(flagDebug) {
			_ = logger.SetLevelString("debug")
		}

		dsn := memoryDSN
		if history {
			dsn = cmd.String(flagDB)
		}

		svc := service.New(
			service.WithLogger(logger.Named("cli")),
			service.WithArtifactPath(cmd.String(flagModel)),
			service.WithHistoryDSN(dsn),
			service.WithWorkerCount(1),
			service.WithRangeValidation(cmd.Bool(flagValidate)),
		)
		if err := svc.Start(ctx); err != nil {
			return ctx, fmt.Errorf("starting service: %w", err)
		}
		r.svc = svc
		return ctx, nil
	}
}

// close drains pending history writes.
func (r *runner) close(ctx context.Context, _ *cli.Command) error {
	if r.svc == nil {
		return nil
	}
	err := r.svc.Stop(context.WithoutCancel(ctx))
	r.svc = nil
	return err
}

func (r *runner) predict(ctx context.Context, cmd *cli.Command) error {
	report, err := r.svc.Predict(ctx, rawInputs(cmd))
	if err != nil {
		return err
	}
	return r.encode(report)
}

func (r *runner) simulate(ctx context.Context, cmd *cli.Command) error {
	report, err := r.svc.Simulate(ctx, rawInputs(cmd), deltas(cmd))
	if err != nil {
		return err
	}
	return r.encode(report)
}

func (r *runner) categories(_ context.Context, _ *cli.Command) error {
	cats, err := r.svc.Categories()
	if err != nil {
		return err
	}
	return r.encode(cats)
}

func (r *runner) saveHistory(ctx context.Context, cmd *cli.Command) error {
	rec, dup, err := r.svc.SaveHistory(ctx, model.HistoryRequest{
		ID:     cmd.String(flagID),
		UserID: cmd.String(flagUser),
		Inputs: rawInputs(cmd),
	})
	if err != nil {
		return err
	}
	status := "accepted"
	if dup {
		status = "duplicate"
	}
	return r.encode(map[string]any{"status": status, "record": rec})
}

func (r *runner) listHistory(ctx context.Context, cmd *cli.Command) error {
	recs, err := r.svc.History(ctx, cmd.String(flagUser), cmd.Int(flagLimit))
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []model.HistoryRecord{}
	}
	return r.encode(recs)
}

func (r *runner) encode(v any) error {
	e := json.NewEncoder(r.out)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
