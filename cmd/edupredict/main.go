// Command edupredict runs predictions, what-if scenarios and history
// queries against a local model bundle without starting the HTTP server.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/edupredict/pkg/logger"
	"github.com/urfave/cli/v3"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs go to stderr so command output stays parseable.
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithLevel("warn")); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		logger.Get().Error(ctx, "command failed", logger.Error(err))
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	r := &runner{out: out}
	return &cli.Command{
		Name:    "edupredict",
		Version: version + " (commit: " + commit + ")",
		Usage:   "Predict student performance and academic risk from the command line",
		Writer:  out,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "predict",
				Usage:  "Predict score and risk for one student",
				Flags:  inputFlags(),
				Before: r.open(false),
				After:  r.close,
				Action: r.predict,
			},
			{
				Name:   "simulate",
				Usage:  "Re-run a prediction with more study time or attendance",
				Flags:  append(inputFlags(), deltaFlags()...),
				Before: r.open(false),
				After:  r.close,
				Action: r.simulate,
			},
			{
				Name:   "categories",
				Usage:  "List the labels the model accepts and predicts",
				Before: r.open(false),
				After:  r.close,
				Action: r.categories,
			},
			{
				Name:  "history",
				Usage: "Performance log operations",
				Commands: []*cli.Command{
					{
						Name:   "save",
						Usage:  "Predict and append the result to a user's log",
						Flags:  append(inputFlags(), userFlag(), recordIDFlag()),
						Before: r.open(true),
						After:  r.close,
						Action: r.saveHistory,
					},
					{
						Name:   "list",
						Usage:  "Print a user's log, oldest first",
						Flags:  []cli.Flag{userFlag(), limitFlag()},
						Before: r.open(true),
						After:  r.close,
						Action: r.listHistory,
					},
				},
			},
		},
	}
}
