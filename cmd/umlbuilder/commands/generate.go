package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/build"
	"git.home.luguber.info/inful/umlbuilder/internal/config"
	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
	"git.home.luguber.info/inful/umlbuilder/internal/metrics"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	BuildFlags `embed:""`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := g.loadConfig(root)
	if err != nil {
		return err
	}
	root.applyConfigLogging(global, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
	}
	runner := newBuildRunner(cfg, global.logger(), recorder)
	_, err = runner.run(ctx, cfg, global.out())
	return err
}

// buildRunner executes one build for a configuration and handles its
// side outputs (report, metrics textfile, summary line).
type buildRunner struct {
	engine   renderer.Engine
	logger   *slog.Logger
	recorder *metrics.PrometheusRecorder
}

// newBuildRunner creates a runner. recorder may be nil.
func newBuildRunner(cfg *config.Config, logger *slog.Logger, recorder *metrics.PrometheusRecorder) *buildRunner {
	return &buildRunner{
		engine:   cfg.NewEngine().WithLogger(logger),
		logger:   logger,
		recorder: recorder,
	}
}

func (r *buildRunner) run(ctx context.Context, cfg *config.Config, out io.Writer) (*build.Result, error) {
	req, err := cfg.ToRequest()
	if err != nil {
		return nil, err
	}

	builder := build.NewBuilder(r.engine).WithLogger(r.logger)
	if r.recorder != nil {
		builder = builder.WithRecorder(r.recorder)
	}

	var svc build.Service = builder
	res, buildErr := svc.Build(ctx, req)

	if cfg.Build.Report != "" {
		if err := build.WriteReport(cfg.Build.Report, res, buildErr); err != nil {
			r.logger.Warn("Failed to write build report", logfields.Path(cfg.Build.Report), logfields.Error(err))
		}
	}
	if r.recorder != nil && cfg.Metrics.Textfile != "" {
		if err := r.recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			r.logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return res, buildErr
	}

	printSummary(out, res)
	if res.Status == build.StatusPartial && cfg.Build.FailOnErrorEnabled() {
		return res, res.Err()
	}
	return res, nil
}

func printSummary(out io.Writer, res *build.Result) {
	_, _ = fmt.Fprintf(out, "Rendered %d, up to date %d, failed %d diagrams as %s in %s\n",
		res.Rendered(), len(res.Skipped), len(res.Failed()), res.Format, res.Duration.Round(time.Millisecond))
	for _, o := range res.Failed() {
		_, _ = fmt.Fprintf(out, "  FAILED %s: %v\n", o.Rel, o.Err)
	}
}
