package build

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/incremental"
	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
	"git.home.luguber.info/inful/umlbuilder/internal/metrics"
	"git.home.luguber.info/inful/umlbuilder/internal/observability"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// Stage names used for logging and metrics.
const (
	StageResolve = "resolve"
	StageRender  = "render"
)

// Builder is the standard implementation of Service.
type Builder struct {
	engine   renderer.Engine
	recorder metrics.Recorder
	logger   *slog.Logger
	newID    func() string
}

// NewBuilder creates a builder delegating to engine.
func NewBuilder(engine renderer.Engine) *Builder {
	return &Builder{
		engine:   engine,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
}

// WithRecorder injects a metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithLogger sets a custom logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Resolve lists the request's inputs with their output directory and
// staleness verdict, in sorted order. Nothing is written.
func (b *Builder) Resolve(ctx context.Context, req *Request) ([]fileset.ResolvedFile, error) {
	files, err := fileset.Resolve(ctx, req.Input(), req.Placement())
	if err != nil {
		return nil, err
	}
	checker := incremental.NewChecker(req.Format(), req.Overwrite()).WithLogger(observability.Logger(ctx, b.logger))
	for i := range files {
		files[i].Stale = checker.IsStale(files[i].Input, files[i].OutputDir)
	}
	return files, nil
}

// Build runs one batch: resolve, check freshness, render stale inputs.
func (b *Builder) Build(ctx context.Context, req *Request) (*Result, error) {
	result := &Result{
		BuildID:   b.newID(),
		StartTime: time.Now(),
	}
	if req == nil {
		result.finish(StatusFailed)
		return result, errors.InternalError("build request required").Build()
	}
	result.Format = req.Format()
	ctx = observability.WithBuildID(ctx, result.BuildID)

	defer func() {
		b.recorder.ObserveBuildDuration(result.Duration)
		b.recorder.IncBuildOutcome(string(result.Status))
	}()

	// Stage 1: resolve inputs and check freshness
	stageStart := time.Now()
	resolveCtx := observability.WithStage(ctx, StageResolve)
	files, err := b.Resolve(resolveCtx, req)
	b.recorder.ObserveStageDuration(StageResolve, time.Since(stageStart))
	if err != nil {
		if ctx.Err() != nil {
			result.finish(StatusCancelled)
			return result, ctx.Err()
		}
		result.finish(StatusFailed)
		return result, err
	}

	var stale []fileset.ResolvedFile
	for _, f := range files {
		if f.Stale {
			stale = append(stale, f)
			continue
		}
		result.Skipped = append(result.Skipped, f)
		b.recorder.IncFileResult(metrics.ResultSkipped)
	}
	observability.Logger(resolveCtx, b.logger).Info("Resolved diagram sources",
		logfields.Count(len(files)),
		slog.Int("stale", len(stale)),
		slog.Int("fresh", len(result.Skipped)),
		logfields.Format(req.Format().String()))

	// Stage 2: render stale inputs
	stageStart = time.Now()
	renderCtx := observability.WithStage(ctx, StageRender)
	outcomes, fatal := b.renderAll(renderCtx, req, stale)
	b.recorder.ObserveStageDuration(StageRender, time.Since(stageStart))
	result.Outcomes = outcomes

	log := observability.Logger(ctx, b.logger)
	switch {
	case fatal != nil:
		result.finish(StatusFailed)
		log.Error("Build aborted", logfields.Error(fatal))
		return result, fatal
	case ctx.Err() != nil:
		result.finish(StatusCancelled)
		log.Warn("Build cancelled", logfields.Count(len(outcomes)))
		return result, ctx.Err()
	case len(result.Failed()) > 0:
		result.finish(StatusPartial)
	default:
		result.finish(StatusSuccess)
	}

	log.Info("Build completed",
		logfields.Status(string(result.Status)),
		slog.Int("rendered", result.Rendered()),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("failed", len(result.Failed())),
		logfields.Duration(result.Duration))
	return result, nil
}

// renderAll runs the engine over files with a bounded worker pool. Outcomes
// keep the order of files; inputs never dispatched because of a fatal error
// or cancellation are left out. The first filesystem error stops dispatch and
// is returned; renders already running are allowed to finish.
func (b *Builder) renderAll(ctx context.Context, req *Request, files []fileset.ResolvedFile) ([]Outcome, error) {
	if len(files) == 0 {
		return nil, nil
	}
	concurrency := req.Workers()
	if concurrency > len(files) {
		concurrency = len(files)
	}
	b.recorder.SetConcurrency(concurrency)

	opts := req.RenderOptions()
	outcomes := make([]Outcome, len(files))
	done := make([]bool, len(files))
	var (
		mu    sync.Mutex
		fatal error
	)
	aborted := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fatal != nil
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for i := range tasks {
			if ctx.Err() != nil || aborted() {
				continue
			}
			o, err := b.renderOne(ctx, files[i], opts)
			mu.Lock()
			if err != nil {
				if fatal == nil {
					fatal = err
				}
			} else {
				outcomes[i] = o
				done[i] = true
			}
			mu.Unlock()
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
dispatch:
	for i := range files {
		if aborted() {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()

	collected := make([]Outcome, 0, len(files))
	for i, ok := range done {
		if ok {
			collected = append(collected, outcomes[i])
		}
	}
	mu.Lock()
	defer mu.Unlock()
	return collected, fatal
}

// renderOne returns an error only for failures that abort the batch. Engine
// failures are reported on the Outcome.
func (b *Builder) renderOne(ctx context.Context, f fileset.ResolvedFile, opts renderer.Options) (Outcome, error) {
	ctx = observability.WithInput(ctx, f.Rel)
	log := observability.Logger(ctx, b.logger)

	if err := os.MkdirAll(f.OutputDir, 0o750); err != nil {
		return Outcome{}, errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("output_dir", f.OutputDir).
			WithContext("input", f.Rel).
			Build()
	}

	start := time.Now()
	artifacts, err := b.engine.Render(ctx, f.Input, f.OutputDir, opts)
	o := Outcome{
		Input:     f.Input,
		Rel:       f.Rel,
		OutputDir: f.OutputDir,
		Duration:  time.Since(start),
	}
	if err != nil {
		o.Err = errors.RenderError("failed to render diagram").
			WithCause(err).
			WithContext("input", f.Rel).
			WithContext("format", opts.Format.String()).
			Build()
		b.recorder.IncFileResult(metrics.ResultFailed)
		b.recorder.ObserveRenderDuration(o.Duration, metrics.ResultFailed)
		log.Warn("Failed to render diagram", logfields.OutputDir(f.OutputDir), logfields.Error(err))
		return o, nil
	}

	o.Artifacts = artifacts
	b.recorder.IncFileResult(metrics.ResultRendered)
	b.recorder.ObserveRenderDuration(o.Duration, metrics.ResultRendered)
	log.Info("Rendered diagram",
		logfields.OutputDir(f.OutputDir),
		logfields.Count(len(artifacts)),
		logfields.Duration(o.Duration))
	return o, nil
}
