package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
	"git.home.luguber.info/inful/umlbuilder/internal/workspace"
)

// DefaultCommand is the engine executable looked up on PATH.
const DefaultCommand = "plantuml"

// Bounds how long output pipes are drained after the engine was killed.
const waitDelay = 2 * time.Second

// BinaryEngine invokes the PlantUML command line. With a Jar set it runs
// "java -jar <Jar>" instead of Command.
type BinaryEngine struct {
	Command string
	Jar     string
	Java    string
	Timeout time.Duration // per file, zero disables
	Env     []string      // extra KEY=VALUE pairs appended to the process environment

	logger *slog.Logger
}

// NewBinaryEngine creates an engine running command, DefaultCommand when empty.
func NewBinaryEngine(command string) *BinaryEngine {
	if command == "" {
		command = DefaultCommand
	}
	return &BinaryEngine{Command: command, logger: slog.Default()}
}

// NewJarEngine creates an engine running the given PlantUML jar through java.
func NewJarEngine(java, jar string) *BinaryEngine {
	if java == "" {
		java = "java"
	}
	return &BinaryEngine{Java: java, Jar: jar, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (b *BinaryEngine) WithLogger(logger *slog.Logger) *BinaryEngine {
	b.logger = logger
	return b
}

// WithTimeout bounds each render.
func (b *BinaryEngine) WithTimeout(d time.Duration) *BinaryEngine {
	b.Timeout = d
	return b
}

func (b *BinaryEngine) log() *slog.Logger {
	if b.logger == nil {
		return slog.Default()
	}
	return b.logger
}

// Executable returns the program that is started.
func (b *BinaryEngine) Executable() string {
	if b.Jar != "" {
		return b.Java
	}
	return b.Command
}

// Args returns the engine arguments for rendering input into dir.
func (b *BinaryEngine) Args(input, dir string, opts Options) []string {
	var args []string
	if b.Jar != "" {
		args = append(args, "-Djava.awt.headless=true", "-jar", b.Jar)
	}
	args = append(args, opts.Format.Flag(), "-o", dir)
	if opts.Charset != "" {
		args = append(args, "-charset", opts.Charset)
	}
	if opts.ConfigFile != "" {
		args = append(args, "-config", opts.ConfigFile)
	}
	if opts.GraphvizDot != "" {
		args = append(args, "-graphvizdot", opts.GraphvizDot)
	}
	if opts.Verbose {
		args = append(args, "-verbose")
	}
	if !opts.Metadata {
		args = append(args, "-nometadata")
	}
	if opts.KeepTmpFiles {
		args = append(args, "-keepfiles")
	}
	return append(args, input)
}

// Render runs the engine with a staging directory inside outputDir as target.
// Produced files are moved into outputDir only when the engine succeeds.
func (b *BinaryEngine) Render(ctx context.Context, input, outputDir string, opts Options) ([]Artifact, error) {
	exe := b.Executable()
	if _, err := exec.LookPath(exe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineNotFound, err)
	}

	stage := workspace.NewManager(outputDir).WithLogger(b.log())
	if err := stage.Create(); err != nil {
		return nil, err
	}
	// No-op after a successful commit.
	defer func() {
		if err := stage.Cleanup(); err != nil {
			b.log().Warn("Failed to remove staging directory", logfields.Path(stage.GetPath()), logfields.Error(err))
		}
	}()

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	args := b.Args(input, stage.GetPath(), opts)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = filepath.Dir(input)
	cmd.WaitDelay = waitDelay
	if len(b.Env) > 0 {
		cmd.Env = append(cmd.Environ(), b.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	b.log().Debug("BinaryEngine invoking engine", logfields.Engine(exe), slog.Any("args", args))

	err := cmd.Run()

	outStr := stdout.String()
	errStr := stderr.String()
	if outStr != "" {
		b.log().Debug("engine stdout", logfields.Input(input), slog.String("output", outStr))
	}
	if errStr != "" {
		b.log().Warn("engine stderr", logfields.Input(input), slog.String("error_output", errStr))
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, b.Timeout, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// PlantUML reports syntax errors on either stream.
		output := errStr
		if output == "" {
			output = outStr
		} else if outStr != "" {
			output = outStr + "\n" + errStr
		}
		if output != "" {
			return nil, fmt.Errorf("%w: %w: %s", ErrExecutionFailed, err, output)
		}
		return nil, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	moved, err := stage.Commit()
	if err != nil {
		for _, p := range moved {
			_ = os.Remove(p)
		}
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(moved))
	for _, p := range moved {
		artifacts = append(artifacts, Artifact{Path: p, Description: describe(p, opts)})
	}
	if len(artifacts) == 0 {
		b.log().Debug("Engine produced no artifacts", logfields.Input(input))
	}
	return artifacts, nil
}

func describe(path string, opts Options) string {
	if filepath.Ext(path) == opts.Format.Suffix() {
		return opts.Format.Description()
	}
	return "auxiliary file"
}
