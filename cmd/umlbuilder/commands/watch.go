package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/config"
	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
	"git.home.luguber.info/inful/umlbuilder/internal/metrics"
	"git.home.luguber.info/inful/umlbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`

	Debounce     time.Duration `name:"debounce" help:"Quiet period after a change before rebuilding" env:"UMLBUILDER_DEBOUNCE"`
	PollInterval time.Duration `name:"poll-interval" help:"Also rebuild at this interval (0 disables)" env:"UMLBUILDER_POLL_INTERVAL"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	cfg, err := w.load(root)
	if err != nil {
		return err
	}
	root.applyConfigLogging(global, cfg)
	logger := global.logger()

	req, err := cfg.ToRequest()
	if err != nil {
		return err
	}
	matcher, err := req.Input().Matcher()
	if err != nil {
		return err
	}

	var files []string
	if _, err := os.Stat(root.Config); err == nil {
		files = append(files, root.Config)
	}

	state := &watchState{
		cmd:    w,
		root:   root,
		cfg:    cfg,
		reload: len(files) > 0,
		base:   req.Input().Base(),
		logger: logger,
		out:    global.out(),
	}
	if cfg.Metrics.Textfile != "" {
		state.recorder = metrics.NewPrometheusRecorder(nil)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher := watch.New(watch.Options{
		Root:         state.base,
		Match:        matcher.Match,
		Files:        files,
		Debounce:     cfg.Watch.Debounce,
		PollInterval: cfg.Watch.PollInterval,
	}, state.rebuild).WithLogger(logger)
	return watcher.Run(ctx)
}

func (w *WatchCmd) load(root *CLI) (*config.Config, error) {
	cfg, err := w.loadConfig(root)
	if err != nil {
		return nil, err
	}
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}
	if w.PollInterval > 0 {
		cfg.Watch.PollInterval = w.PollInterval
	}
	return cfg, nil
}

// watchState carries configuration across rebuilds. The configuration file is
// reread before every build; when settings that affect artifacts change, the
// next build re-renders everything.
type watchState struct {
	cmd      *WatchCmd
	root     *CLI
	cfg      *config.Config
	reload   bool
	base     string
	snapshot string
	recorder *metrics.PrometheusRecorder
	logger   *slog.Logger
	out      io.Writer
}

func (s *watchState) rebuild(ctx context.Context) error {
	if s.reload {
		cfg, err := s.cmd.load(s.root)
		if err != nil {
			s.logger.Warn("Keeping previous configuration", logfields.Path(s.root.Config), logfields.Error(err))
		} else {
			s.cfg = cfg
		}
	}

	cfg := s.cfg
	if base := cfg.InputSpec().Base(); filepath.Clean(base) != filepath.Clean(s.base) {
		s.logger.Warn("Source location changed; restart watch mode to follow it",
			logfields.Path(base), slog.String("watching", s.base))
	}

	snap := cfg.Snapshot()
	if s.snapshot != "" && snap != s.snapshot {
		s.logger.Info("Configuration changed, re-rendering all diagrams")
		forced := *cfg
		forced.Build.Overwrite = true
		cfg = &forced
	}
	s.snapshot = snap

	_, err := newBuildRunner(cfg, s.logger, s.recorder).run(ctx, cfg, s.out)
	return err
}
