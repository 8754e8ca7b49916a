package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/npratt/mindmap/internal/config"
	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/tui"
	"github.com/npratt/mindmap/internal/watch"
)

func (a *app) newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a mind-map in the terminal",
		Long: `Open a mind-map in the interactive terminal viewer.

The mind-map is read from a JSON file (- for stdin), requested from the
learning backend with --topic, or produced by the configured generator
command. Selecting a node expands the path down to it; selecting the last
node on the path collapses one level.

When stdout is not a terminal the visible map is printed once as text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args)
		},
	}

	cmd.Flags().String(FlagTopic, "", "Request the mind-map for this topic from the learning backend")
	cmd.Flags().String(FlagDirection, "", "Layout direction (TB or LR)")
	cmd.Flags().String(FlagExpand, "", "Expand the path down to this node id on start")
	cmd.Flags().Bool(FlagStrict, false, "Reject mind-maps that fail schema validation")
	cmd.Flags().Bool(FlagFullscreen, false, "Start with the header and footer hidden")
	cmd.Flags().Bool(FlagInline, false, "Run in the normal screen buffer; fullscreen switches to the alternate screen")
	cmd.Flags().Bool(FlagNoMouse, false, "Disable mouse support")
	cmd.Flags().Bool(FlagWatch, false, "Reload when the mind-map file changes")
	return cmd
}

func (a *app) runView(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// The viewer owns the terminal, so logs go to a rotating file.
	tuiLog, err := SetupTUILogger(cfg.Paths.Log, a.logLevel, cfg.LogRotation)
	if err != nil {
		return err
	}
	defer func() { _ = tuiLog.Close() }()
	logger := tuiLog.Logger
	prevLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(prevLogger)

	loader, local, err := a.newLoader(cfg, args, cmd.InOrStdin(), logger)
	if err != nil {
		return err
	}

	stateSink := events.NewStateSink(cfg.Paths.State)
	if err := stateSink.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read viewer state", "path", cfg.Paths.State, "error", err)
	}
	dir, fullscreen := preferences(cmd, cfg, stateSink.State())

	session := mindmap.NewSession(cellAdapter(cfg, logger),
		mindmap.WithDirection(dir),
		mindmap.WithSessionLogger(logger),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	stop, err := startSinks(ctx, session.Events(), stateSink, cfg.Paths.Events)
	if err != nil {
		cancel()
		session.Close()
		return err
	}
	defer func() {
		// Closing the session closes the sink channels, so they drain first.
		session.Close()
		stop()
		cancel()
	}()

	logger.Info("mindmap viewer starting",
		"version", version,
		"session", session.ID(),
		"direction", dir,
		"local", local,
	)

	topic := ""
	expand := a.v.GetString(FlagExpand)
	preloaded := local || expand != ""
	if preloaded {
		res, err := loadOnce(ctx, loader, loadTimeout(cfg))
		if err != nil {
			return err
		}
		session.Load(res.Data)
		topic = topicOf(res, session.Snapshot())
		if expand != "" {
			if err := session.ExpandTo(expand); err != nil {
				printWarning(cmd.ErrOrStderr(), "%v", err)
			}
		}
	}

	viewer := tui.New(session,
		tui.WithLoader(loader),
		tui.WithPreloaded(preloaded),
		tui.WithTopic(topic),
		tui.WithExporter(&tui.Exporter{
			Adapter: pixelAdapter(cfg, logger),
			Dir:     cfg.Export.Dir,
			Options: exportOptions(cfg),
		}),
		tui.WithFitDelay(cfg.TUI.FitDelay),
		tui.WithMouse(cfg.TUI.Mouse),
		tui.WithFullscreen(fullscreen),
		tui.WithInline(a.v.GetBool(FlagInline)),
		tui.WithOutput(cmd.OutOrStdout()),
	)

	if a.v.GetBool(FlagWatch) {
		if len(args) == 0 || args[0] == "-" {
			printWarning(cmd.ErrOrStderr(), "--watch needs a mind-map file; ignoring")
		} else {
			w := watch.New(args[0], viewer.Reload, watch.WithLogger(logger))
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
		}
	}

	if err := viewer.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// preferences resolves direction and fullscreen: explicit flags win, then
// the state saved by the previous run, then config.
func preferences(cmd *cobra.Command, cfg *config.Config, state events.State) (mindmap.Direction, bool) {
	dir := mindmap.ParseDirection(cfg.Layout.Direction)
	if !cmd.Flags().Changed(FlagDirection) && state.Direction != "" {
		dir = mindmap.ParseDirection(state.Direction)
	}

	fullscreen := cfg.TUI.Fullscreen
	if !cmd.Flags().Changed(FlagFullscreen) && state.Fullscreen {
		fullscreen = true
	}
	return dir, fullscreen
}

// startSinks subscribes the state sink, and the event log when a path is
// configured, to router. The returned stop function must be called after
// the router is closed.
func startSinks(ctx context.Context, router *events.Router, stateSink *events.StateSink, eventsPath string) (func(), error) {
	stateEvents := router.SubscribeTypes(
		events.EventGraphLoaded,
		events.EventLayoutComputed,
		events.EventFullscreenChanged,
		events.EventExportCompleted,
	)
	if err := stateSink.Start(ctx, stateEvents); err != nil {
		return nil, fmt.Errorf("start state sink: %w", err)
	}

	if eventsPath == "" {
		return func() { _ = stateSink.Stop() }, nil
	}

	logSink := events.NewLogSink(eventsPath)
	if err := logSink.Start(ctx, router.Subscribe()); err != nil {
		return nil, fmt.Errorf("start event log: %w", err)
	}
	return func() {
		_ = logSink.Stop()
		_ = stateSink.Stop()
	}, nil
}
