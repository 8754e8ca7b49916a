package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/npratt/mindmap/internal/config"
	"github.com/npratt/mindmap/internal/exec"
	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

// errNoSource is returned when neither a file, a topic nor a generator
// command names where the mind-map comes from.
var errNoSource = errors.New("no mind-map source: pass a file (or - for stdin), --topic, or set source.command")

// app carries the process-wide dependencies shared by all commands.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	logLevel *slog.LevelVar
	runner   exec.CommandRunner
}

// bindFlags binds the executing command's flags to viper. Binding per
// command keeps same-named flags on different commands apart.
func (a *app) bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(f.Name, f)
	})
}

// loadConfig loads layered config and applies explicitly set flags.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if a.v.GetBool(FlagVerbose) {
		a.logLevel.Set(slog.LevelDebug)
		a.logger.Debug("verbose logging enabled")
	}

	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cmd, a.v, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides copies flags the user actually set into cfg.
func applyOverrides(cmd *cobra.Command, v *viper.Viper, cfg *config.Config) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed(FlagLogFile) {
		cfg.Paths.Log = v.GetString(FlagLogFile)
	}
	if changed(FlagStateFile) {
		cfg.Paths.State = v.GetString(FlagStateFile)
	}
	if changed(FlagEventsFile) {
		cfg.Paths.Events = v.GetString(FlagEventsFile)
	}
	if changed(FlagDirection) {
		cfg.Layout.Direction = strings.ToUpper(strings.TrimSpace(v.GetString(FlagDirection)))
	}
	if changed(FlagStrict) {
		cfg.Source.Strict = v.GetBool(FlagStrict)
	}
	if changed(FlagFullscreen) {
		cfg.TUI.Fullscreen = v.GetBool(FlagFullscreen)
	}
	if changed(FlagNoMouse) {
		cfg.TUI.Mouse = !v.GetBool(FlagNoMouse)
	}
	if changed(FlagFormat) {
		cfg.Export.Format = strings.ToLower(strings.TrimSpace(v.GetString(FlagFormat)))
	}
	if changed(FlagOut) {
		cfg.Export.Dir = v.GetString(FlagOut)
	}
	if changed(FlagAddr) {
		cfg.Serve.Addr = v.GetString(FlagAddr)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// cellAdapter lays out in terminal cells for the viewer.
func cellAdapter(cfg *config.Config, logger *slog.Logger) *mindmap.Adapter {
	t := cfg.TUI
	return mindmap.NewAdapter(
		mindmap.NewLayered(float64(t.RankSep), float64(t.NodeSep)),
		float64(t.NodeWidth), float64(t.NodeHeight),
		mindmap.WithCacheSize(cfg.Layout.CacheSize),
		mindmap.WithLogger(logger),
	)
}

// pixelAdapter lays out in pixels for image export and the HTTP service.
func pixelAdapter(cfg *config.Config, logger *slog.Logger) *mindmap.Adapter {
	l := cfg.Layout
	return mindmap.NewAdapter(
		mindmap.NewLayered(l.RankSep, l.NodeSep),
		l.NodeWidth, l.NodeHeight,
		mindmap.WithCacheSize(l.CacheSize),
		mindmap.WithLogger(logger),
	)
}

// exportOptions converts the export config to renderer options.
func exportOptions(cfg *config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.PixelRatio = cfg.Export.PixelRatio
	opts.Padding = cfg.Export.Padding
	opts.FontSize = cfg.Export.FontSize
	return opts
}

// newClient creates a learning backend client from config.
func newClient(cfg *config.Config, logger *slog.Logger) *source.Client {
	c := source.NewClient(cfg.Backend.BaseURL,
		source.WithToken(cfg.Backend.Token),
		source.WithTimeout(cfg.Backend.Timeout),
	)
	c.Decoder = source.Decoder{Strict: cfg.Source.Strict, Logger: logger}
	return c
}

// learningRequest builds a backend request for topic with the configured
// learner profile.
func learningRequest(cfg *config.Config, topic string) source.LearningRequest {
	req := source.LearningRequest{Topic: topic}
	if len(cfg.Backend.Profile) > 0 {
		req.UserProfile = make(map[string]any, len(cfg.Backend.Profile))
		for k, v := range cfg.Backend.Profile {
			req.UserProfile[k] = v
		}
	}
	return req
}

// newLoader picks the mind-map source: a file argument, then --topic,
// then the configured generator command. local reports whether the source
// is a file, which is cheap enough to load before the viewer starts.
func (a *app) newLoader(cfg *config.Config, args []string, stdin io.Reader, logger *slog.Logger) (loader source.Loader, local bool, err error) {
	decoder := source.Decoder{Strict: cfg.Source.Strict, Logger: logger}

	if len(args) > 0 {
		fl := source.NewFileLoader(args[0])
		fl.Decoder = decoder
		if stdin != nil {
			fl.Stdin = stdin
		}
		return fl, true, nil
	}

	if topic := strings.TrimSpace(a.v.GetString(FlagTopic)); topic != "" {
		return newClient(cfg, logger).Loader(learningRequest(cfg, topic)), false, nil
	}

	if len(cfg.Source.Command) > 0 {
		cl := source.NewCommandLoader(a.runner, cfg.Source.Command[0], cfg.Source.Command[1:]...).
			WithTimeout(cfg.Source.CommandTimeout)
		cl.Decoder = decoder
		return cl, false, nil
	}

	return nil, false, errNoSource
}

// loadOnce runs loader with a timeout. Missing data is not an error: the
// result is then empty.
func loadOnce(ctx context.Context, loader source.Loader, timeout time.Duration) (*source.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := loader.Load(ctx)
	if errors.Is(err, source.ErrNoData) {
		return &source.Result{}, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// topicOf returns the result topic or, failing that, the root label.
func topicOf(res *source.Result, view mindmap.View) string {
	if res != nil && res.Topic != "" {
		return res.Topic
	}
	if root, ok := view.Subgraph.Lookup(view.RootID); ok {
		return root.Label
	}
	return ""
}

// loadTimeout bounds a synchronous load by the slowest configured source.
func loadTimeout(cfg *config.Config) time.Duration {
	return max(cfg.Backend.Timeout, cfg.Source.CommandTimeout, source.DefaultTimeout)
}
