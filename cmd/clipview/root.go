package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/1broseidon/clipview/internal/clipboard"
	"github.com/1broseidon/clipview/internal/config"
	"github.com/1broseidon/clipview/internal/display"
	"github.com/1broseidon/clipview/internal/platform"
	"github.com/1broseidon/clipview/internal/rgba"
	"github.com/1broseidon/clipview/internal/x11"
)

// usageError marks malformed command lines.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type rootOptions struct {
	configPath string
	backend    string
	display    string
	title      string
	debug      bool
}

type imageReader interface {
	GetImage() (*rgba.Image, error)
}

type imageViewer interface {
	OpenRGBA(img *rgba.Image) error
}

// pipelineFunc builds the clipboard reader and the viewer for cfg. The
// returned cleanup runs after the pipeline finishes.
type pipelineFunc func(cfg *config.Config, getenv func(string) string, logger *slog.Logger) (imageReader, imageViewer, func())

func newRootCmd(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	return newRootCmdWith(stdout, stderr, getenv, newPipeline)
}

func newRootCmdWith(stdout, stderr io.Writer, getenv func(string) string, pipeline pipelineFunc) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "clipview",
		Short: "Show the image on the clipboard in an always-on-top window",
		Long: `clipview reads the image currently held on the clipboard and shows it
in a fixed-size window that stays above other windows until it is closed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cfg := res.Config
			logger := newLogger(stderr, cfg, opts.debug)
			logConfigSources(logger, res)

			reader, viewer, cleanup := pipeline(cfg, getenv, logger)
			defer cleanup()

			// Pipeline failures are reported on stdout and are not a failed exit.
			if err := displayClipboardImage(reader, viewer); err != nil {
				logger.Debug("clipview failed", "error", err)
				fmt.Fprintln(stdout, err)
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(stderr, c.UsageString())
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.config/clipview/config.yaml)")
	flags.StringVar(&opts.backend, "backend", "", "Clipboard backend: auto, x11 or system")
	flags.StringVar(&opts.display, "display", "", "X display to use instead of $DISPLAY")
	flags.StringVar(&opts.title, "title", "", "Window title")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	return cmd
}

func newPipeline(cfg *config.Config, getenv func(string) string, logger *slog.Logger) (imageReader, imageViewer, func()) {
	backend := platform.NewBackend(cfg.Display, logger)
	reader := clipboard.NewReader(newSource(cfg, getenv, logger), logger)
	viewer := display.NewViewer(backend, display.Options{Title: cfg.WindowTitle, Logger: logger})
	return reader, viewer, backend.Disconnect
}

func displayClipboardImage(reader imageReader, viewer imageViewer) error {
	img, err := reader.GetImage()
	if err != nil {
		return err
	}
	return viewer.OpenRGBA(img)
}

// loadConfig reads the config file and applies flags set on the command line.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.LoadResult, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	cfg := res.Config

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.ClipboardBackend = config.ClipboardBackend(opts.backend)
	}
	if flags.Changed("display") {
		cfg.Display = opts.display
	}
	if flags.Changed("title") {
		cfg.WindowTitle = opts.title
	}
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return res, nil
}

// logConfigSources records which file, if any, supplied each setting.
func logConfigSources(logger *slog.Logger, res *config.LoadResult) {
	if res.File == "" {
		logger.Debug("no config file, using defaults")
		return
	}
	logger.Debug("config loaded", "file", res.File)

	keys := make([]string, 0, len(res.Sources))
	for k := range res.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		src := res.Sources[k]
		logger.Debug("config value", "key", k, "source", fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column))
	}
}

func newLogger(w io.Writer, cfg *config.Config, debug bool) *slog.Logger {
	level := cfg.SlogLevel()
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newSource picks the clipboard source for cfg.ClipboardBackend.
func newSource(cfg *config.Config, getenv func(string) string, logger *slog.Logger) clipboard.Source {
	backend := cfg.ClipboardBackend
	if backend == config.BackendAuto {
		backend = config.BackendSystem
		if runtime.GOOS == "linux" && (cfg.Display != "" || getenv("DISPLAY") != "") {
			backend = config.BackendX11
		}
	}
	logger.Debug("clipboard backend selected", "backend", backend)

	if backend == config.BackendX11 {
		return x11.NewSelectionReader(cfg.Display, cfg.SelectionTimeout)
	}
	return clipboard.NewSystemSource()
}
