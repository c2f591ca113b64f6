package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/config"
	"github.com/gogpu/ggedit/filter"
	"github.com/gogpu/ggedit/preset"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "ggedit",
		Short:         "Cyberpunk photo editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn, error or off (overrides config)")

	root.AddCommand(newServeCmd(g), newApplyCmd(g), newPresetsCmd(g))
	return root
}

// load reads the config file and applies the log level.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	level, on, err := cfg.Log.Parse()
	if err != nil {
		return cfg, err
	}
	if on {
		ggedit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
	return cfg, nil
}

// registry returns the built-in presets merged with the configured file.
func registry(cfg config.Config) (*preset.Registry, error) {
	reg := preset.Default()
	if cfg.Editor.PresetFile == "" {
		return reg, nil
	}
	if err := reg.LoadFile(cfg.Editor.PresetFile); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	return reg, nil
}

// editorOptions translates the config into editor options.
func editorOptions(cfg config.Config, reg *preset.Registry) ([]ggedit.EditorOption, error) {
	bg, err := filter.ParseColor(cfg.Canvas.Background)
	if err != nil {
		return nil, fmt.Errorf("canvas background: %w", err)
	}
	return []ggedit.EditorOption{
		ggedit.WithSize(cfg.Canvas.Width, cfg.Canvas.Height),
		ggedit.WithMaxDimension(cfg.Canvas.MaxDimension),
		ggedit.WithMaxImagePixels(cfg.Server.MaxImagePixels),
		ggedit.WithBackground(bg),
		ggedit.WithFitRatio(cfg.Editor.FitRatio),
		ggedit.WithHistoryLimit(cfg.Editor.HistoryLimit),
		ggedit.WithExportName(cfg.Editor.ExportName),
		ggedit.WithPresets(reg),
	}, nil
}
