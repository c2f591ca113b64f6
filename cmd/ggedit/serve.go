package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		addr      string
		maxUpload int64
		ttl       time.Duration
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("max-upload") {
				cfg.Server.MaxUploadBytes = maxUpload
			}
			if !flags.Changed("session-ttl") {
				ttl = time.Duration(cfg.Server.SessionTTL)
			}

			reg, err := registry(cfg)
			if err != nil {
				return err
			}
			edOpts, err := editorOptions(cfg, reg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch && cfg.Editor.PresetFile != "" {
				go func() {
					if err := reg.Watch(ctx, cfg.Editor.PresetFile); err != nil {
						ggedit.Logger().Warn("preset watch stopped", "err", err)
					}
				}()
			}

			srv := server.New(
				server.WithEditorOptions(edOpts...),
				server.WithPresets(reg),
				server.WithMaxUpload(cfg.Server.MaxUploadBytes),
				server.WithSessionTTL(ttl),
			)
			cmd.Printf("ggedit listening on http://%s\n", cfg.Server.Addr)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address (overrides config)")
	f.Int64Var(&maxUpload, "max-upload", server.DefaultMaxUpload, "maximum upload size in bytes")
	f.DurationVar(&ttl, "session-ttl", server.DefaultSessionTTL, "idle session lifetime, 0 to keep forever")
	f.BoolVar(&watch, "watch", true, "reload the preset file when it changes")
	return cmd
}
