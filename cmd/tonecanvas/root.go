package main

import (
	"github.com/spf13/cobra"

	"github.com/tonecanvas/tonecanvas-go/pkg/config"
)

// commandContext lazily loads configuration shared by subcommands.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
	path       string
	exists     bool
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, exists, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg, c.path, c.exists = cfg, path, exists
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	serveCmd := newServeCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "tonecanvas",
		Short:         "ToneCanvas pitch perception experiment server",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the binary without a subcommand starts the server.
		RunE: serveCmd.RunE,
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default $TONECANVAS_CONFIG or ./tonecanvas.toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newPlaylistCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
