package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/tonecanvas/tonecanvas-go/internal/application/startup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the experiment HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if ctx.exists {
				log.Printf("Using configuration file %s", ctx.path)
			} else {
				log.Printf("No configuration file at %s, using defaults and environment", ctx.path)
			}
			if err := startup.Initialize(cfg); err != nil {
				return err
			}
			log.Println("Application has shut down gracefully.")
			return nil
		},
	}
}
