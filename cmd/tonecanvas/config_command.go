package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Validate and print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source := ctx.path
			if !ctx.exists {
				source += " (not found, defaults)"
			}
			secret := "generated at startup"
			if cfg.Session.Secret != "" {
				secret = "configured"
			}
			transcription := "disabled"
			if cfg.TranscriptionEnabled() {
				transcription = "assemblyai"
			}

			rows := [][]string{
				{"config file", source},
				{"server.port", cfg.Server.Port},
				{"server.allowed_origins", strings.Join(cfg.Server.AllowedOrigins, ", ")},
				{"paths.corpus_dir", cfg.Paths.CorpusDir},
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.uploads_dir", cfg.Paths.UploadsDir},
				{"paths.temp_dir", cfg.Paths.TempDir},
				{"paths.icons_dir", cfg.Paths.IconsDir},
				{"corpus.prefix", cfg.Corpus.Prefix},
				{"corpus.fixed_head", strconv.Itoa(cfg.Corpus.FixedHead)},
				{"corpus.seed", strconv.FormatInt(cfg.Corpus.Seed, 10)},
				{"session.ttl", cfg.SessionTTL().String()},
				{"session.secret", secret},
				{"monitor.enabled", strconv.FormatBool(cfg.Monitor.Enabled)},
				{"transcription", transcription},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
