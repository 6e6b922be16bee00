package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/corpus"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var corpusDir string
	var prefix string
	var seed int64
	var fixedHead int

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Print the stimulus order the server would use",
		Long: "Scans the corpus directory and prints the ordered playlist. " +
			"Pass --seed to reproduce a specific shuffle.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := corpus.Options{
				Prefix:    cfg.Corpus.Prefix,
				FixedHead: cfg.Corpus.FixedHead,
				Seed:      cfg.Corpus.Seed,
			}
			dir := cfg.Paths.CorpusDir
			if cmd.Flags().Changed("corpus") {
				dir = corpusDir
			}
			if cmd.Flags().Changed("prefix") {
				opts.Prefix = prefix
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if cmd.Flags().Changed("fixed-head") {
				opts.FixedHead = fixedHead
			}

			playlist := corpus.LoadPlaylist(dir, opts, logging.NewDiscardLogger())
			out := cmd.OutOrStdout()
			if playlist.Len() == 0 {
				fmt.Fprintf(out, "No .wav stimuli found in %s\n", dir)
				return nil
			}

			files := playlist.Files()
			groups := playlistGroups(files, opts.Prefix, opts.FixedHead)
			rows := make([][]string, len(files))
			for i, name := range files {
				rows[i] = []string{strconv.Itoa(i), name, groups[i]}
			}
			fmt.Fprintln(out, renderTable([]string{"#", "File", "Placement"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(out, "%d stimuli from %s\n", len(files), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusDir, "corpus", "", "Corpus directory (defaults to paths.corpus_dir)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Prefix of stimuli that always come first")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed (0 seeds from the clock)")
	cmd.Flags().IntVar(&fixedHead, "fixed-head", 0, "Number of non-prefixed stimuli kept in listing order")

	return cmd
}

// playlistGroups labels each ordered entry with how it was placed.
func playlistGroups(files []string, prefix string, fixedHead int) []string {
	others := 0
	for _, name := range files {
		if prefix == "" || !strings.HasPrefix(name, prefix) {
			others++
		}
	}
	groups := make([]string, len(files))
	seen := 0
	for i, name := range files {
		switch {
		case prefix != "" && strings.HasPrefix(name, prefix):
			groups[i] = "prefixed"
		case others > fixedHead && seen < fixedHead:
			groups[i] = "fixed"
			seen++
		default:
			groups[i] = "shuffled"
			seen++
		}
	}
	return groups
}
