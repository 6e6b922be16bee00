package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestPlaylistCommandPrintsOrderedTable(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BASE_DIR", base)
	corpusDir := filepath.Join(base, "stimuli")
	require.NoError(t, os.MkdirAll(corpusDir, 0o755))
	for _, name := range []string{"AA2.wav", "AA1.wav", "b.wav", "c.wav", "d.wav", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(corpusDir, name), nil, 0o644))
	}

	out := runCLI(t, "playlist", "--config", filepath.Join(base, "absent.toml"), "--corpus", corpusDir, "--seed", "7")

	assert.Contains(t, out, "AA1.wav")
	assert.Contains(t, out, "prefixed")
	assert.Contains(t, out, "5 stimuli")
	assert.NotContains(t, out, "notes.txt")
	assert.Less(t, strings.Index(out, "AA1.wav"), strings.Index(out, "AA2.wav"))
}

func TestPlaylistCommandEmptyCorpus(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BASE_DIR", base)

	out := runCLI(t, "playlist", "--config", filepath.Join(base, "absent.toml"))
	assert.Contains(t, out, "No .wav stimuli found")
}

func TestConfigShowCommand(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BASE_DIR", base)

	out := runCLI(t, "config", "show", "--config", filepath.Join(base, "absent.toml"))
	assert.Contains(t, out, "not found, defaults")
	assert.Contains(t, out, "corpus.prefix")
	assert.Contains(t, out, "generated at startup")
}

func TestPlaylistGroups(t *testing.T) {
	files := []string{"AA1.wav", "x.wav", "y.wav", "z.wav"}
	assert.Equal(t, []string{"prefixed", "fixed", "fixed", "shuffled"}, playlistGroups(files, "AA", 2))

	short := []string{"AA1.wav", "x.wav", "y.wav"}
	assert.Equal(t, []string{"prefixed", "shuffled", "shuffled"}, playlistGroups(short, "AA", 2))
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))

	out := renderTable([]string{"#", "File"}, [][]string{{"0", "a.wav"}, {"1"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "a.wav")
	assert.Contains(t, out, "File")
}
