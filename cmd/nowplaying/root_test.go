package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup writes a config selecting provider and returns its path. The
// now-playing file and log live in a fresh HOME.
func setup(t *testing.T, provider string) (cfgPath, sourcePath, logPath string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sourcePath = filepath.Join(home, "current.json")
	logPath = filepath.Join(home, "nowplaying.log")
	cfgPath = filepath.Join(home, "config.toml")
	body := "provider = \"" + provider + "\"\n" +
		"source_path = \"" + sourcePath + "\"\n" +
		"log_file = \"" + logPath + "\"\n" +
		"poll_interval = \"1ms\"\n" +
		"wait_timeout = \"5s\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, sourcePath, logPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return executeContext(ctx, args...)
}

func executeContext(ctx context.Context, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"watch", "demo", "wait", "get", "call", "logs", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "prefs", "provider", "metrics-addr"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nowplaying dev on cli ("+runtime.GOARCH+")\n", out)
}

func TestWaitAndGet_FileProvider(t *testing.T) {
	cfgPath, sourcePath, _ := setup(t, "file")
	require.NoError(t, os.WriteFile(sourcePath, []byte(`{"title":"Song A","artist":"Artist X","genres":["Rock","Pop"],"track_number":4}`), 0o600))

	out, err := execute(t, "--config", cfgPath, "wait")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Song A\n")
	assert.Contains(t, out, "artist: Artist X\n")
	assert.Contains(t, out, "genres: Rock, Pop\n")
	assert.Contains(t, out, "tracknumber: 4\n")
	assert.NotContains(t, out, "albumtitle:")

	out, err = execute(t, "--config", cfgPath, "get", "Album_Title")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	out, err = execute(t, "--config", cfgPath, "get", "artist")
	require.NoError(t, err)
	assert.Equal(t, "Artist X\n", out)
}

func TestGetCmd_UnknownField(t *testing.T) {
	cfgPath, _, _ := setup(t, "memory")
	_, err := execute(t, "--config", cfgPath, "get", "lyrics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "lyrics"`)
}

func TestCallCmd_ListeningGateAndVersion(t *testing.T) {
	cfgPath, _, _ := setup(t, "memory")

	out, err := execute(t, "--config", cfgPath, "call", "--client", "host", "title", "version", "halt", "bogus")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "3 ", lines[0], "accessor before any wait")
	assert.Equal(t, "3 nowplaying dev on host ("+runtime.GOARCH+")", lines[1])
	assert.Equal(t, "3 S_OK", lines[2])
	assert.Equal(t, "0 ", lines[3])
}

func TestCallCmd_WaitThenRead(t *testing.T) {
	cfgPath, sourcePath, _ := setup(t, "file")
	require.NoError(t, os.WriteFile(sourcePath, []byte(`{"title":"Song A","artist":"Artist X","playback_type":"music"}`), 0o600))

	out, err := execute(t, "--config", cfgPath, "call", "wait_for_media", "title", "playbacktype")
	require.NoError(t, err)
	assert.Equal(t, "1 \n3 Song A\n3 Music\n", out)
}

func TestLogsCmd(t *testing.T) {
	cfgPath, _, logPath := setup(t, "memory")
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o600))

	out, err := execute(t, "--config", cfgPath, "logs", "-n", "2", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", out)
}

func TestWaitAndGet_InterruptIsCleanExit(t *testing.T) {
	cfgPath, _, _ := setup(t, "memory")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, args := range [][]string{{"wait"}, {"wait", "-c", "0"}, {"get", "title"}} {
		out, err := executeContext(ctx, append([]string{"--config", cfgPath}, args...)...)
		require.NoError(t, err, args)
		assert.Empty(t, out, args)
	}
}

func TestLogsCmd_Filters(t *testing.T) {
	cfgPath, _, logPath := setup(t, "memory")
	content := "2026/10/19 15:04:05 [INFO] app: using memory provider\n" +
		"2026/10/19 15:04:06 [WARN] watcher: fetch snapshot: operation failed\n" +
		"2026/10/19 15:04:07 [INFO] watcher: media changed (version 1): Song A - Artist X\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o600))

	out, err := execute(t, "--config", cfgPath, "logs", "--raw", "--component", "watcher", "--level", "warn")
	require.NoError(t, err)
	assert.Equal(t, "2026/10/19 15:04:06 [WARN] watcher: fetch snapshot: operation failed\n", out)

	_, err = execute(t, "--config", cfgPath, "logs", "--level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}
