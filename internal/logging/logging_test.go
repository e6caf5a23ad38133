package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConfigs(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, "info", def.Level)
	assert.True(t, def.WriteToStderr)
	assert.Equal(t, "ccindex.log", filepath.Base(def.FilePath))

	assert.Equal(t, "debug", DebugConfig().Level)

	srv := ServerConfig("warn")
	assert.Equal(t, "warn", srv.Level)
	assert.False(t, srv.WriteToStderr)
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: a logger writing only to a temp file
	path := filepath.Join(t.TempDir(), "logs", "ccindex.log")
	logger, cleanup, err := Setup(Config{Level: "info", FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)

	// When: logging below and at the threshold
	logger.Debug("hidden")
	logger.Info("index built", slog.String("index", "descriptor"), slog.Int("entries", 3))
	cleanup()

	// Then: only the info line is written, as JSON
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "index built", entry["msg"])
	assert.Equal(t, "descriptor", entry["index"])
	assert.Equal(t, float64(3), entry["entries"])
}

func TestRotatingWriter_Rotates(t *testing.T) {
	// Given: a writer with a tiny threshold and two kept files
	path := filepath.Join(t.TempDir(), "ccindex.log")
	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	w.maxSize = 10
	w.SetImmediateSync(false)

	// When: writing four lines that each exceed the threshold together
	for _, line := range []string{"first-1\n", "second-2\n", "third-33\n", "fourth-4\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	// Then: current + two rotated files remain, newest content first
	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fourth-4\n", string(cur))

	one, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "third-33\n", string(one))

	two, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "second-2\n", string(two))

	assert.NoFileExists(t, path+".3")
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccindex.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := NewRotatingWriter(path, 1, 1)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "x.log"), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, w.Close())
}

func TestFindLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := FindLogFile("")
	assert.Error(t, err)

	explicit := filepath.Join(t.TempDir(), "mine.log")
	_, err = FindLogFile(explicit)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(explicit, nil, 0o644))
	got, err := FindLogFile(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	require.NoError(t, os.MkdirAll(DefaultLogDir(), 0o755))
	require.NoError(t, os.WriteFile(DefaultLogPath(), nil, 0o644))
	got, err = FindLogFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogPath(), got)
}

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"DEBUG","msg":"formula match","query":"C=6:6"}
{"time":"2026-01-02T10:00:01.000Z","level":"INFO","msg":"index built","index":"search","entries":40}
not json at all
{"time":"2026-01-02T10:00:02.000Z","level":"ERROR","msg":"component failed","id":"C004","error_code":"ERR_507_PERCEPTION_FAILED"}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccindex.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestParseLine(t *testing.T) {
	e := ParseLine(`{"time":"2026-01-02T10:00:01.000Z","level":"INFO","msg":"index built","entries":40}`)

	require.True(t, e.IsValid)
	assert.Equal(t, "INFO", e.Level)
	assert.Equal(t, "index built", e.Msg)
	assert.Equal(t, map[string]any{"entries": float64(40)}, e.Attrs)
	assert.Equal(t, 2026, e.Time.Year())

	assert.False(t, ParseLine("plain text").IsValid)
}

func TestViewer_TailFilters(t *testing.T) {
	path := writeSample(t)

	tests := []struct {
		name string
		cfg  ViewerConfig
		n    int
		want []string
	}{
		{name: "all", cfg: ViewerConfig{}, n: 100, want: []string{"formula match", "index built", "", "component failed"}},
		{name: "last two", cfg: ViewerConfig{}, n: 2, want: []string{"", "component failed"}},
		{name: "level", cfg: ViewerConfig{Level: "error"}, n: 100, want: []string{"component failed"}},
		{name: "pattern", cfg: ViewerConfig{Pattern: regexp.MustCompile(`C004`)}, n: 100, want: []string{"component failed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewViewer(tt.cfg, nil).Tail(path, tt.n)
			require.NoError(t, err)

			msgs := make([]string, 0, len(entries))
			for _, e := range entries {
				msgs = append(msgs, e.Msg)
			}
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestViewer_FormatEntry(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, nil)
	e := ParseLine(`{"time":"2026-01-02T10:00:02.000Z","level":"ERROR","msg":"component failed","id":"C004","error_code":"ERR_507"}`)

	got := v.FormatEntry(e)

	assert.Equal(t, "10:00:02.000 ERROR component failed error_code=ERR_507 id=C004", got)
	assert.Equal(t, "raw line", v.FormatEntry(ParseLine("raw line")))
}

func TestViewer_Print(t *testing.T) {
	var sb strings.Builder
	v := NewViewer(ViewerConfig{NoColor: true}, &sb)

	v.Print([]LogEntry{ParseLine("one"), ParseLine("two")})

	assert.Equal(t, "one\ntwo\n", sb.String())
}

func TestViewer_Follow(t *testing.T) {
	// Given: a follower on an existing log
	path := writeSample(t)
	v := NewViewer(ViewerConfig{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()

	// When: a line is appended
	time.Sleep(50 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"time":"2026-01-02T10:00:03.000Z","level":"INFO","msg":"appended"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: only the new line is delivered
	select {
	case e := <-entries:
		assert.Equal(t, "appended", e.Msg)
	case <-ctx.Done():
		t.Fatal("no entry followed")
	}
	cancel()
	assert.NoError(t, <-done)
}
