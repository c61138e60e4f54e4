package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "nfid", "test", slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("minted", MaskField("passphrase", "hunter2"), slog.String("collection", "0xabc"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "minted", line["message"])
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "nfid", line["service"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, RedactedValue, line["passphrase"])
	require.Equal(t, "0xabc", line["collection"])
}

func TestWriterForTeesIntoRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nfid.log")
	var stdout bytes.Buffer
	out := writerFor(&stdout, FileOptions{Path: path, MaxSizeMB: 1})

	_, err := out.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.Equal(t, "hello\n", stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}
