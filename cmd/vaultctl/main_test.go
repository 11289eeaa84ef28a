package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeyCommand(t *testing.T) {
	out, err := run(t, "key", "device123", "2025-07-19T13:30:00.123+09:00")
	require.NoError(t, err)
	assert.Contains(t, out, "key:         files/device123/2025-07-19/13-30/audio.wav\n")
	assert.Contains(t, out, "offset:      +0900\n")

	out, err = run(t, "key", "device123", "2025-07-19 01:15:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "files/device123/2025-07-19/01-00/audio.wav")
}

func TestKeyCommand_Errors(t *testing.T) {
	_, err := run(t, "key", "../etc", "2025-07-19T13:30:00+09:00")
	assert.Error(t, err)

	_, err = run(t, "key", "device123", "2025-07-19T13:30:00")
	assert.Error(t, err)

	_, err = run(t, "key", "device123")
	assert.Error(t, err)
}

func TestUploadCommand(t *testing.T) {
	var (
		gotMetadata map[string]string
		gotFile     []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &gotMetadata))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	out, err := run(t, "upload", "--url", srv.URL, "--device", "device123",
		"--recorded-at", "2025-07-19T13:30:00.123+09:00", path)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok"}`, out)
	assert.Equal(t, map[string]string{"device_id": "device123", "recorded_at": "2025-07-19T13:30:00.123+09:00"}, gotMetadata)
	assert.Equal(t, []byte("RIFF"), gotFile)
}

func TestHealthCommand(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	out, err := run(t, "health", "--url", srv.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")

	status = http.StatusServiceUnavailable
	_, err = run(t, "health", "--url", srv.URL)
	assert.Error(t, err)
}
