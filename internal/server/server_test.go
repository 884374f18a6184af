package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rendercut/internal/compile"
	"github.com/backmassage/rendercut/internal/config"
	"github.com/backmassage/rendercut/internal/encoder"
	"github.com/backmassage/rendercut/internal/media"
	"github.com/backmassage/rendercut/internal/session"
	"github.com/backmassage/rendercut/internal/timeline"
)

func newTestServer(t *testing.T) (*Server, *media.MemoryRegistry, *session.Controller) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ScratchDir = t.TempDir()

	registry := media.NewMemoryRegistry()
	sup := encoder.New(hclog.NewNullLogger(), time.Second)
	control := session.NewController(hclog.NewNullLogger(), registry, sup, cfg.ScratchDir)
	control.EncoderBinary = writeStub(t)

	return New(hclog.NewNullLogger(), &cfg, registry, control), registry, control
}

// writeStub fakes the encoder: it writes a minimal mp4 to the last arg.
func writeStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\n" +
		`printf '\000\000\000\040ftypisom\000\000\000\000data' > "$out"` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RegisterAsset(t *testing.T) {
	srv, registry, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/assets", media.Asset{
		ID: "a", Path: "/media/a.mp4", Duration: 10, HasVideo: true, HasAudio: true,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, registry.Len())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/assets", media.Asset{ID: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ExportRejectsUnknownAsset(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/export", ExportRequest{
		Tracks: []timeline.Track{{Kind: timeline.TrackVideo, Clips: []timeline.Clip{
			{AssetID: "ghost", StartTime: 0, TrimIn: 0, TrimOut: 3},
		}}},
		Options: compile.Options{OutputPath: filepath.Join(t.TempDir(), "out.mp4")},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var res session.StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "not found")
}

func TestServer_ExportLifecycle(t *testing.T) {
	srv, registry, control := newTestServer(t)
	router := srv.Router()
	registry.Register(media.Asset{ID: "a", Path: "/media/a.mp4", Duration: 10, HasVideo: true, HasAudio: true})

	out := filepath.Join(t.TempDir(), "out.mp4")
	rec := doJSON(t, router, http.MethodPost, "/api/v1/export", ExportRequest{
		Tracks: []timeline.Track{{Kind: timeline.TrackVideo, Clips: []timeline.Clip{
			{AssetID: "a", StartTime: 0, TrimIn: 0, TrimOut: 4},
		}}},
		Options: compile.Options{OutputPath: out},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		return control.Progress().Stage == session.StageComplete
	}, 10*time.Second, 10*time.Millisecond)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/export/progress", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var p session.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, session.StageComplete, p.Stage)
	assert.Equal(t, 100, p.Percent)
	assert.Equal(t, out, p.OutputPath)
}

func TestServer_CancelWithoutExportSucceeds(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/export/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res session.CancelResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
}
