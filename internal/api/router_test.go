package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitelabel/annotator/internal/catalog"
	"github.com/sitelabel/annotator/internal/config"
	"github.com/sitelabel/annotator/internal/ffmpeg"
	"github.com/sitelabel/annotator/internal/services"
	"github.com/sitelabel/annotator/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProber struct{}

func (stubProber) VideoInfo(context.Context, string) (*ffmpeg.VideoInfo, error) {
	return &ffmpeg.VideoInfo{FrameCount: 500, FrameRate: 25}, nil
}

type stubCapturer struct{}

func (stubCapturer) CaptureFrame(_ context.Context, _, output string, _ float64) error {
	return os.WriteFile(output, []byte{0xff, 0xd8}, 0644)
}

func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.VideoDir = filepath.Join(dir, "videos")
	cfg.Paths.AnnotationDir = filepath.Join(dir, "ann")
	cfg.Paths.ExportPath = filepath.Join(dir, "ann", config.DefaultExportName)
	cfg.Paths.VocabularyPath = filepath.Join(dir, "noun_verb_cache.json")
	cfg.Server.CorsOrigins = []string{"http://localhost:5173"}

	for _, rel := range []string{"a/1.mp4", "a/2.mp4", "b/3.mp4"} {
		path := filepath.Join(cfg.Paths.VideoDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	logger := zap.NewNop()
	st := storage.NewManager(cfg.Paths.VideoDir, cfg.Paths.AnnotationDir, cfg.Paths.ExportPath, cfg.Paths.VocabularyPath, logger)
	videos := catalog.New(cfg.Paths.VideoDir, ".mp4", logger)
	svc := &services.Services{
		Annotation: services.NewAnnotationService(st, videos, stubProber{}, "tester", logger),
		Export:     services.NewExportService(st, videos, logger),
		Vocabulary: services.NewVocabularyService(st, []string{"钢梁"}, []string{"吊装"}, logger),
		Stats:      services.NewStatsService(st, videos, 15, []float64{3}, logger),
		Frame:      services.NewFrameService(stubCapturer{}, logger),
		Catalog:    videos,
		Storage:    st,
		Logger:     logger,
	}
	return NewRouter(svc, cfg, logger), cfg
}

func do(t *testing.T, router *gin.Engine, method, target string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	w, body := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAnnotationFlow(t *testing.T) {
	router, cfg := newTestRouter(t)

	w, body := do(t, router, http.MethodGet, "/api/annotations?path=a/1.mp4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "未标注", body["status"])
	assert.Equal(t, 20.0, body["duration"])
	assert.Equal(t, false, body["annotated"])

	w, body = do(t, router, http.MethodPost, "/api/annotations/segments", gin.H{
		"path": "a/1.mp4", "start": "00:02.000", "end": "00:05.000",
		"description": "lifting", "noun": "beam", "verb": "lift", "tags": []string{},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "已标注", body["status"])
	assert.Len(t, body["segments"], 1)
	assert.FileExists(t, filepath.Join(cfg.Paths.AnnotationDir, "a", "1.json"))

	w, body = do(t, router, http.MethodPut, "/api/annotations/segments/0", gin.H{
		"path": "a/1.mp4", "description": "吊装钢梁",
	})
	require.Equal(t, http.StatusOK, w.Code)
	seg := body["segments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "吊装钢梁", seg["description"])
	assert.Equal(t, "beam", seg["noun"], "unset fields are kept")

	w, body = do(t, router, http.MethodDelete, "/api/annotations/segments/last?path=a/1.mp4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["annotated"])
}

func TestAnnotationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
		code   string
	}{
		{"parse error", http.MethodPost, "/api/annotations/segments", gin.H{"path": "a/1.mp4", "start": "abc", "end": "0:05"}, http.StatusBadRequest, "PARSE"},
		{"past duration", http.MethodPost, "/api/annotations/segments", gin.H{"path": "a/1.mp4", "start": "0:01", "end": "0:21"}, http.StatusBadRequest, "VALIDATION"},
		{"missing end", http.MethodPost, "/api/annotations/segments", gin.H{"path": "a/1.mp4", "start": "0:01"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown video", http.MethodGet, "/api/annotations?path=a/9.mp4", nil, http.StatusNotFound, "NOT_FOUND"},
		{"outside root", http.MethodGet, "/api/annotations?path=../../etc/passwd", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad status", http.MethodPut, "/api/annotations/status", gin.H{"path": "a/1.mp4", "status": "done"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad index", http.MethodDelete, "/api/annotations/segments/x?path=a/1.mp4", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"nothing to delete", http.MethodDelete, "/api/annotations/segments/last?path=a/1.mp4", nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, router, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := do(t, router, http.MethodPut, "/api/annotations/status", gin.H{"path": "a/2.mp4", "status": "非必要"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "非必要", body["status"])

	w, body = do(t, router, http.MethodPut, "/api/annotations/status", gin.H{"path": "a/2.mp4", "status": "annotated"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", body["code"])

	w, body = do(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts := body["counts"].(map[string]interface{})
	assert.Equal(t, 2.0, counts["未标注"])
	assert.Equal(t, 0.0, counts["已标注"])
	assert.Equal(t, 1.0, counts["非必要"])
	assert.Equal(t, 3.0, body["total"])

	w, body = do(t, router, http.MethodGet, "/api/videos/next?from=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b/3.mp4", body["rel_path"])
}

func TestScopeAndVideos(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := do(t, router, http.MethodGet, "/api/subfolders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	subs := body["subfolders"].([]interface{})
	require.Len(t, subs, 2)
	assert.Equal(t, 2.0, subs[0].(map[string]interface{})["video_count"])

	w, body = do(t, router, http.MethodPut, "/api/scope", gin.H{"subfolder": "b"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b", body["scope"])
	assert.Equal(t, 1.0, body["videos"])

	w, body = do(t, router, http.MethodGet, "/api/videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	videos := body["videos"].([]interface{})
	require.Len(t, videos, 1)
	assert.Equal(t, "b/3", videos[0].(map[string]interface{})["display_name"])

	w, _ = do(t, router, http.MethodPut, "/api/scope", gin.H{"subfolder": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = do(t, router, http.MethodPut, "/api/scope", gin.H{"subfolder": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, body["videos"])
}

func TestExportEndpoint(t *testing.T) {
	router, cfg := newTestRouter(t)

	w, _ := do(t, router, http.MethodPost, "/api/annotations/segments", gin.H{"path": "b/3.mp4", "start": "0:01", "end": "0:02"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := do(t, router, http.MethodPost, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["total_videos"])
	assert.Equal(t, cfg.Paths.ExportPath, body["path"])
	assert.FileExists(t, cfg.Paths.ExportPath)
}

func TestVocabularyEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := do(t, router, http.MethodPost, "/api/vocabulary/nouns", gin.H{"term": "塔吊"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, []interface{}{"钢梁", "塔吊"}, body["nouns"])

	w, body = do(t, router, http.MethodPost, "/api/vocabulary/nouns/"+url.PathEscape("塔吊")+"/up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"塔吊", "钢梁"}, body["nouns"])

	w, body = do(t, router, http.MethodGet, "/api/vocabulary/pick?n=1&noun="+url.QueryEscape("塔吊"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "verbs", body["kind"])
	assert.Equal(t, "吊装", body["term"])

	w, body = do(t, router, http.MethodGet, "/api/vocabulary/pick?n=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["selected"])

	w, body = do(t, router, http.MethodDelete, "/api/vocabulary/verbs/"+url.PathEscape("吊装"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, body["verbs"])

	w, _ = do(t, router, http.MethodPost, "/api/vocabulary/adjectives", gin.H{"term": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFrameEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := do(t, router, http.MethodGet, "/api/videos/frame?path=a/1.mp4&t=00:01.500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0xff, 0xd8}, w.Body.Bytes())

	w, body := do(t, router, http.MethodGet, "/api/videos/frame?path=a/1.mp4&t=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PARSE", body["code"])
}

func TestCompression(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vocabulary", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(zr).Decode(&body))
	assert.Equal(t, []interface{}{"钢梁"}, body["nouns"])

	req = httptest.NewRequest(http.MethodGet, "/api/videos/frame?path=a/1.mp4&t=00:01.000", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, []byte{0xff, 0xd8}, w.Body.Bytes())
}

func serve(router *gin.Engine, method, target string, body interface{}) int {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestConcurrentRequests(t *testing.T) {
	router, cfg := newTestRouter(t)
	const n = 20

	segments := make([]int, n)
	terms := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			segments[i] = serve(router, http.MethodPost, "/api/annotations/segments", gin.H{
				"path":  "a/1.mp4",
				"start": fmt.Sprintf("00:%02d.000", i),
				"end":   fmt.Sprintf("00:%02d.500", i),
			})
		}(i)
		go func(i int) {
			defer wg.Done()
			terms[i] = serve(router, http.MethodPost, "/api/vocabulary/nouns", gin.H{"term": fmt.Sprintf("term-%d", i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			subfolder := ""
			if i%2 == 0 {
				subfolder = "a"
			}
			serve(router, http.MethodPut, "/api/scope", gin.H{"subfolder": subfolder})
			serve(router, http.MethodGet, "/api/videos", nil)
			serve(router, http.MethodGet, "/api/stats", nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusCreated, segments[i], "segment %d", i)
		assert.Equal(t, http.StatusOK, terms[i], "term %d", i)
	}

	w, body := do(t, router, http.MethodGet, "/api/annotations?path=a/1.mp4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["segments"], n)

	data, err := os.ReadFile(filepath.Join(cfg.Paths.AnnotationDir, "a", "1.json"))
	require.NoError(t, err)
	var record struct {
		Segments []json.RawMessage `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Len(t, record.Segments, n)

	_, body = do(t, router, http.MethodGet, "/api/vocabulary", nil)
	assert.Len(t, body["nouns"], n+1)
}
