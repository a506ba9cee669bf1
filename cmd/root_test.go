package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probeScript stands in for ffprobe: every video is 500 frames at 25 fps
const probeScript = `#!/bin/sh
cat <<'EOF'
{"streams":[{"codec_type":"video","nb_frames":"500","r_frame_rate":"25/1"}],"format":{"duration":"20.0"}}
EOF
`

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffprobe is a shell script")
	}

	dir := t.TempDir()
	for _, rel := range []string{"3.mp4", "a/1.mp4", "a/2.mp4"} {
		path := filepath.Join(dir, "videos", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	probe := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(probe, []byte(probeScript), 0o755))

	cfg := fmt.Sprintf(`paths:
  video_dir: %s
  annotation_dir: %s
  vocabulary_path: %s
annotation:
  annotator: tester
ffmpeg:
  probe_path: %s
log:
  level: error
`,
		filepath.Join(dir, "videos"),
		filepath.Join(dir, "annotations"),
		filepath.Join(dir, "vocab.json"),
		probe,
	)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return &workspace{dir: dir, config: cfgPath}
}

// run executes one CLI invocation against the workspace
func (w *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", w.config}, args...))
	err := root.Execute()
	return out.String(), err
}

func (w *workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := w.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestAnnotationFlow(t *testing.T) {
	w := newWorkspace(t)

	out := w.mustRun(t, "segment", "add", "a/1.mp4",
		"--start", "00:02.000", "--end", "00:05.500",
		"--noun", "钢梁", "--verb", "吊装", "--desc", "crane lift", "--tag", "crane,day")
	assert.Contains(t, out, "a/1")
	assert.Contains(t, out, "[0] 00:02.000 - 00:05.500  钢梁/吊装  crane lift  #crane #day")
	assert.Contains(t, out, "status:    已标注")
	assert.Contains(t, out, "annotator: tester")

	out = w.mustRun(t, "status", "3.mp4", "not-needed")
	assert.Equal(t, "3 [非必要]\n", out)

	out = w.mustRun(t, "videos")
	assert.Contains(t, out, "1. 3 [非必要]")
	assert.Contains(t, out, "2. a/1 [已标注] 1 segments")
	assert.Contains(t, out, "3. a/2 [未标注]")
	assert.Contains(t, out, "1/3 annotated")

	out = w.mustRun(t, "next")
	assert.Equal(t, "3. a/2.mp4\n", out)

	out = w.mustRun(t, "next", "--from", "3")
	assert.Equal(t, "no unannotated videos left\n", out)

	// the record on disk mirrors the video tree
	data, err := os.ReadFile(filepath.Join(w.dir, "annotations", "a", "1.json"))
	require.NoError(t, err)
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, true, record["annotated"])
	assert.Equal(t, "已标注", record["status"])
	assert.Equal(t, 20.0, record["duration"])

	out = w.mustRun(t, "segment", "edit", "a/1.mp4", "0", "--noun", "塔吊")
	assert.Contains(t, out, "塔吊/吊装")

	out = w.mustRun(t, "export")
	assert.Contains(t, out, "exported 1 videos")

	data, err = os.ReadFile(filepath.Join(w.dir, "annotations", "annotations_export.json"))
	require.NoError(t, err)
	var bundle struct {
		TotalVideos int `json:"total_videos"`
		Annotations []struct {
			VideoName string `json:"video_name"`
		} `json:"annotations"`
	}
	require.NoError(t, json.Unmarshal(data, &bundle))
	assert.Equal(t, 1, bundle.TotalVideos)
	require.Len(t, bundle.Annotations, 1)
	assert.Equal(t, "1.mp4", bundle.Annotations[0].VideoName)

	out = w.mustRun(t, "segment", "delete", "a/1.mp4", "last")
	assert.Contains(t, out, "no segments")
	assert.Contains(t, out, "status:    已标注")
}

func TestSegmentErrors(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.run(t, "segment", "add", "a/1.mp4", "--start", "00:02.000", "--end", "00:30.000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds video duration")

	_, err = w.run(t, "segment", "add", "a/1.mp4", "--start", "00:05.000", "--end", "00:02.000")
	require.Error(t, err)

	_, err = w.run(t, "segment", "add", "a/1.mp4", "--start", "2s", "--end", "00:02.000")
	require.Error(t, err)

	_, err = w.run(t, "segment", "delete", "a/1.mp4", "first")
	require.Error(t, err)

	_, err = w.run(t, "segment", "add", "missing.mp4", "--start", "00:01.000", "--end", "00:02.000")
	require.Error(t, err)

	_, err = w.run(t, "show", "../outside.mp4")
	require.Error(t, err)

	// nothing was written for the failed attempts
	_, err = os.Stat(filepath.Join(w.dir, "annotations", "a", "1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStatusTransitions(t *testing.T) {
	w := newWorkspace(t)

	w.mustRun(t, "status", "a/2.mp4", "非必要")

	_, err := w.run(t, "status", "a/2.mp4", "annotated")
	require.Error(t, err)

	_, err = w.run(t, "status", "a/2.mp4", "finished")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")

	out := w.mustRun(t, "status", "a/2.mp4", "unannotated")
	assert.Equal(t, "a/2 [未标注]\n", out)
}

func TestSubfolderScope(t *testing.T) {
	w := newWorkspace(t)

	out := w.mustRun(t, "subfolders")
	assert.Equal(t, "a (2 videos)\n", out)

	out = w.mustRun(t, "videos", "--subfolder", "a")
	assert.Contains(t, out, "1. a/1 [未标注]")
	assert.Contains(t, out, "2. a/2 [未标注]")
	assert.NotContains(t, out, "3 [")
	assert.Contains(t, out, "0/2 annotated")

	_, err := w.run(t, "videos", "--subfolder", "nope")
	require.Error(t, err)
}

func TestVocab(t *testing.T) {
	w := newWorkspace(t)

	out := w.mustRun(t, "vocab", "add", "nouns", "钢梁")
	assert.Equal(t, "nouns: 1.钢梁\n", out)
	w.mustRun(t, "vocab", "add", "noun", "塔吊")
	w.mustRun(t, "vocab", "add", "verbs", "吊装")

	out = w.mustRun(t, "vocab", "add", "nouns", "钢梁")
	assert.Equal(t, "nouns unchanged\n", out)

	out = w.mustRun(t, "vocab", "up", "nouns", "塔吊")
	assert.Equal(t, "nouns: 1.塔吊 2.钢梁\n", out)

	out = w.mustRun(t, "vocab", "pick", "2")
	assert.Equal(t, "nouns: 钢梁\n", out)

	out = w.mustRun(t, "vocab", "pick", "1", "--noun", "钢梁")
	assert.Equal(t, "verbs: 吊装\n", out)

	out = w.mustRun(t, "vocab", "pick", "9")
	assert.Equal(t, "no nouns at 9\n", out)

	out = w.mustRun(t, "vocab", "list")
	assert.Equal(t, "nouns:\n  1. 塔吊\n  2. 钢梁\nverbs:\n  1. 吊装\n", out)

	data, err := os.ReadFile(filepath.Join(w.dir, "vocab.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"nouns":["塔吊","钢梁"],"verbs":["吊装"]}`, string(data))

	_, err = w.run(t, "vocab", "add", "adjectives", "big")
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	w := newWorkspace(t)
	w.mustRun(t, "segment", "add", "3.mp4", "--start", "00:00.000", "--end", "00:01.000")

	out := w.mustRun(t, "stats")
	assert.Contains(t, out, "未标注: 2")
	assert.Contains(t, out, "已标注: 1")
	assert.Contains(t, out, "非必要: 0")
	assert.Contains(t, out, "annotated: 1/3 (33.3%)")
	assert.NotContains(t, out, "footage:")

	list := filepath.Join(w.dir, "list.txt")
	out = w.mustRun(t, "stats", "--footage", "--list", list)
	assert.Contains(t, out, "videos:      3")
	assert.Contains(t, out, "footage:     45s")
	assert.Contains(t, out, "a: 2 videos, 30s")
	assert.Contains(t, out, "video list written to")

	data, err := os.ReadFile(list)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. 3.mp4")
	assert.Contains(t, string(data), "3. a/2.mp4")
}

func TestVersionNeedsNoConfig(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "version", "--short"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "vdev\n", out.String())
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [not, a, map"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "videos"})
	assert.Error(t, root.Execute())
}
