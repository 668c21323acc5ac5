// 指示: miu200521358
package io_skeleton

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
)

const sampleSkeletonJSON = `{
  "skeleton": {"spine": "4.1.00", "hash": "abc"},
  "bones": [
    {"name": "root"},
    {"name": "hip", "parent": "root", "y": 120, "custom": true}
  ],
  "slots": [{"name": "body", "bone": "hip", "attachment": "body"}],
  "skins": [{"name": "default", "attachments": {}}],
  "events": {"step": {}},
  "animations": {"idle": {"bones": {"hip": {"rotate": [{"time": 0, "value": 5}]}}}}
}`

func writeSkeletonFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skeleton.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestSkeletonRepositoryCanLoad(t *testing.T) {
	repository := NewSkeletonRepository()
	if !repository.CanLoad("model.JSON") {
		t.Fatalf("expected model.JSON to be loadable")
	}
	if repository.CanLoad("model.skel") {
		t.Fatalf("expected model.skel to be not loadable")
	}
}

func TestSkeletonRepositoryLoadAndSavePreservesUnknownFields(t *testing.T) {
	repository := NewSkeletonRepository()
	skeleton, err := repository.Load(writeSkeletonFile(t, sampleSkeletonJSON))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(skeleton.Bones) != 2 {
		t.Fatalf("bone count: got=%d want=%d", len(skeleton.Bones), 2)
	}
	if skeleton.Bones[1].Y != 120 {
		t.Fatalf("hip y: got=%v want=%v", skeleton.Bones[1].Y, 120)
	}

	outPath := filepath.Join(t.TempDir(), "out.json")
	if err := repository.Save(outPath, skeleton); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	for _, key := range []string{"skeleton", "bones", "slots", "skins", "events", "animations"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("top-level key %q was dropped", key)
		}
	}
	if _, ok := decoded["skins"].([]any); !ok {
		t.Fatalf("skins form changed: got=%T want=[]any", decoded["skins"])
	}
	if !strings.Contains(string(raw), `"custom": true`) {
		t.Fatalf("unknown bone field was dropped: %s", string(raw))
	}
}

func TestSkeletonRepositoryLoadRejectsMissingBones(t *testing.T) {
	repository := NewSkeletonRepository()
	_, err := repository.Load(writeSkeletonFile(t, `{"slots": []}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !merrors.IsIoError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindIo)
	}
}

func TestSkeletonRepositoryLoadRejectsExtension(t *testing.T) {
	repository := NewSkeletonRepository()
	if _, err := repository.Load("skeleton.skel"); err == nil {
		t.Fatalf("expected error")
	}
}
