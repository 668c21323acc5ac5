// 指示: miu200521358
package io_plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

func TestCurveRepositorySaveWritesPng(t *testing.T) {
	projected := &model.ProjectedMotion{
		FrameTimes: []float64{0, 0.5, 1},
		JointAngles: map[model.CanonicalJoint][]float64{
			model.JointHips:    {0, 5, 10},
			model.JointLeftArm: {-10, 0, 10},
		},
	}
	path := filepath.Join(t.TempDir(), "clip.curves.png")
	joints := []model.CanonicalJoint{model.JointHips, model.JointLeftArm}
	if err := NewCurveRepository().Save(path, projected, joints); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Fatalf("output is not png")
	}
}

func TestCurveRepositorySaveWithoutCurves(t *testing.T) {
	projected := &model.ProjectedMotion{FrameTimes: []float64{0, 1}}
	path := filepath.Join(t.TempDir(), "empty.png")
	err := NewCurveRepository().Save(path, projected, []model.CanonicalJoint{model.JointHead})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !merrors.IsIoError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindIo)
	}
}
