// 指示: miu200521358
package io_report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

func TestReportRepositorySave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := &model.BatchReport{
		TargetSkeleton: "man.json",
		ProfileID:      model.DefaultProfileID,
		Fps:            30,
		FilesProcessed: 2,
		FilesSucceeded: 1,
		FilesFailed:    1,
		Items: []model.BatchItem{
			{File: "a.json", Status: model.BatchStatusOK, AnimationName: "FBX_a", Warnings: []string{}},
			{File: "b.json", Status: model.BatchStatusFailed, Error: "broken", ErrorKind: "io", Warnings: []string{}},
		},
	}
	if err := NewReportRepository().Save(path, report); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded model.BatchReport
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.ProfileID != "unknown-profile" {
		t.Fatalf("profileId: got=%s want=%s", decoded.ProfileID, "unknown-profile")
	}
	if len(decoded.Items) != 2 || decoded.Items[1].ErrorKind != "io" {
		t.Fatalf("items: got=%+v", decoded.Items)
	}
}

func TestReportRepositorySaveWritesEmptyItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := NewReportRepository().Save(path, &model.BatchReport{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	items, ok := decoded["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("items: got=%v want=[]", decoded["items"])
	}
}
