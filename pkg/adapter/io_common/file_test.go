// 指示: miu200521358
package io_common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
)

func TestReadTextFileStripsUtf8Bom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.json")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBF{\"a\":1}"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadTextFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("bom not stripped: got=%q", string(got))
	}
}

func TestReadTextFileDecodesUtf16Bom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf16.json")
	// UTF-16LE BOM + "{}"
	if err := os.WriteFile(path, []byte{0xFF, 0xFE, '{', 0x00, '}', 0x00}, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadTextFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "{}" {
		t.Fatalf("utf16 not decoded: got=%q", string(got))
	}
}

func TestReadTextFileMissingIsIoError(t *testing.T) {
	_, err := ReadTextFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !merrors.IsIoError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindIo)
	}
}

func TestWriteJSONFileIndentsAndTerminates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSONFile(path, map[string]int{"a": 1}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := "{\n  \"a\": 1\n}\n"
	if string(raw) != want {
		t.Fatalf("output: got=%q want=%q", string(raw), want)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatalf("missing trailing newline")
	}
}
