// 指示: miu200521358
package merrors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassifyWrappedErrors(t *testing.T) {
	inputErr := fmt.Errorf("変換失敗: %w", NewInputError("フレームがありません: %d", 0))
	if got := Classify(inputErr); got != KindInput {
		t.Fatalf("kind mismatch: got=%s want=%s", got, KindInput)
	}
	if !IsInvariantError(NewInvariantError("参照が残っています")) {
		t.Fatalf("expected invariant error")
	}
	if got := Classify(errors.New("plain")); got != KindUnknown {
		t.Fatalf("kind mismatch: got=%s want=%s", got, KindUnknown)
	}
	if got := Classify(nil); got != "" {
		t.Fatalf("nil error should have empty kind: got=%s", got)
	}
}

func TestIoErrorKeepsCause(t *testing.T) {
	err := NewIoError("ファイルを開けません: %s", os.ErrNotExist, "a.json")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause should be reachable via errors.Is")
	}
	if err.Error() != "ファイルを開けません: a.json: "+os.ErrNotExist.Error() {
		t.Fatalf("message mismatch: %s", err.Error())
	}
	if !IsIoError(err) {
		t.Fatalf("expected io error")
	}
}
