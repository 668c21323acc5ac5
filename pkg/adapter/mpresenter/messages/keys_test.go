// 指示: miu200521358
package messages

import (
	"strings"
	"testing"
)

func TestMessageKeysAreDefined(t *testing.T) {
	keys := []string{
		HelpUsage,
		FlagMotion,
		FlagMotionDir,
		FlagSkeleton,
		FlagProfile,
		FlagSkeletonMode,
		FlagSkeletonScope,
		FlagSkeletonMismatch,
		MessageSkeletonRequired,
		MessageMotionRequired,
		MessageMotionConflict,
		MessageNoSuccess,
		LogLoadStart,
		LogItemSuccess,
		LogItemFailed,
		LogBatchSummary,
	}

	seen := map[string]struct{}{}
	for _, key := range keys {
		if key == "" {
			t.Fatalf("key should not be empty")
		}
		if _, exists := seen[key]; exists {
			t.Fatalf("key should be unique: %s", key)
		}
		seen[key] = struct{}{}
	}
}

func TestFormatKeysCarryVerbs(t *testing.T) {
	for _, key := range []string{MessageInvalidChoice, LogLoadStart, LogItemFailed, LogOutputWritten, LogReportWritten} {
		if !strings.Contains(key, "%") {
			t.Fatalf("format key should contain a verb: %s", key)
		}
	}
}
