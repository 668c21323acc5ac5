// 指示: miu200521358
package minteractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	outputDirFileMode     = 0o755
	generatedSuffix       = ".generated.json"
	generatedReportSuffix = ".generated.report.json"
	curvePlotSuffix       = ".curves.png"
)

var nowFunc = time.Now

// BuildDefaultOutputPath は入力スケルトンパスから既定の出力スケルトンパスを生成する。
func BuildDefaultOutputPath(skeletonPath string) string {
	return buildSiblingPath(skeletonPath, generatedSuffix)
}

// BuildDefaultReportPath は入力スケルトンパスから既定のレポートパスを生成する。
func BuildDefaultReportPath(skeletonPath string) string {
	return buildSiblingPath(skeletonPath, generatedReportSuffix)
}

// BuildCurvePlotPath は診断画像の出力パスを生成する。
func BuildCurvePlotPath(plotDir string, motionPath string) string {
	base := fileStem(motionPath)
	if strings.TrimSpace(plotDir) == "" || base == "" {
		return ""
	}
	return filepath.Join(plotDir, base+curvePlotSuffix)
}

// buildSiblingPath は入力と同じディレクトリに stem + suffix のパスを作る。
func buildSiblingPath(inputPath string, suffix string) string {
	base := fileStem(inputPath)
	if base == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(inputPath), base+suffix)
}

// fileStem は拡張子を除いたファイル名を返す。
func fileStem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.TrimSpace(base)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// formatGeneratedAt はレポートの生成日時を RFC3339 で返す。
func formatGeneratedAt(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// ListMotionFiles はディレクトリ直下の読み込み可能なモーションをファイル名順に返す。
func ListMotionFiles(dir string, canLoad func(path string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("モーションディレクトリの読み込みに失敗しました: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if canLoad != nil && !canLoad(path) {
			continue
		}
		files = append(files, path)
	}
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

// ensureOutputDir は保存先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if outputDir == "" {
		return fmt.Errorf("保存先ディレクトリの解決に失敗しました")
	}
	if err := os.MkdirAll(outputDir, outputDirFileMode); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
