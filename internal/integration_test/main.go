// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_motion"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_plot"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_profile"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_report"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_skeleton"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

// targetCase は1スケルトン分の検証入力を表す。
type targetCase struct {
	MotionDir    string
	SkeletonPath string
	ProfilePath  string
	Mode         string
}

var targetCases = []targetCase{
	{
		MotionDir:    "E:/Mocap/mixamo/walk_set",
		SkeletonPath: "E:/Spine/man39/man39.json",
		ProfilePath:  "E:/Spine/man39/man39.profile.yaml",
		Mode:         model.SkeletonModeSpineFirst,
	},
	// {
	// 	MotionDir:    "E:/Mocap/mixamo/dance_set",
	// 	SkeletonPath: "E:/Spine/man39/man39.json",
	// 	ProfilePath:  "E:/Spine/man39/man39.profile.yaml",
	// 	Mode:         model.SkeletonModeFbxFirst,
	// },
}

// batchConfig はバッチ変換の実行設定を表す。
type batchConfig struct {
	OutputRoot string
	DryRun     bool
	FailFast   bool
	Plot       bool
}

// conversionEntry は1ケース分の変換入力情報を表す。
type conversionEntry struct {
	Index        int
	CaseName     string
	MotionDir    string
	SkeletonPath string
	ProfilePath  string
	Mode         string
	CaseDir      string
	OutputPath   string
	ReportPath   string
}

// conversionResult は1ケース分の変換結果を表す。
type conversionResult struct {
	Entry     conversionEntry
	Status    string
	Duration  time.Duration
	Err       error
	Succeeded int
	Failed    int
	StageInfo string
}

// convertProgressCollector は変換の進捗イベントを収集する。
type convertProgressCollector struct {
	eventCounts map[minteractor.ConvertProgressEventType]int
	frameMax    int
	boneMax     int
}

// main はモーションディレクトリ単位の一括変換を検証用に実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括変換を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildConversionEntries(config.OutputRoot, targetCases)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "変換対象ケースがありません")
		return 2
	}

	results := executeBatchConversion(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "変換結果の出力ルートディレクトリ")
	dryRun := flag.Bool("dry-run", false, "実変換せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	plot := flag.Bool("plot", false, "角度曲線の診断画像を出力する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		DryRun:     *dryRun,
		FailFast:   *failFast,
		Plot:       *plot,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "output"), nil
}

// buildConversionEntries は検証ケースから変換対象エントリを生成する。
func buildConversionEntries(outputRoot string, cases []targetCase) []conversionEntry {
	entries := make([]conversionEntry, 0, len(cases))
	for i, target := range cases {
		caseName := sanitizePathComponent(resolveName(target.MotionDir) + "_" + resolveName(target.SkeletonPath))
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, caseName))
		skeletonName := sanitizePathComponent(resolveName(target.SkeletonPath))
		entries = append(entries, conversionEntry{
			Index:        i + 1,
			CaseName:     caseName,
			MotionDir:    normalizeInputPath(target.MotionDir),
			SkeletonPath: normalizeInputPath(target.SkeletonPath),
			ProfilePath:  normalizeInputPath(target.ProfilePath),
			Mode:         target.Mode,
			CaseDir:      caseDir,
			OutputPath:   filepath.Join(caseDir, skeletonName+".json"),
			ReportPath:   filepath.Join(caseDir, skeletonName+".report.json"),
		})
	}
	return entries
}

// executeBatchConversion は全ケースの変換処理を順次実行する。
func executeBatchConversion(config batchConfig, entries []conversionEntry) []conversionResult {
	results := make([]conversionResult, 0, len(entries))
	usecase := minteractor.NewMocap2SpineUsecase(minteractor.Mocap2SpineUsecaseDeps{
		MotionReader:   io_motion.NewMotionRepository(),
		SkeletonReader: io_skeleton.NewSkeletonRepository(),
		SkeletonWriter: io_skeleton.NewSkeletonRepository(),
		ProfileReader:  io_profile.NewProfileRepository(),
		ReportWriter:   io_report.NewReportRepository(),
		CurveWriter:    io_plot.NewCurveRepository(),
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 変換開始: case=%s\n", entry.Index, total, entry.CaseName)
		result := convertEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf(
				"[%d/%d] 変換成功: case=%s ok=%d failed=%d output=%s elapsed=%s\n",
				entry.Index, total, entry.CaseName, result.Succeeded, result.Failed,
				entry.OutputPath, result.Duration.Round(time.Millisecond),
			)
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] 変換進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: case=%s motions=%s output=%s\n", entry.Index, total, entry.CaseName, entry.MotionDir, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: case=%s reason=%v\n", entry.Index, total, entry.CaseName, result.Err)
		default:
			fmt.Printf("[%d/%d] 変換失敗: case=%s reason=%v\n", entry.Index, total, entry.CaseName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// convertEntry は1ケース分の変換を実行する。
func convertEntry(usecase *minteractor.Mocap2SpineUsecase, config batchConfig, entry conversionEntry) conversionResult {
	result := conversionResult{
		Entry:  entry,
		Status: "failed",
	}
	for _, path := range []string{entry.MotionDir, entry.SkeletonPath} {
		if _, err := os.Stat(path); err != nil {
			result.Status = "skipped_missing"
			result.Err = err
			return result
		}
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	plotDir := ""
	if config.Plot {
		plotDir = filepath.Join(entry.CaseDir, "curves")
	}
	startedAt := time.Now()
	collector := newConvertProgressCollector()
	batch, err := usecase.RunBatch(context.Background(), minteractor.BatchRequest{
		MotionDir:    entry.MotionDir,
		SkeletonPath: entry.SkeletonPath,
		ProfilePath:  entry.ProfilePath,
		SkeletonConversion: minteractor.SkeletonConversionOptions{
			Enabled: entry.Mode != "",
			Mode:    entry.Mode,
		},
		OutputPath:       entry.OutputPath,
		ReportPath:       entry.ReportPath,
		PlotDir:          plotDir,
		ProgressReporter: collector,
	})
	if err != nil {
		result.Err = fmt.Errorf("RunBatchに失敗しました: %w", err)
		return result
	}
	result.Succeeded = batch.Report.FilesSucceeded
	result.Failed = batch.Report.FilesFailed
	if !batch.OutputWritten {
		result.Err = errors.New("変換に成功したモーションがありません")
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.StageInfo = collector.Summary()
	return result
}

// printBatchSummary は変換結果の集計を標準出力へ表示する。
func printBatchSummary(results []conversionResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ変換サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveName は入力パスから拡張子を除いた名前を返す。
func resolveName(path string) string {
	base := strings.TrimSpace(filepath.Base(filepath.ToSlash(path)))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == "." {
		return "case"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(trimmed))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "case"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "case"
	}
	return replaced
}

// newConvertProgressCollector は変換進捗収集器を生成する。
func newConvertProgressCollector() *convertProgressCollector {
	return &convertProgressCollector{
		eventCounts: map[minteractor.ConvertProgressEventType]int{},
	}
}

// ReportConvertProgress は変換の進捗イベントを収集する。
func (collector *convertProgressCollector) ReportConvertProgress(event minteractor.ConvertProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.ConvertProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.FrameCount > collector.frameMax {
		collector.frameMax = event.FrameCount
	}
	if event.BoneCount > collector.boneMax {
		collector.boneMax = event.BoneCount
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *convertProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType, count := range collector.eventCounts {
		types = append(types, fmt.Sprintf("%s:%d", stageType, count))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"stages=%d frameMax=%d boneMax=%d events=%s",
		len(collector.eventCounts),
		collector.frameMax,
		collector.boneMax,
		strings.Join(types, ","),
	)
}
