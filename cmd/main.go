// 指示: miu200521358
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_motion"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_plot"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_profile"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_report"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_skeleton"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
	"github.com/miu200521358/mu_mocap2spine/pkg/usecase/minteractor"
)

const appName = "mu_mocap2spine"

// options はCLI引数を保持する。
type options struct {
	motionPath       string
	motionDir        string
	skeletonPath     string
	profilePath      string
	animationName    string
	fps              float64
	rootMotion       string
	convertSkeleton  bool
	skeletonMode     string
	skeletonScope    string
	skeletonMismatch string
	outputPath       string
	reportPath       string
	plotDir          string
	logLevel         logging.LogLevel
}

// main はモーションからSpineアニメーションへの一括変換を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(errOut)
	logger.SetLevel(opts.logLevel)
	logging.SetDefaultLogger(logger)

	deps := minteractor.Mocap2SpineUsecaseDeps{
		MotionReader:   io_motion.NewMotionRepository(),
		SkeletonReader: io_skeleton.NewSkeletonRepository(),
		SkeletonWriter: io_skeleton.NewSkeletonRepository(),
		ProfileReader:  io_profile.NewProfileRepository(),
		ReportWriter:   io_report.NewReportRepository(),
	}
	if opts.plotDir != "" {
		deps.CurveWriter = io_plot.NewCurveRepository()
	}
	usecase := minteractor.NewMocap2SpineUsecase(deps)

	input := opts.motionPath
	if input == "" {
		input = opts.motionDir
	}
	printLine(out, messages.LogLoadStart, input)

	result, err := usecase.RunBatch(context.Background(), minteractor.BatchRequest{
		MotionPath:    opts.motionPath,
		MotionDir:     opts.motionDir,
		SkeletonPath:  opts.skeletonPath,
		ProfilePath:   opts.profilePath,
		AnimationName: opts.animationName,
		Fps:           opts.fps,
		RootMotion:    opts.rootMotion,
		SkeletonConversion: minteractor.SkeletonConversionOptions{
			Enabled:        opts.convertSkeleton,
			Mode:           opts.skeletonMode,
			Scope:          opts.skeletonScope,
			MismatchPolicy: opts.skeletonMismatch,
		},
		OutputPath:   opts.outputPath,
		ReportPath:   opts.reportPath,
		PlotDir:      opts.plotDir,
		ItemReporter: &itemPrinter{out: out},
	})
	if err != nil {
		return err
	}

	if result.OutputWritten {
		printLine(out, messages.LogOutputWritten, result.OutputPath)
	}
	printLine(out, messages.LogReportWritten, result.ReportPath)
	printLine(out, messages.LogBatchSummary,
		result.Report.FilesProcessed, result.Report.FilesSucceeded, result.Report.FilesFailed)
	if result.Report.FilesSucceeded == 0 {
		return fmt.Errorf("[%s] %s", appName, messages.MessageNoSuccess)
	}
	return nil
}

// itemPrinter はバッチ1件ごとの結果を出力する。
type itemPrinter struct {
	out io.Writer
}

// ReportBatchItem は1ファイル分の処理結果を出力する。
func (p *itemPrinter) ReportBatchItem(item model.BatchItem) {
	name := filepath.Base(item.File)
	if item.Status == model.BatchStatusOK {
		printLine(p.out, messages.LogItemSuccess, name, item.AnimationName, item.Duration)
		return
	}
	printLine(p.out, messages.LogItemFailed, name, item.Error)
}

func printLine(out io.Writer, format string, params ...any) {
	fmt.Fprintf(out, "[%s] %s\n", appName, fmt.Sprintf(format, params...))
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s: %s\n", messages.HelpUsageTitle, messages.HelpUsage)
		fs.PrintDefaults()
	}

	motion := fs.String("motion", "", messages.FlagMotion)
	motionDir := fs.String("motion-dir", "", messages.FlagMotionDir)
	skeleton := fs.String("skeleton", "", messages.FlagSkeleton)
	profile := fs.String("profile", "", messages.FlagProfile)
	animationName := fs.String("animation-name", "", messages.FlagAnimationName)
	fps := fs.Float64("fps", minteractor.DefaultFps, messages.FlagFps)
	rootMotion := fs.String("root-motion", "", messages.FlagRootMotion)
	convertSkeleton := fs.Bool("convert-skeleton", false, messages.FlagConvertSkeleton)
	skeletonMode := fs.String("skeleton-mode", model.SkeletonModeSpineFirst, messages.FlagSkeletonMode)
	skeletonScope := fs.String("skeleton-scope", model.SkeletonScopeFullHierarchy, messages.FlagSkeletonScope)
	skeletonMismatch := fs.String("skeleton-mismatch", model.MismatchPolicyAutoAddBones, messages.FlagSkeletonMismatch)
	out := fs.String("out", "", messages.FlagOut)
	report := fs.String("report", "", messages.FlagReport)
	plotDir := fs.String("plot-dir", "", messages.FlagPlotDir)
	logLevel := fs.String("log-level", "info", messages.FlagLogLevel)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *motion == "" && *motionDir == "" && fs.NArg() > 0 {
		if info, err := os.Stat(fs.Arg(0)); err == nil && info.IsDir() {
			*motionDir = fs.Arg(0)
		} else {
			*motion = fs.Arg(0)
		}
	}
	if *skeleton == "" && fs.NArg() > 1 {
		*skeleton = fs.Arg(1)
	}

	if *skeleton == "" {
		return options{}, fmt.Errorf(messages.MessageSkeletonRequired)
	}
	if *motion == "" && *motionDir == "" {
		return options{}, fmt.Errorf(messages.MessageMotionRequired)
	}
	if *motion != "" && *motionDir != "" {
		return options{}, fmt.Errorf(messages.MessageMotionConflict)
	}
	if *fps <= 0 {
		return options{}, fmt.Errorf(messages.MessageInvalidFps, *fps)
	}

	mode, err := validateChoice("-skeleton-mode", *skeletonMode, model.SkeletonModes)
	if err != nil {
		return options{}, err
	}
	scope, err := validateChoice("-skeleton-scope", *skeletonScope, model.SkeletonScopes)
	if err != nil {
		return options{}, err
	}
	mismatch, err := validateChoice("-skeleton-mismatch", *skeletonMismatch, model.MismatchPolicies)
	if err != nil {
		return options{}, err
	}
	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return options{}, err
	}

	return options{
		motionPath:       *motion,
		motionDir:        *motionDir,
		skeletonPath:     *skeleton,
		profilePath:      *profile,
		animationName:    *animationName,
		fps:              *fps,
		rootMotion:       *rootMotion,
		convertSkeleton:  *convertSkeleton,
		skeletonMode:     mode,
		skeletonScope:    scope,
		skeletonMismatch: mismatch,
		outputPath:       *out,
		reportPath:       *report,
		plotDir:          *plotDir,
		logLevel:         level,
	}, nil
}

// validateChoice は列挙値を正規化し、有効値に含まれない場合はエラーを返す。
func validateChoice(flagName string, value string, valid []string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range valid {
		if candidate == normalized {
			return normalized, nil
		}
	}
	return "", fmt.Errorf(messages.MessageInvalidChoice, flagName, value, strings.Join(valid, ", "))
}
