// 指示: miu200521358
package minteractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

// IBatchItemReporter はバッチ1件ごとの結果通知契約を表す。
type IBatchItemReporter interface {
	// ReportBatchItem は1ファイル分の処理結果を通知する。
	ReportBatchItem(item model.BatchItem)
}

// BatchRequest は複数モーションの一括変換要求を表す。
// MotionPath と MotionDir はどちらか一方のみ指定する。
type BatchRequest struct {
	MotionPath         string
	MotionDir          string
	SkeletonPath       string
	ProfilePath        string
	AnimationName      string
	Fps                float64
	RootMotion         string
	Timeline           model.TimelineConfig
	Projection         *model.ProjectionConfig
	SkeletonConversion SkeletonConversionOptions
	OutputPath         string
	ReportPath         string
	PlotDir            string
	ItemReporter       IBatchItemReporter
	ProgressReporter   IConvertProgressReporter
}

// BatchResult は一括変換結果を表す。
type BatchResult struct {
	Report        *model.BatchReport
	Skeleton      *model.Skeleton
	OutputPath    string
	ReportPath    string
	OutputWritten bool
}

// RunBatch はモーションを順に変換し、各ファイルの結果を次のファイルの入力スケルトンへ引き継ぐ。
// 失敗したファイルは記録して飛ばし、直前の成功結果を保持する。
func (uc *Mocap2SpineUsecase) RunBatch(ctx context.Context, request BatchRequest) (*BatchResult, error) {
	if strings.TrimSpace(request.SkeletonPath) == "" {
		return nil, merrors.NewInputError("入力スケルトンパスが未指定です")
	}
	hasFile := strings.TrimSpace(request.MotionPath) != ""
	hasDir := strings.TrimSpace(request.MotionDir) != ""
	if hasFile && hasDir {
		return nil, merrors.NewInputError("モーションファイルとモーションディレクトリは同時に指定できません")
	}
	if !hasFile && !hasDir {
		return nil, merrors.NewInputError("モーションファイルまたはモーションディレクトリを指定してください")
	}

	fps := request.Fps
	if fps <= 0 {
		fps = DefaultFps
	}

	skeleton, err := uc.LoadSkeleton(nil, request.SkeletonPath)
	if err != nil {
		return nil, err
	}
	profile, err := uc.LoadProfile(nil, request.ProfilePath)
	if err != nil {
		return nil, err
	}

	files := []string{request.MotionPath}
	if hasDir {
		var canLoad func(path string) bool
		if uc.motionReader != nil {
			canLoad = uc.motionReader.CanLoad
		}
		files, err = ListMotionFiles(request.MotionDir, canLoad)
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, merrors.NewInputError("処理対象のモーションファイルがありません")
	}

	outputPath := strings.TrimSpace(request.OutputPath)
	if outputPath == "" {
		outputPath = BuildDefaultOutputPath(request.SkeletonPath)
	}
	reportPath := strings.TrimSpace(request.ReportPath)
	if reportPath == "" {
		reportPath = BuildDefaultReportPath(request.SkeletonPath)
	}

	profileID := strings.TrimSpace(profile.ID)
	if profileID == "" {
		profileID = model.DefaultProfileID
	}
	report := &model.BatchReport{
		TargetSkeleton:     request.SkeletonPath,
		ProfileID:          profileID,
		GeneratedAt:        formatGeneratedAt(nowFunc()),
		Fps:                fps,
		RootMotion:         resolveRootMotion(request.RootMotion, profile),
		SkeletonConversion: request.SkeletonConversion.Settings(),
		FilesProcessed:     len(files),
		OutputPath:         outputPath,
		Items:              make([]model.BatchItem, 0, len(files)),
	}

	logger := logging.DefaultLogger()
	working := skeleton
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		animationName := request.AnimationName
		if hasDir {
			animationName = fileStem(path)
		}

		started := nowFunc()
		item := model.BatchItem{File: path, Status: model.BatchStatusFailed, Warnings: []string{}}
		result, err := uc.ConvertMotion(ConvertRequest{
			MotionPath:         path,
			Skeleton:           working,
			Profile:            profile,
			AnimationName:      animationName,
			Fps:                fps,
			RootMotion:         request.RootMotion,
			Timeline:           request.Timeline,
			Projection:         request.Projection,
			SkeletonConversion: request.SkeletonConversion,
			ProgressReporter:   request.ProgressReporter,
		})
		if err != nil {
			report.FilesFailed++
			item.Error = err.Error()
			item.ErrorKind = string(merrors.Classify(err))
			logger.Error("変換失敗: %s: %v", filepath.Base(path), err)
		} else {
			working = result.Skeleton
			report.FilesSucceeded++
			item.Status = model.BatchStatusOK
			item.AnimationName = result.AnimationName
			item.Duration = result.Duration
			item.MappedBones = result.MappedBones
			item.MissingCanonicalJoints = result.MissingCanonicalJoints
			item.Warnings = result.Warnings
			item.SkeletonReport = result.SkeletonReport
			for _, warning := range result.Warnings {
				logger.Warn("%s: %s", filepath.Base(path), warning)
			}
			if request.PlotDir != "" {
				plotPath := BuildCurvePlotPath(request.PlotDir, path)
				if err := uc.SaveCurves(nil, plotPath, result.Projected); err != nil {
					item.Warnings = append(item.Warnings, "Curve plot could not be written: "+err.Error())
					logger.Warn("診断画像の出力に失敗しました: %s: %v", plotPath, err)
				}
			}
		}
		item.ElapsedMs = nowFunc().Sub(started).Milliseconds()
		report.Items = append(report.Items, item)
		if request.ItemReporter != nil {
			request.ItemReporter.ReportBatchItem(item)
		}
	}

	outputWritten := false
	if report.FilesSucceeded > 0 {
		if err := uc.SaveSkeleton(nil, outputPath, working); err != nil {
			return nil, err
		}
		outputWritten = true
	}
	if err := uc.SaveReport(nil, reportPath, report); err != nil {
		return nil, err
	}

	logger.Info(
		"バッチ完了: 成功=%d 失敗=%d 出力=%s", report.FilesSucceeded, report.FilesFailed, outputPath,
	)
	return &BatchResult{
		Report:        report,
		Skeleton:      working,
		OutputPath:    outputPath,
		ReportPath:    reportPath,
		OutputWritten: outputWritten,
	}, nil
}
