// 指示: miu200521358
package io_report

import (
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

// ReportRepository はバッチレポートの書き込みを表す。
type ReportRepository struct{}

// NewReportRepository はReportRepositoryを生成する。
func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// Save はバッチレポートをJSONで保存する。
func (r *ReportRepository) Save(path string, report *model.BatchReport) error {
	if report.Items == nil {
		report.Items = []model.BatchItem{}
	}
	if err := io_common.WriteJSONFile(path, report); err != nil {
		return err
	}
	logging.DefaultLogger().Info("レポート保存完了: file=%s items=%d", path, len(report.Items))
	return nil
}
