// 指示: miu200521358
package io_plot

import (
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	curvePlotWidth  = 10 * vg.Inch
	curvePlotHeight = 6 * vg.Inch
)

// CurveRepository は関節角度の診断画像を書き出す。
type CurveRepository struct{}

// NewCurveRepository はCurveRepositoryを生成する。
func NewCurveRepository() *CurveRepository {
	return &CurveRepository{}
}

// Save は指定関節のローカル角度曲線を時刻軸で描画し、拡張子に応じた形式で保存する。
func (r *CurveRepository) Save(path string, projected *model.ProjectedMotion, joints []model.CanonicalJoint) error {
	if projected == nil {
		return io_common.NewIoSaveFailed("描画対象の投影結果がありません: %s", nil, path)
	}

	p := plot.New()
	p.Title.Text = "Conditioned local joint angles"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (deg)"
	p.Add(plotter.NewGrid())

	drawn := 0
	for index, joint := range joints {
		angles, ok := projected.JointAngles[joint]
		if !ok || len(angles) == 0 {
			continue
		}
		points := make(plotter.XYs, 0, len(angles))
		for frame, angle := range angles {
			if frame >= len(projected.FrameTimes) {
				break
			}
			points = append(points, plotter.XY{X: projected.FrameTimes[frame], Y: angle})
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return io_common.NewIoSaveFailed("角度曲線の生成に失敗しました: %s", err, joint)
		}
		line.Color = plotutil.Color(index)
		line.Dashes = plotutil.Dashes(index / len(plotutil.SoftColors))
		p.Add(line)
		p.Legend.Add(joint.String(), line)
		drawn++
	}
	if drawn == 0 {
		return io_common.NewIoSaveFailed("描画できる関節がありません: %s", nil, path)
	}

	if err := p.Save(curvePlotWidth, curvePlotHeight, path); err != nil {
		return io_common.NewIoSaveFailed("診断画像の保存に失敗しました: %s", err, path)
	}
	logging.DefaultLogger().Info("診断画像保存完了: file=%s joints=%d", path, drawn)
	return nil
}
