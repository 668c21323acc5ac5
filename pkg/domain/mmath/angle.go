// 指示: miu200521358
// Package mmath は角度列フィルタと2D/3D変換の数値処理を提供する。
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Epsilon はゼロ長判定に使う閾値。
	Epsilon = 1e-5
)

// Clamp は値を範囲内へ収める。
func Clamp(value, minValue, maxValue float64) float64 {
	return math.Max(minValue, math.Min(maxValue, value))
}

// RoundTo は指定桁で四捨五入する。0.5 は正方向へ丸める。
func RoundTo(value float64, digits int) float64 {
	factor := math.Pow(10, float64(digits))
	rounded := math.Floor(value*factor+0.5) / factor
	if rounded == 0 {
		return 0
	}
	return rounded
}

// Round4 は小数4桁へ丸める。
func Round4(value float64) float64 {
	return RoundTo(value, 4)
}

// NormalizeAngle は角度を [-180, 180] へ正規化する。
func NormalizeAngle(angle float64) float64 {
	value := angle
	for value > 180 {
		value -= 360
	}
	for value < -180 {
		value += 360
	}
	return value
}

// AngleDegrees はベクトルの向きを度で返す。
func AngleDegrees(x, y float64) float64 {
	return mgl64.RadToDeg(math.Atan2(y, x))
}

// IsFinite は値が有限か判定する。
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
