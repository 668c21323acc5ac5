// 指示: miu200521358
package mmath

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// UnwrapAngles は隣接フレーム間の±360度の跳びを除去する。
func UnwrapAngles(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		prev := out[i-1]
		next := values[i]
		for next-prev > 180 {
			next -= 360
		}
		for next-prev < -180 {
			next += 360
		}
		out[i] = next
	}
	return out
}

// ClampAngleDeltas はフレーム間差分を ±maxDelta に制限する。差分は出力側の直前値と比較する。
func ClampAngleDeltas(values []float64, maxDelta float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	limit := math.Max(0, maxDelta)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		prev := out[i-1]
		out[i] = prev + Clamp(values[i]-prev, -limit, limit)
	}
	return out
}

// ApplyDeadband は閾値未満の変化を直前値で保持する。
func ApplyDeadband(values []float64, deadband float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 || deadband <= 0 {
		return out
	}
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]-out[i-1]) < deadband {
			out[i] = out[i-1]
		}
	}
	return out
}

// Smooth は一方向の指数平滑を行う。alpha >= 1 は恒等。
func Smooth(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 || alpha >= 1 {
		return out
	}
	factor := Clamp(alpha, 0, 1)
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + (values[i]-out[i-1])*factor
	}
	return out
}

// SmoothBidirectional は順方向と逆方向の平滑を passes 回繰り返し、位相遅れを打ち消す。
func SmoothBidirectional(values []float64, alpha float64, passes int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) < 2 {
		return out
	}
	if passes < 1 {
		passes = 1
	}
	for pass := 0; pass < passes; pass++ {
		forward := Smooth(out, alpha)
		reverseInPlace(forward)
		backward := Smooth(forward, alpha)
		reverseInPlace(backward)
		out = backward
	}
	return out
}

// reverseInPlace はスライスを反転する。
func reverseInPlace(values []float64) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

// ToWindowSize は窓幅を奇数へ補正する。3未満は1。
func ToWindowSize(size int) int {
	if size < 3 {
		return 1
	}
	if size%2 == 0 {
		return size + 1
	}
	return size
}

// MedianFilter は端で範囲内へクランプした窓で中央値フィルタをかける。
func MedianFilter(values []float64, windowSize int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) < 3 {
		return out
	}
	size := ToWindowSize(windowSize)
	if size <= 1 {
		return out
	}
	radius := size / 2
	last := len(values) - 1
	sample := make([]float64, size)
	for i := range values {
		for offset := -radius; offset <= radius; offset++ {
			index := i + offset
			if index < 0 {
				index = 0
			} else if index > last {
				index = last
			}
			sample[offset+radius] = values[index]
		}
		sort.Float64s(sample)
		out[i] = stat.Quantile(0.5, stat.Empirical, sample, nil)
	}
	return out
}

// Median は有限値の中央値を返す。偶数個は中央2値の平均。
func Median(values []float64) (float64, bool) {
	finite := make([]float64, 0, len(values))
	for _, value := range values {
		if IsFinite(value) {
			finite = append(finite, value)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	sort.Float64s(finite)
	middle := len(finite) / 2
	if len(finite)%2 == 1 {
		return finite[middle], true
	}
	return (finite[middle-1] + finite[middle]) / 2, true
}

// MeanOfLeading は先頭 count 件の有限値平均を返す。
func MeanOfLeading(values []float64, count int) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if count < 1 {
		count = 1
	}
	if count > len(values) {
		count = len(values)
	}
	finite := make([]float64, 0, count)
	for _, value := range values[:count] {
		if IsFinite(value) {
			finite = append(finite, value)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	return stat.Mean(finite, nil), true
}
