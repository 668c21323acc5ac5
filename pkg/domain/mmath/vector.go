// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis は3D座標軸名を表す。
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// allAxes は軸の走査順。
var allAxes = [3]Axis{AxisX, AxisY, AxisZ}

// IsValid は軸名が x/y/z のいずれかか判定する。
func (a Axis) IsValid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// AxisMapping は投影に使う水平・垂直・奥行き軸の対応を表す。
type AxisMapping struct {
	Horizontal Axis `json:"horizontal"`
	Vertical   Axis `json:"vertical"`
	Depth      Axis `json:"depth"`
}

// DefaultAxisMapping は x/y/z をそのまま水平/垂直/奥行きとする対応を返す。
func DefaultAxisMapping() AxisMapping {
	return AxisMapping{Horizontal: AxisX, Vertical: AxisY, Depth: AxisZ}
}

// IsValid は3軸が排他的に指定されているか判定する。
func (m AxisMapping) IsValid() bool {
	if !m.Horizontal.IsValid() || !m.Vertical.IsValid() || !m.Depth.IsValid() {
		return false
	}
	return m.Horizontal != m.Vertical && m.Horizontal != m.Depth && m.Vertical != m.Depth
}

// Vec3 はJSON入出力可能な3Dベクトルを表す。
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVec3FromR3 はgonumのベクトルから生成する。
func NewVec3FromR3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// R3 はgonumのベクトルへ変換する。
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Sub は差分ベクトルを返す。
func (v Vec3) Sub(other Vec3) Vec3 {
	return NewVec3FromR3(r3.Sub(v.R3(), other.R3()))
}

// Add は和ベクトルを返す。
func (v Vec3) Add(other Vec3) Vec3 {
	return NewVec3FromR3(r3.Add(v.R3(), other.R3()))
}

// Scale はスカラー倍を返す。
func (v Vec3) Scale(f float64) Vec3 {
	return NewVec3FromR3(r3.Scale(f, v.R3()))
}

// Component は指定軸の成分を返す。
func (v Vec3) Component(axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// Project は軸対応に従い (水平, 垂直, 奥行き) 成分を返す。
func (v Vec3) Project(mapping AxisMapping) (float64, float64, float64) {
	return v.Component(mapping.Horizontal), v.Component(mapping.Vertical), v.Component(mapping.Depth)
}

// IsFinite は全成分が有限か判定する。
func (v Vec3) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// DominantAxis は絶対値最大の成分の軸を返す。同値は x, y, z の順で先勝ち。
func DominantAxis(v Vec3, excluded ...Axis) Axis {
	magnitudes := make([]float64, len(allAxes))
	available := false
	for i, axis := range allAxes {
		magnitudes[i] = math.Abs(v.Component(axis))
		for _, ex := range excluded {
			if ex == axis {
				magnitudes[i] = -1
			}
		}
		if magnitudes[i] >= 0 {
			available = true
		}
	}
	if !available {
		return AxisX
	}
	return allAxes[floats.MaxIdx(magnitudes)]
}

// RemainingAxis は2軸を除いた残りの軸を返す。
func RemainingAxis(a, b Axis) Axis {
	for _, axis := range allAxes {
		if axis != a && axis != b {
			return axis
		}
	}
	return AxisZ
}

// BoundingSpread は点群の軸ごとの広がりを返す。
func BoundingSpread(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	minV := points[0]
	maxV := points[0]
	for _, p := range points[1:] {
		minV = Vec3{X: math.Min(minV.X, p.X), Y: math.Min(minV.Y, p.Y), Z: math.Min(minV.Z, p.Z)}
		maxV = Vec3{X: math.Max(maxV.X, p.X), Y: math.Max(maxV.Y, p.Y), Z: math.Max(maxV.Z, p.Z)}
	}
	return maxV.Sub(minV)
}

// MeanVec3 は点群の平均を返す。
func MeanVec3(points []Vec3) (Vec3, bool) {
	if len(points) == 0 {
		return Vec3{}, false
	}
	var sum r3.Vec
	for _, p := range points {
		sum = r3.Add(sum, p.R3())
	}
	return NewVec3FromR3(r3.Scale(1/float64(len(points)), sum)), true
}

// Quat4 はトラックの回転サンプル (x, y, z, w) を表す。
type Quat4 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}
