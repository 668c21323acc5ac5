// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoneTransform は2Dボーンの位置・回転(度)・スケールを表す。
type BoneTransform struct {
	X        float64
	Y        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// IdentityTransform は単位変換を返す。
func IdentityTransform() BoneTransform {
	return BoneTransform{ScaleX: 1, ScaleY: 1}
}

// Compose は親のワールド変換にローカル変換を合成する。parent が nil の場合はローカルをそのまま返す。
func Compose(local BoneTransform, parent *BoneTransform) BoneTransform {
	if parent == nil {
		return local
	}
	offset := mgl64.Rotate2D(mgl64.DegToRad(parent.Rotation)).Mul2x1(mgl64.Vec2{
		local.X * parent.ScaleX,
		local.Y * parent.ScaleY,
	})
	return BoneTransform{
		X:        parent.X + offset.X(),
		Y:        parent.Y + offset.Y(),
		Rotation: parent.Rotation + local.Rotation,
		ScaleX:   parent.ScaleX * local.ScaleX,
		ScaleY:   parent.ScaleY * local.ScaleY,
	}
}

// WorldToLocal はワールド座標を親基準のローカル座標へ変換する。スケールがほぼ0の軸は1として扱う。
func (t BoneTransform) WorldToLocal(point mgl64.Vec2) mgl64.Vec2 {
	delta := point.Sub(mgl64.Vec2{t.X, t.Y})
	rotated := mgl64.Rotate2D(-mgl64.DegToRad(t.Rotation)).Mul2x1(delta)
	scaleX := t.ScaleX
	if math.Abs(scaleX) <= Epsilon {
		scaleX = 1
	}
	scaleY := t.ScaleY
	if math.Abs(scaleY) <= Epsilon {
		scaleY = 1
	}
	return mgl64.Vec2{rotated.X() / scaleX, rotated.Y() / scaleY}
}

// Position はワールド位置を返す。
func (t BoneTransform) Position() mgl64.Vec2 {
	return mgl64.Vec2{t.X, t.Y}
}

// Similarity2D は平行移動・回転・一様スケールからなる2D相似変換を表す。
type Similarity2D struct {
	SourceOrigin mgl64.Vec2
	TargetOrigin mgl64.Vec2
	RotationRad  float64
	Scale        float64
}

// IdentitySimilarity は恒等変換を返す。
func IdentitySimilarity(scale float64) Similarity2D {
	return Similarity2D{Scale: scale}
}

// Apply は点へ相似変換を適用する。
func (s Similarity2D) Apply(point mgl64.Vec2) mgl64.Vec2 {
	rotated := mgl64.Rotate2D(s.RotationRad).Mul2x1(point.Sub(s.SourceOrigin))
	return rotated.Mul(s.Scale).Add(s.TargetOrigin)
}

// Distance2D は2点間距離を返す。
func Distance2D(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Len()
}
