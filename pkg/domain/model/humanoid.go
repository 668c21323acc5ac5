// 指示: miu200521358
package model

import (
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
)

// CanonicalTrack は正規化関節へ割り当てたソーストラック。
type CanonicalTrack struct {
	Joint      CanonicalJoint
	SourceName string
	ParentName string
	Positions  []mmath.Vec3
	Rotations  []mmath.Quat4
	// DerivedFrom は代替関節のトラックを流用した場合の代替元。
	DerivedFrom CanonicalJoint
}

// PositionAt は指定フレームの位置を返す。
func (t *CanonicalTrack) PositionAt(frame int) (mmath.Vec3, bool) {
	if t == nil || frame < 0 || frame >= len(t.Positions) {
		return mmath.Vec3{}, false
	}
	position := t.Positions[frame]
	if !position.IsFinite() {
		return mmath.Vec3{}, false
	}
	return position, true
}

// IsDerived は代替トラックか判定する。
func (t *CanonicalTrack) IsDerived() bool {
	return t != nil && t.DerivedFrom != ""
}

// CanonicalHumanoid は正規化結果。生成後は変更しない。
type CanonicalHumanoid struct {
	Fps                    float64
	Duration               float64
	FrameTimes             []float64
	Tracks                 map[CanonicalJoint]*CanonicalTrack
	Mapping                map[CanonicalJoint]string
	MissingCanonicalJoints []CanonicalJoint
	Warnings               []string
}

// FrameCount はフレーム数を返す。
func (h *CanonicalHumanoid) FrameCount() int {
	if h == nil {
		return 0
	}
	return len(h.FrameTimes)
}

// DirectMapping は代替でなく直接対応したソース名を返す。
func (h *CanonicalHumanoid) DirectMapping(joint CanonicalJoint) (string, bool) {
	if h == nil {
		return "", false
	}
	track, ok := h.Tracks[joint]
	if !ok || track.IsDerived() {
		return "", false
	}
	return track.SourceName, true
}

// MissingJointNames は欠損関節名を文字列で返す。
func (h *CanonicalHumanoid) MissingJointNames() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.MissingCanonicalJoints))
	for _, joint := range h.MissingCanonicalJoints {
		names = append(names, joint.String())
	}
	return names
}

// Translation2D は2D移動量。
type Translation2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SourceSide はソースの左右判定用の水平位置。算出できない場合は nil。
type SourceSide struct {
	LeftArmX  *float64
	RightArmX *float64
}

// IsAvailable は左右とも算出済みか判定する。
func (s SourceSide) IsAvailable() bool {
	return s.LeftArmX != nil && s.RightArmX != nil && mmath.IsFinite(*s.LeftArmX) && mmath.IsFinite(*s.RightArmX)
}

// ProjectedMotion は2D投影済みのモーション。
type ProjectedMotion struct {
	Fps        float64
	Duration   float64
	FrameTimes []float64
	// JointAngles は親基準のローカル角度列。
	JointAngles map[CanonicalJoint][]float64
	// WorldJointAngles はワールド角度列。
	WorldJointAngles       map[CanonicalJoint][]float64
	HipsTranslation        []Translation2D
	AxisMapping            mmath.AxisMapping
	SourceSide             SourceSide
	MissingCanonicalJoints []CanonicalJoint
	Warnings               []string
}
