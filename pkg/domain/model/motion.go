// 指示: miu200521358
package model

import (
	"sort"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
)

// JointTrack は1関節分のサンプル列を表す。
type JointTrack struct {
	Name       string        `json:"name"`
	ParentName string        `json:"parentName,omitempty"`
	Positions  []mmath.Vec3  `json:"positions"`
	Rotations  []mmath.Quat4 `json:"rotations,omitempty"`
}

// FrameCount はサンプル数を返す。
func (t *JointTrack) FrameCount() int {
	if t == nil {
		return 0
	}
	return len(t.Positions)
}

// PositionAt は指定フレームの位置を返す。範囲外や非有限値は false。
func (t *JointTrack) PositionAt(frame int) (mmath.Vec3, bool) {
	if t == nil || frame < 0 || frame >= len(t.Positions) {
		return mmath.Vec3{}, false
	}
	position := t.Positions[frame]
	if !position.IsFinite() {
		return mmath.Vec3{}, false
	}
	return position, true
}

// SourceSkeletonNode はソース階層の1ノードを表す。
type SourceSkeletonNode struct {
	Name                string      `json:"name"`
	ParentName          string      `json:"parentName,omitempty"`
	Depth               int         `json:"depth"`
	IsBone              bool        `json:"isBone"`
	RestWorldPosition   *mmath.Vec3 `json:"restWorldPosition,omitempty"`
	RestLocalPosition   *mmath.Vec3 `json:"restLocalPosition,omitempty"`
	Frame0WorldPosition *mmath.Vec3 `json:"frame0WorldPosition,omitempty"`
}

// SourceSkeleton はデコーダが提供するソース階層メタデータ。
type SourceSkeleton struct {
	Nodes []SourceSkeletonNode `json:"nodes"`
}

// DecodedMotion はデコード済みモーションを表す。
type DecodedMotion struct {
	SourceFile  string                 `json:"sourceFile"`
	ClipName    string                 `json:"clipName"`
	Fps         float64                `json:"fps"`
	Duration    float64                `json:"duration"`
	FrameTimes  []float64              `json:"frameTimes"`
	JointTracks map[string]*JointTrack `json:"jointTracks"`
	// TrackOrder は JointTracks の入力順。正規化の優先順位に使う。
	TrackOrder []string        `json:"-"`
	Skeleton   *SourceSkeleton `json:"skeleton,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// FrameCount はフレーム数を返す。
func (m *DecodedMotion) FrameCount() int {
	if m == nil {
		return 0
	}
	return len(m.FrameTimes)
}

// OrderedTracks は入力順の関節トラックを返す。
func (m *DecodedMotion) OrderedTracks() []*JointTrack {
	if m == nil {
		return nil
	}
	tracks := make([]*JointTrack, 0, len(m.JointTracks))
	seen := make(map[string]struct{}, len(m.JointTracks))
	for _, name := range m.TrackOrder {
		track, ok := m.JointTracks[name]
		if !ok || track == nil {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		tracks = append(tracks, track)
	}
	if len(tracks) == len(m.JointTracks) {
		return tracks
	}
	// 順序情報に無いトラックは名前順で後ろに付ける。
	rest := make([]string, 0)
	for name, track := range m.JointTracks {
		if track == nil {
			continue
		}
		if _, exists := seen[name]; !exists {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		tracks = append(tracks, m.JointTracks[name])
	}
	return tracks
}
