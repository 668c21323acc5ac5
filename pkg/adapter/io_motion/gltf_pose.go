// 指示: miu200521358
package io_motion

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// nodePose はノードのローカル姿勢を表す。matrix 指定のノードは fixed を使う。
type nodePose struct {
	translation mgl64.Vec3
	rotation    mgl64.Quat
	scale       mgl64.Vec3
	fixed       *mgl64.Mat4
}

// worldPose はノードのワールド姿勢を表す。
type worldPose struct {
	matrix      mgl64.Mat4
	translation mgl64.Vec3
	rotation    mgl64.Quat
}

// matrix はローカル行列 T*R*S を返す。
func (p nodePose) matrix() mgl64.Mat4 {
	if p.fixed != nil {
		return *p.fixed
	}
	return mgl64.Translate3D(p.translation.X(), p.translation.Y(), p.translation.Z()).
		Mul4(p.rotation.Mat4()).
		Mul4(mgl64.Scale3D(p.scale.X(), p.scale.Y(), p.scale.Z()))
}

// restPose はノード定義からレスト姿勢を作る。
func restPose(node *gltf.Node) nodePose {
	matrix := node.MatrixOrDefault()
	fixed := mgl64.Mat4{}
	identity := true
	for i := range matrix {
		fixed[i] = float64(matrix[i])
		if fixed[i] != mgl64.Ident4()[i] {
			identity = false
		}
	}
	if !identity {
		return nodePose{
			translation: fixed.Col(3).Vec3(),
			rotation:    mgl64.Mat4ToQuat(fixed).Normalize(),
			scale:       mgl64.Vec3{1, 1, 1},
			fixed:       &fixed,
		}
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return nodePose{
		translation: mgl64.Vec3{float64(t[0]), float64(t[1]), float64(t[2])},
		rotation:    mgl64.Quat{W: float64(r[3]), V: mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])}}.Normalize(),
		scale:       mgl64.Vec3{float64(s[0]), float64(s[1]), float64(s[2])},
	}
}

// clipChannel はノード1プロパティ分のキーフレーム列。
type clipChannel struct {
	node          int
	path          gltf.TRSProperty
	interpolation gltf.Interpolation
	times         []float64
	// values はキーごとの成分。CUBICSPLINE は頂点値のみを保持する。
	values [][]float64
}

// gltfClip はサンプリング対象のアニメーション。
type gltfClip struct {
	name     string
	duration float64
	channels []clipChannel
}

// chooseClip は最も尺の長いアニメーションを返す。アニメーションが無い場合は nil。
func chooseClip(doc *gltf.Document) (*gltfClip, error) {
	var best *gltfClip
	for _, animation := range doc.Animations {
		clip, err := readClip(doc, animation)
		if err != nil {
			return nil, err
		}
		if best == nil || clip.duration > best.duration {
			best = clip
		}
	}
	return best, nil
}

// readClip はアニメーションのチャンネルを読み込む。weights と matrix ノードは対象外。
func readClip(doc *gltf.Document, animation *gltf.Animation) (*gltfClip, error) {
	clip := &gltfClip{name: animation.Name}
	for _, channel := range animation.Channels {
		if channel.Target.Node == nil || channel.Target.Path == gltf.TRSWeights {
			continue
		}
		node := *channel.Target.Node
		if node < 0 || node >= len(doc.Nodes) {
			return nil, io_common.NewIoParseFailed("channel.target.node のindexが不正です: %d", nil, node)
		}
		if channel.Sampler < 0 || channel.Sampler >= len(animation.Samplers) {
			return nil, io_common.NewIoParseFailed("channel.sampler のindexが不正です: %d", nil, channel.Sampler)
		}
		sampler := animation.Samplers[channel.Sampler]

		times, err := readScalars(doc, sampler.Input)
		if err != nil {
			return nil, err
		}
		values, err := readComponents(doc, sampler.Output)
		if err != nil {
			return nil, err
		}
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			values = splineVertexValues(values)
		}
		if len(times) == 0 || len(values) < len(times) {
			continue
		}
		if last := times[len(times)-1]; last > clip.duration {
			clip.duration = last
		}
		clip.channels = append(clip.channels, clipChannel{
			node:          node,
			path:          channel.Target.Path,
			interpolation: sampler.Interpolation,
			times:         times,
			values:        values[:len(times)],
		})
	}
	return clip, nil
}

// splineVertexValues は in-tangent, value, out-tangent の並びから頂点値のみを取り出す。
func splineVertexValues(values [][]float64) [][]float64 {
	out := make([][]float64, 0, len(values)/3)
	for index := 1; index < len(values); index += 3 {
		out = append(out, values[index])
	}
	return out
}

// readScalars はスカラーのアクセサを読み込む。
func readScalars(doc *gltf.Document, accessorIndex int) ([]float64, error) {
	components, err := readComponents(doc, accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(components))
	for index, value := range components {
		if len(value) > 0 {
			out[index] = value[0]
		}
	}
	return out, nil
}

// readComponents は float のアクセサを要素ごとの成分列として読み込む。
func readComponents(doc *gltf.Document, accessorIndex int) ([][]float64, error) {
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, io_common.NewIoParseFailed("accessor のindexが不正です: %d", nil, accessorIndex)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessorIndex], nil)
	if err != nil {
		return nil, io_common.NewIoParseFailed("accessor の読み取りに失敗しました: %d", err, accessorIndex)
	}
	switch values := data.(type) {
	case []float32:
		out := make([][]float64, len(values))
		for i, v := range values {
			out[i] = []float64{float64(v)}
		}
		return out, nil
	case [][3]float32:
		out := make([][]float64, len(values))
		for i, v := range values {
			out[i] = []float64{float64(v[0]), float64(v[1]), float64(v[2])}
		}
		return out, nil
	case [][4]float32:
		out := make([][]float64, len(values))
		for i, v := range values {
			out[i] = []float64{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])}
		}
		return out, nil
	default:
		return nil, io_common.NewIoParseFailed("未対応のアクセサ形式です: %d", nil, accessorIndex)
	}
}

// poseAt は指定時刻のローカル姿勢を返す。チャンネルの無いプロパティはレスト値。
func (c *gltfClip) poseAt(rest []nodePose, time float64) []nodePose {
	poses := make([]nodePose, len(rest))
	copy(poses, rest)
	for _, channel := range c.channels {
		pose := poses[channel.node]
		if pose.fixed != nil {
			continue
		}
		switch channel.path {
		case gltf.TRSTranslation:
			pose.translation = channel.sampleVec3(time)
		case gltf.TRSScale:
			pose.scale = channel.sampleVec3(time)
		case gltf.TRSRotation:
			pose.rotation = channel.sampleQuat(time)
		}
		poses[channel.node] = pose
	}
	return poses
}

// locate は time を挟むキーの index と補間係数を返す。範囲外は端のキーに張り付く。
func (c clipChannel) locate(time float64) (int, int, float64) {
	last := len(c.times) - 1
	if time <= c.times[0] {
		return 0, 0, 0
	}
	if time >= c.times[last] {
		return last, last, 0
	}
	next := sort.Search(len(c.times), func(i int) bool { return c.times[i] > time })
	prev := next - 1
	span := c.times[next] - c.times[prev]
	if span <= 0 || c.interpolation == gltf.InterpolationStep {
		return prev, prev, 0
	}
	return prev, next, (time - c.times[prev]) / span
}

func (c clipChannel) sampleVec3(time float64) mgl64.Vec3 {
	prev, next, t := c.locate(time)
	a := vec3Of(c.values[prev])
	b := vec3Of(c.values[next])
	return a.Add(b.Sub(a).Mul(t))
}

func (c clipChannel) sampleQuat(time float64) mgl64.Quat {
	prev, next, t := c.locate(time)
	a := quatOf(c.values[prev])
	b := quatOf(c.values[next])
	if prev == next {
		return a
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

func vec3Of(values []float64) mgl64.Vec3 {
	out := mgl64.Vec3{}
	for i := 0; i < 3 && i < len(values); i++ {
		out[i] = values[i]
	}
	return out
}

func quatOf(values []float64) mgl64.Quat {
	if len(values) < 4 {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: values[3], V: mgl64.Vec3{values[0], values[1], values[2]}}.Normalize()
}
