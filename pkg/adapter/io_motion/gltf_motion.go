// 指示: miu200521358
package io_motion

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/qmuntal/gltf"
)

const heuristicNodeSelectionMsg = "glTF had no skin joints; retargeting used heuristic node selection."

// trackedNameHints はスキン情報が無い場合に関節とみなすノード名の部分文字列。
var trackedNameHints = []string{
	"mixamorig", "hips", "spine", "neck", "head", "arm", "hand", "leg", "foot", "root",
}

// gltfScene は読み込んだノード階層を表す。
type gltfScene struct {
	doc     *gltf.Document
	parents []int
	// order は親が子より先に並ぶ走査順。
	order []int
	rest  []nodePose
}

// loadMotionGltf は glTF/GLB の最長アニメーションをサンプリングして関節トラックへ変換する。
func loadMotionGltf(path string, fps float64) (*model.DecodedMotion, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("glTFファイルの読み取りに失敗しました: %s", err, path)
	}

	clip, err := chooseClip(doc)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, io_common.NewIoParseFailed("アニメーションクリップが含まれていません: %s", nil, path)
	}

	scene, err := buildGltfScene(doc)
	if err != nil {
		return nil, err
	}

	warnings := make([]string, 0)
	tracked, fromSkin := collectTrackedNodes(doc, scene.order)
	if len(tracked) == 0 {
		return nil, io_common.NewIoParseFailed("リターゲット対象の関節ノードがありません: %s", nil, path)
	}
	if !fromSkin {
		warnings = append(warnings, heuristicNodeSelectionMsg)
	}

	trackedSet := make(map[int]struct{}, len(tracked))
	for _, index := range tracked {
		trackedSet[index] = struct{}{}
	}

	frameTimes := buildFrameTimes(clip.duration, fps)
	motion := &model.DecodedMotion{
		SourceFile:  filepath.Base(path),
		ClipName:    clip.name,
		Fps:         fps,
		Duration:    frameTimes[len(frameTimes)-1],
		FrameTimes:  frameTimes,
		JointTracks: make(map[string]*model.JointTrack, len(tracked)),
		TrackOrder:  make([]string, 0, len(tracked)),
		Skeleton:    &model.SourceSkeleton{Nodes: make([]model.SourceSkeletonNode, 0, len(tracked))},
	}
	if motion.ClipName == "" {
		motion.ClipName = stemOf(path)
	}

	names := make(map[int]string, len(tracked))
	for _, index := range tracked {
		name := doc.Nodes[index].Name
		if _, exists := motion.JointTracks[name]; exists {
			warnings = append(warnings, "Duplicate glTF node name \""+name+"\" was ignored.")
			continue
		}
		names[index] = name
		parentName := ""
		if parent := scene.nearestTrackedAncestor(index, trackedSet); parent >= 0 {
			parentName = doc.Nodes[parent].Name
		}
		motion.JointTracks[name] = &model.JointTrack{
			Name:       name,
			ParentName: parentName,
			Positions:  make([]mmath.Vec3, 0, len(frameTimes)),
			Rotations:  make([]mmath.Quat4, 0, len(frameTimes)),
		}
		motion.TrackOrder = append(motion.TrackOrder, name)
	}

	restWorld := scene.worldPoses(scene.rest)
	for frame, time := range frameTimes {
		world := scene.worldPoses(clip.poseAt(scene.rest, math.Min(time, clip.duration)))
		for _, index := range tracked {
			name, ok := names[index]
			if !ok {
				continue
			}
			track := motion.JointTracks[name]
			track.Positions = append(track.Positions, toVec3(world[index].translation))
			track.Rotations = append(track.Rotations, toQuat4(world[index].rotation))
		}
		if frame == 0 {
			motion.Skeleton.Nodes = buildSourceNodes(doc, tracked, names, motion.JointTracks, scene, restWorld, world)
		}
	}

	motion.Warnings = warnings
	return motion, nil
}

// buildFrameTimes は fps 間隔のサンプリング時刻を作る。末尾は尺に揃える。
func buildFrameTimes(duration float64, fps float64) []float64 {
	safeDuration := math.Max(1/fps, duration)
	frameCount := int(math.Max(2, math.Floor(safeDuration*fps)+1))
	frameTimes := make([]float64, frameCount)
	for index := range frameTimes {
		if index == frameCount-1 {
			frameTimes[index] = safeDuration
			continue
		}
		frameTimes[index] = float64(index) / fps
	}
	return frameTimes
}

// buildGltfScene は親子関係と走査順、レスト姿勢を解決する。
func buildGltfScene(doc *gltf.Document) (*gltfScene, error) {
	parents, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	scene := &gltfScene{doc: doc, parents: parents, rest: make([]nodePose, len(doc.Nodes))}
	for index, node := range doc.Nodes {
		scene.rest[index] = restPose(node)
	}

	visited := make([]bool, len(doc.Nodes))
	var visit func(index int)
	visit = func(index int) {
		if visited[index] {
			return
		}
		visited[index] = true
		scene.order = append(scene.order, index)
		for _, child := range doc.Nodes[index].Children {
			if parents[child] == index {
				visit(child)
			}
		}
	}
	for index := range doc.Nodes {
		if parents[index] < 0 {
			visit(index)
		}
	}
	return scene, nil
}

// buildNodeParentIndexes は node.children から親indexを求める。複数の親を持つ場合は最初の親を採用する。
func buildNodeParentIndexes(nodes []*gltf.Node) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, io_common.NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if parentIndexes[childIndex] == -1 && childIndex != parentIndex {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// collectTrackedNodes はスキンの関節ノードを走査順で返す。スキンが無い場合は名前から推定する。
func collectTrackedNodes(doc *gltf.Document, order []int) ([]int, bool) {
	joints := skinJointSet(doc)
	tracked := make([]int, 0)
	if len(joints) > 0 {
		for _, index := range order {
			if _, ok := joints[index]; ok && doc.Nodes[index].Name != "" {
				tracked = append(tracked, index)
			}
		}
		if len(tracked) > 0 {
			return tracked, true
		}
	}

	for _, index := range order {
		node := doc.Nodes[index]
		if node.Name == "" || node.Mesh != nil {
			continue
		}
		normalized := strings.ToLower(node.Name)
		for _, hint := range trackedNameHints {
			if strings.Contains(normalized, hint) {
				tracked = append(tracked, index)
				break
			}
		}
	}
	return tracked, false
}

// nearestTrackedAncestor は最も近い追跡対象の祖先を返す。無い場合は -1。
func (s *gltfScene) nearestTrackedAncestor(index int, tracked map[int]struct{}) int {
	parent := s.parents[index]
	for guard := 0; parent >= 0 && guard < len(s.parents); guard++ {
		if _, ok := tracked[parent]; ok {
			return parent
		}
		parent = s.parents[parent]
	}
	return -1
}

// worldPoses はローカル姿勢からワールド姿勢を求める。
func (s *gltfScene) worldPoses(local []nodePose) []worldPose {
	world := make([]worldPose, len(local))
	for _, index := range s.order {
		matrix := local[index].matrix()
		rotation := local[index].rotation
		if parent := s.parents[index]; parent >= 0 {
			matrix = world[parent].matrix.Mul4(matrix)
			rotation = world[parent].rotation.Mul(rotation).Normalize()
		}
		world[index] = worldPose{
			matrix:      matrix,
			translation: matrix.Col(3).Vec3(),
			rotation:    rotation,
		}
	}
	return world
}

// buildSourceNodes はソース階層メタデータを作る。深さは追跡対象の祖先数。
func buildSourceNodes(
	doc *gltf.Document,
	tracked []int,
	names map[int]string,
	tracks map[string]*model.JointTrack,
	scene *gltfScene,
	restWorld []worldPose,
	frame0 []worldPose,
) []model.SourceSkeletonNode {
	joints := skinJointSet(doc)
	depths := make(map[string]int, len(tracked))
	nodes := make([]model.SourceSkeletonNode, 0, len(tracked))
	for _, index := range tracked {
		name, ok := names[index]
		if !ok {
			continue
		}
		parentName := tracks[name].ParentName
		depth := 0
		if parentDepth, ok := depths[parentName]; ok && parentName != "" {
			depth = parentDepth + 1
		}
		depths[name] = depth

		restPosition := toVec3(restWorld[index].translation)
		localPosition := toVec3(scene.rest[index].translation)
		frame0Position := toVec3(frame0[index].translation)
		_, isJoint := joints[index]
		nodes = append(nodes, model.SourceSkeletonNode{
			Name:                name,
			ParentName:          parentName,
			Depth:               depth,
			IsBone:              isJoint,
			RestWorldPosition:   &restPosition,
			RestLocalPosition:   &localPosition,
			Frame0WorldPosition: &frame0Position,
		})
	}
	return nodes
}

// skinJointSet はスキンの関節ノード集合を返す。
func skinJointSet(doc *gltf.Document) map[int]struct{} {
	joints := map[int]struct{}{}
	for _, skin := range doc.Skins {
		for _, joint := range skin.Joints {
			joints[joint] = struct{}{}
		}
	}
	return joints
}

func toVec3(v mgl64.Vec3) mmath.Vec3 {
	return mmath.Vec3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func toQuat4(q mgl64.Quat) mmath.Quat4 {
	return mmath.Quat4{X: q.V.X(), Y: q.V.Y(), Z: q.V.Z(), W: q.W}
}
