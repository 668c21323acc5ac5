// 指示: miu200521358
package minteractor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

// SkeletonConversionOptions はスケルトン変換の呼び出し側設定。
type SkeletonConversionOptions struct {
	Enabled        bool
	Mode           string
	Scope          string
	MismatchPolicy string
}

// Settings はレポート用の設定値を返す。
func (o SkeletonConversionOptions) Settings() model.SkeletonConversionSettings {
	normalized, _ := normalizeSkeletonOptions(o)
	return model.SkeletonConversionSettings{
		Enabled:        o.Enabled,
		Mode:           normalized.Mode,
		Scope:          normalized.Scope,
		MismatchPolicy: normalized.MismatchPolicy,
	}
}

// SkeletonConversionResult はスケルトン変換結果。
type SkeletonConversionResult struct {
	Skeleton *model.Skeleton
	Report   *model.SkeletonConversionReport
}

// normalizeSkeletonOptions はモード、範囲、ポリシーを正規化し、未対応値は既定値へ戻して警告する。
func normalizeSkeletonOptions(options SkeletonConversionOptions) (SkeletonConversionOptions, []string) {
	warnings := make([]string, 0)
	normalize := func(value, fallback string) string {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			return fallback
		}
		return normalized
	}
	pick := func(label, value string, valid []string, fallback string) string {
		for _, candidate := range valid {
			if candidate == value {
				return value
			}
		}
		warnings = append(warnings, fmt.Sprintf(
			"Unsupported skeleton %s \"%s\" requested; defaulted to \"%s\".", label, value, fallback,
		))
		return fallback
	}
	mode := normalize(options.Mode, model.SkeletonModeSpineFirst)
	policy := normalize(options.MismatchPolicy, model.MismatchPolicyAutoAddBones)
	scope := normalize(options.Scope, model.SkeletonScopeFullHierarchy)
	return SkeletonConversionOptions{
		Enabled:        options.Enabled,
		Mode:           pick("mode", mode, model.SkeletonModes, model.SkeletonModeSpineFirst),
		MismatchPolicy: pick("mismatch policy", policy, model.MismatchPolicies, model.MismatchPolicyAutoAddBones),
		Scope:          pick("scope", scope, model.SkeletonScopes, model.SkeletonScopeFullHierarchy),
	}, warnings
}

// ConvertSkeleton はソース階層に合わせて出力スケルトンのボーン階層を拡張または再構築する。
// 入力スケルトンは変更しない。humanoid が nil の場合はプロファイルの別名で正規化する。
func ConvertSkeleton(
	skeleton *model.Skeleton,
	motion *model.DecodedMotion,
	humanoid *model.CanonicalHumanoid,
	profile *model.RetargetProfile,
	options SkeletonConversionOptions,
) (*SkeletonConversionResult, error) {
	if skeleton == nil {
		return nil, merrors.NewInputError("スケルトン変換には有効なスケルトンJSONが必要です")
	}
	if !options.Enabled {
		return &SkeletonConversionResult{
			Skeleton: skeleton,
			Report:   model.NewSkeletonConversionReport(model.SkeletonModeDisabled),
		}, nil
	}
	if motion == nil {
		return nil, merrors.NewInputError("スケルトン変換には有効なモーションが必要です")
	}

	normalized, warnings := normalizeSkeletonOptions(options)
	report := model.NewSkeletonConversionReport(normalized.Mode)
	report.Warnings = append(report.Warnings, warnings...)

	nodes, nodeWarnings := collectSourceNodes(motion)
	report.Warnings = append(report.Warnings, nodeWarnings...)
	if len(nodes) == 0 {
		return nil, merrors.NewInputError("スケルトン変換に使えるソースノードがありません")
	}

	if humanoid == nil {
		humanoid = Canonicalize(motion, profile.AliasOverrides())
	}
	entries := profile.OrderedTargetBones()

	var (
		converted *model.Skeleton
		err       error
	)
	switch normalized.Mode {
	case model.SkeletonModeFbxFirst:
		converted, err = convertFbxFirst(skeleton, nodes, humanoid, entries, normalized.MismatchPolicy, report)
	default:
		converted, err = convertSpineFirst(skeleton, nodes, humanoid, entries, normalized.MismatchPolicy, report)
	}
	if err != nil {
		return nil, err
	}

	if violations := converted.ValidateTree(); len(violations) > 0 {
		return nil, merrors.NewInvariantError("変換後のボーン階層が不正です: %s", strings.Join(violations, ", "))
	}

	logging.DefaultLogger().Info(
		"スケルトン変換完了: モード=%s 追加=%d 再割当=%d 互換ボーン=%d",
		report.Mode, len(report.AddedBones), report.RemappedReferences, len(report.CompatibilityBonesAdded),
	)
	return &SkeletonConversionResult{Skeleton: converted, Report: report}, nil
}

// sourceNode はスケルトン変換で扱うソース階層ノード。
type sourceNode struct {
	name       string
	parentName string
	depth      int
	position   *mmath.Vec3
}

// collectSourceNodes はモーションのスケルトン情報、無ければトラックの親名からソース階層を作る。
func collectSourceNodes(motion *model.DecodedMotion) ([]*sourceNode, []string) {
	warnings := make([]string, 0)
	nodes := make([]*sourceNode, 0)
	seen := map[string]struct{}{}

	if motion.Skeleton != nil {
		for _, raw := range motion.Skeleton.Nodes {
			if raw.Name == "" {
				continue
			}
			if _, dup := seen[raw.Name]; dup {
				continue
			}
			seen[raw.Name] = struct{}{}
			position := raw.RestWorldPosition
			if position == nil || !position.IsFinite() {
				position = raw.Frame0WorldPosition
			}
			if position != nil && !position.IsFinite() {
				position = nil
			}
			nodes = append(nodes, &sourceNode{name: raw.Name, parentName: raw.ParentName, position: position})
		}
	}

	if len(nodes) == 0 {
		warnings = append(warnings,
			"FBX skeleton metadata was unavailable; source hierarchy fell back to sampled track parent names.")
		for _, track := range motion.OrderedTracks() {
			if track == nil || track.Name == "" {
				continue
			}
			if _, dup := seen[track.Name]; dup {
				continue
			}
			seen[track.Name] = struct{}{}
			node := &sourceNode{name: track.Name, parentName: track.ParentName}
			if position, ok := track.PositionAt(0); ok {
				node.position = &position
			}
			nodes = append(nodes, node)
		}
	}

	for _, node := range nodes {
		if _, ok := seen[node.parentName]; !ok || node.parentName == node.name {
			node.parentName = ""
		}
	}
	warnings = append(warnings, breakSourceCycles(nodes)...)
	applySourceDepth(nodes)
	return nodes, warnings
}

// breakSourceCycles は親チェーンの循環を閉じるノードを親無しにし、その警告を返す。
func breakSourceCycles(nodes []*sourceNode) []string {
	warnings := make([]string, 0)
	byName := make(map[string]*sourceNode, len(nodes))
	for _, node := range nodes {
		byName[node.name] = node
	}
	// 0: 未訪問, 1: 探索中, 2: 確定
	state := make(map[string]int, len(nodes))
	for _, node := range nodes {
		path := make([]*sourceNode, 0)
		cur := node
		for cur != nil && state[cur.name] == 0 {
			state[cur.name] = 1
			path = append(path, cur)
			cur = byName[cur.parentName]
		}
		if cur != nil && state[cur.name] == 1 {
			last := path[len(path)-1]
			last.parentName = ""
			warnings = append(warnings, fmt.Sprintf(
				"Source hierarchy cycle broken at %q; node attached to the root.", last.name))
		}
		for _, visited := range path {
			state[visited.name] = 2
		}
	}
	return warnings
}

// applySourceDepth は親チェーン長を深さとして設定する。
// 親の整理と循環の切断の後に数え直すため、デコーダの深さは使わない。
func applySourceDepth(nodes []*sourceNode) {
	byName := make(map[string]*sourceNode, len(nodes))
	for _, node := range nodes {
		byName[node.name] = node
	}
	depths := make(map[string]int, len(nodes))
	visiting := map[string]bool{}
	var resolve func(name string) int
	resolve = func(name string) int {
		if depth, ok := depths[name]; ok {
			return depth
		}
		node, ok := byName[name]
		if !ok || node.parentName == "" || visiting[name] {
			return 0
		}
		visiting[name] = true
		depth := resolve(node.parentName) + 1
		visiting[name] = false
		depths[name] = depth
		return depth
	}
	for _, node := range nodes {
		node.depth = resolve(node.name)
	}
}

// sortSourceNodes は深さ、名前の順に並べた複製を返す。
func sortSourceNodes(nodes []*sourceNode) []*sourceNode {
	ordered := make([]*sourceNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].depth != ordered[j].depth {
			return ordered[i].depth < ordered[j].depth
		}
		return ordered[i].name < ordered[j].name
	})
	return ordered
}

// anchorPair は正規化関節で対応付いたソースノードと出力ボーン。
type anchorPair struct {
	sourceName string
	boneName   string
}

// canonicalAnchors は直接対応した正規化関節のソース名から出力ボーン名への対応を順序付きで返す。
func canonicalAnchors(humanoid *model.CanonicalHumanoid, entries []model.TargetBoneEntry) []anchorPair {
	anchors := make([]anchorPair, 0, len(entries))
	index := map[string]int{}
	for _, entry := range entries {
		sourceName, ok := humanoid.DirectMapping(model.CanonicalJoint(entry.Joint))
		if !ok || sourceName == "" {
			continue
		}
		if position, exists := index[sourceName]; exists {
			anchors[position].boneName = entry.Bone
			continue
		}
		index[sourceName] = len(anchors)
		anchors = append(anchors, anchorPair{sourceName: sourceName, boneName: entry.Bone})
	}
	return anchors
}

// conversionGeometry はソース階層を出力スケルトン空間へ配置するための共通情報。
type conversionGeometry struct {
	nodes      []*sourceNode
	nodeByName map[string]*sourceNode
	children   map[string][]string
	axes       mmath.AxisMapping
	scale      float64
	alignment  mmath.Similarity2D
	aligned    map[string]mgl64.Vec2
}

// buildConversionGeometry は投影軸推定、スケール推定、位置合わせを行う。
func buildConversionGeometry(
	nodes []*sourceNode,
	humanoid *model.CanonicalHumanoid,
	entries []model.TargetBoneEntry,
	target *model.Skeleton,
	report *model.SkeletonConversionReport,
) *conversionGeometry {
	ordered := sortSourceNodes(nodes)
	geometry := &conversionGeometry{
		nodes:      ordered,
		nodeByName: make(map[string]*sourceNode, len(ordered)),
		children:   map[string][]string{},
		aligned:    make(map[string]mgl64.Vec2, len(ordered)),
	}
	samples := make([]mmath.Vec3, 0, len(ordered))
	for _, node := range ordered {
		geometry.nodeByName[node.name] = node
		if node.parentName != "" {
			geometry.children[node.parentName] = append(geometry.children[node.parentName], node.name)
		}
		if node.position != nil {
			samples = append(samples, *node.position)
		}
	}
	for _, children := range geometry.children {
		sort.Strings(children)
	}

	geometry.axes = inferAxisMapping(func(joint model.CanonicalJoint) (mmath.Vec3, bool) {
		sourceName, ok := humanoid.DirectMapping(joint)
		if !ok {
			return mmath.Vec3{}, false
		}
		node, ok := geometry.nodeByName[sourceName]
		if !ok || node.position == nil {
			return mmath.Vec3{}, false
		}
		return *node.position, true
	}, samples)
	report.Warnings = append(report.Warnings, fmt.Sprintf(
		"Skeleton conversion projection axes inferred as horizontal=%s, vertical=%s, depth=%s.",
		geometry.axes.Horizontal, geometry.axes.Vertical, geometry.axes.Depth,
	))

	projected := make(map[string]mgl64.Vec2, len(ordered))
	for _, node := range ordered {
		if node.position == nil {
			continue
		}
		h, v, _ := node.position.Project(geometry.axes)
		projected[node.name] = mgl64.Vec2{h, v}
	}

	targetWorld := target.WorldTransforms()
	geometry.scale = estimateScaleRatio(humanoid, entries, projected, target, targetWorld)
	geometry.alignment = buildAlignment(humanoid, canonicalAnchors(humanoid, entries), projected, targetWorld, geometry.scale, report)
	for name, point := range projected {
		geometry.aligned[name] = geometry.alignment.Apply(point)
	}
	logging.DefaultLogger().Debug(
		"スケルトン変換の位置合わせ: scale=%.4f rotation=%.4f", geometry.scale, mgl64.RadToDeg(geometry.alignment.RotationRad),
	)
	return geometry
}

// estimateScaleRatio は出力ボーン長 / ソース関節間距離の中央値を返す。算出できない場合は1。
func estimateScaleRatio(
	humanoid *model.CanonicalHumanoid,
	entries []model.TargetBoneEntry,
	projected map[string]mgl64.Vec2,
	target *model.Skeleton,
	targetWorld map[string]mmath.BoneTransform,
) float64 {
	ratios := make([]float64, 0)
	for _, entry := range entries {
		joint := model.CanonicalJoint(entry.Joint)
		sourceName, ok := humanoid.DirectMapping(joint)
		if !ok {
			continue
		}
		parentJoint, ok := joint.Parent()
		if !ok {
			continue
		}
		sourceParentName, ok := humanoid.DirectMapping(parentJoint)
		if !ok {
			continue
		}
		sourcePoint, ok := projected[sourceName]
		if !ok {
			continue
		}
		sourceParentPoint, ok := projected[sourceParentName]
		if !ok {
			continue
		}
		sourceLength := mmath.Distance2D(sourcePoint, sourceParentPoint)
		if sourceLength <= mmath.Epsilon {
			continue
		}
		bone, ok := target.BoneByName(entry.Bone)
		if !ok {
			continue
		}
		targetLength := math.Abs(bone.Length)
		if targetLength <= mmath.Epsilon && bone.Parent != "" {
			boneWorld, boneOk := targetWorld[bone.Name]
			parentWorld, parentOk := targetWorld[bone.Parent]
			if boneOk && parentOk {
				targetLength = mmath.Distance2D(boneWorld.Position(), parentWorld.Position())
			}
		}
		if targetLength <= mmath.Epsilon {
			continue
		}
		ratios = append(ratios, targetLength/sourceLength)
	}
	ratio, ok := mmath.Median(ratios)
	if !ok || ratio <= mmath.Epsilon {
		return 1
	}
	return ratio
}

// anchorPoint は位置合わせに使うソース点と出力点の組。
type anchorPoint struct {
	sourceName string
	source     mgl64.Vec2
	target     mgl64.Vec2
}

// buildAlignment は対応点から2D相似変換を求める。原点は腰を優先し、回転は腰→頭、左右腕、左右脚の順に試す。
func buildAlignment(
	humanoid *model.CanonicalHumanoid,
	anchors []anchorPair,
	projected map[string]mgl64.Vec2,
	targetWorld map[string]mmath.BoneTransform,
	scale float64,
	report *model.SkeletonConversionReport,
) mmath.Similarity2D {
	pairs := make([]anchorPoint, 0, len(anchors))
	for _, anchor := range anchors {
		source, sourceOk := projected[anchor.sourceName]
		target, targetOk := targetWorld[anchor.boneName]
		if sourceOk && targetOk {
			pairs = append(pairs, anchorPoint{sourceName: anchor.sourceName, source: source, target: target.Position()})
		}
	}
	if len(pairs) == 0 {
		report.Warnings = append(report.Warnings,
			"Skeleton conversion alignment fell back to identity transform (no canonical source/target anchor pairs).")
		return mmath.IdentitySimilarity(scale)
	}

	findPair := func(sourceName string) (anchorPoint, bool) {
		for _, pair := range pairs {
			if pair.sourceName == sourceName {
				return pair, true
			}
		}
		return anchorPoint{}, false
	}

	origin := pairs[0]
	if hipsSource, ok := humanoid.DirectMapping(model.JointHips); ok {
		if hipsPair, found := findPair(hipsSource); found {
			origin = hipsPair
		}
	}

	pairRotation := func(nameA, nameB string) (float64, bool) {
		pairA, okA := findPair(nameA)
		pairB, okB := findPair(nameB)
		if !okA || !okB {
			return 0, false
		}
		sourceVector := pairB.source.Sub(pairA.source)
		targetVector := pairB.target.Sub(pairA.target)
		if sourceVector.Len() <= mmath.Epsilon || targetVector.Len() <= mmath.Epsilon {
			return 0, false
		}
		return math.Atan2(targetVector.Y(), targetVector.X()) - math.Atan2(sourceVector.Y(), sourceVector.X()), true
	}

	rotation := 0.0
	found := false
	candidates := [][2]model.CanonicalJoint{
		{model.JointHips, model.JointHead},
		{model.JointLeftArm, model.JointRightArm},
		{model.JointLeftUpLeg, model.JointRightUpLeg},
	}
	for _, candidate := range candidates {
		nameA, okA := humanoid.DirectMapping(candidate[0])
		nameB, okB := humanoid.DirectMapping(candidate[1])
		if !okA || !okB {
			continue
		}
		if value, ok := pairRotation(nameA, nameB); ok {
			rotation = value
			found = true
			break
		}
	}
	if !found && len(pairs) >= 2 {
		if value, ok := pairRotation(pairs[0].sourceName, pairs[1].sourceName); ok {
			rotation = value
		}
	}

	return mmath.Similarity2D{
		SourceOrigin: origin.source,
		TargetOrigin: origin.target,
		RotationRad:  rotation,
		Scale:        scale,
	}
}

// worldOrientation は最初の子 (無ければ親から自身) への向きを度で返す。縮退時は0。
func (g *conversionGeometry) worldOrientation(node *sourceNode) float64 {
	point, ok := g.aligned[node.name]
	if !ok {
		return 0
	}
	var vector mgl64.Vec2
	found := false
	if children := g.children[node.name]; len(children) > 0 {
		if child, childOk := g.aligned[children[0]]; childOk {
			vector = child.Sub(point)
			found = true
		}
	}
	if !found && node.parentName != "" {
		if parent, parentOk := g.aligned[node.parentName]; parentOk {
			vector = point.Sub(parent)
			found = true
		}
	}
	if !found || vector.Len() <= mmath.Epsilon {
		return 0
	}
	return mmath.AngleDegrees(vector.X(), vector.Y())
}

// nodeLength は最初の子までの距離を返す。
func (g *conversionGeometry) nodeLength(node *sourceNode) float64 {
	point, ok := g.aligned[node.name]
	if !ok {
		return 0
	}
	children := g.children[node.name]
	if len(children) == 0 {
		return 0
	}
	child, ok := g.aligned[children[0]]
	if !ok {
		return 0
	}
	return mmath.Distance2D(point, child)
}

// placeBone はソースノードを親のワールド変換基準のローカル値を持つボーンとして配置する。
func (g *conversionGeometry) placeBone(node *sourceNode, boneName, parentName string, parentWorld mmath.BoneTransform) *model.Bone {
	worldPoint, ok := g.aligned[node.name]
	if !ok {
		worldPoint = parentWorld.Position()
	}
	local := parentWorld.WorldToLocal(worldPoint)
	localRotation := mmath.NormalizeAngle(g.worldOrientation(node) - parentWorld.Rotation)
	length := g.nodeLength(node)

	bone := model.NewBone(boneName, parentName)
	if math.Abs(local.X()) > mmath.Epsilon {
		bone.X = mmath.Round4(local.X())
	}
	if math.Abs(local.Y()) > mmath.Epsilon {
		bone.Y = mmath.Round4(local.Y())
	}
	if math.Abs(localRotation) > mmath.Epsilon {
		bone.Rotation = mmath.Round4(localRotation)
	}
	if length > mmath.Epsilon {
		bone.Length = mmath.Round4(length)
	}
	return bone
}

// generateUniqueBoneName は使用済み名と衝突しないボーン名を払い出す。
func generateUniqueBoneName(preferred string, used map[string]struct{}) string {
	base := sanitizeBoneName(preferred)
	if _, exists := used[base]; !exists {
		used[base] = struct{}{}
		return base
	}
	for suffix := 1; suffix < uniqueNameSuffixLimit; suffix++ {
		candidate := fmt.Sprintf("%s_fbx_%d", base, suffix)
		if _, exists := used[candidate]; !exists {
			used[candidate] = struct{}{}
			return candidate
		}
	}
	fallback := fmt.Sprintf("%s_%d", base, nowFunc().UnixMilli())
	used[fallback] = struct{}{}
	return fallback
}
