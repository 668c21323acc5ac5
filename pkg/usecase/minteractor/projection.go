// 指示: miu200521358
package minteractor

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

const (
	planarEpsilon      = 1e-5
	planarLengthFloor  = 1e-6
	maxYawSuppression  = 0.95
	sideCalibrationMsg = "Unable to derive source side calibration from left/right arm first-frame positions."
)

// angleConditioning は角度列の整形設定。
type angleConditioning struct {
	medianWindow    int
	maxDeltaDeg     float64
	smoothingAlpha  float64
	smoothingPasses int
	deadband        float64
}

// scalarConditioning は移動量列の整形設定。
type scalarConditioning struct {
	medianWindow    int
	smoothingAlpha  float64
	smoothingPasses int
	deadband        float64
}

// ProjectMotion は正規化トラックを2D角度列と腰の移動量へ投影する。
func ProjectMotion(humanoid *model.CanonicalHumanoid, options model.ProjectionOptions) (*model.ProjectedMotion, error) {
	frameCount := humanoid.FrameCount()
	if frameCount == 0 {
		return nil, merrors.NewInputError("投影するアニメーションフレームがありません")
	}

	warnings := make([]string, 0, len(humanoid.Warnings)+2)
	warnings = append(warnings, humanoid.Warnings...)

	var mapping mmath.AxisMapping
	if options.Axes != nil && options.Axes.IsValid() {
		mapping = *options.Axes
	} else {
		mapping = inferMotionAxes(humanoid, options.SourceSideCalibrationFrames)
		warnings = append(warnings, fmt.Sprintf(
			"Projection axes inferred as horizontal=%s, vertical=%s, depth=%s.",
			mapping.Horizontal, mapping.Vertical, mapping.Depth,
		))
	}

	angleOptions := angleConditioning{
		medianWindow:    options.AngleMedianWindow,
		maxDeltaDeg:     options.MaxDeltaDeg,
		smoothingAlpha:  options.AngleSmoothingAlpha,
		smoothingPasses: options.AngleSmoothingPasses,
		deadband:        options.AngleDeadbandDeg,
	}

	worldAngles := make(map[model.CanonicalJoint][]float64, len(humanoid.Tracks))
	for _, joint := range model.CanonicalJoints {
		raw := buildWorldAngleTrack(humanoid, joint, frameCount, mapping, options)
		if raw == nil {
			continue
		}
		worldAngles[joint] = conditionAngleTrack(raw, angleOptions)
	}

	localAngles := make(map[model.CanonicalJoint][]float64, len(worldAngles))
	for _, joint := range model.CanonicalJoints {
		world, ok := worldAngles[joint]
		if !ok {
			continue
		}
		localAngles[joint] = conditionAngleTrack(buildLocalAngleTrack(worldAngles, joint, world), angleOptions)
	}

	hipsTranslation := buildHipsTranslation(humanoid.Tracks[model.JointHips], frameCount, mapping, options)

	sideFrames := options.SourceSideCalibrationFrames
	leftX, leftOk := averageAxisPosition(humanoid.Tracks[options.SourceLeftJoint], mapping.Horizontal, sideFrames)
	rightX, rightOk := averageAxisPosition(humanoid.Tracks[options.SourceRightJoint], mapping.Horizontal, sideFrames)
	side := model.SourceSide{}
	if leftOk {
		side.LeftArmX = &leftX
	}
	if rightOk {
		side.RightArmX = &rightX
	}
	if !leftOk || !rightOk {
		warnings = append(warnings, sideCalibrationMsg)
	}

	missing := make([]model.CanonicalJoint, len(humanoid.MissingCanonicalJoints))
	copy(missing, humanoid.MissingCanonicalJoints)

	logging.DefaultLogger().Info(
		"2D投影完了: フレーム数=%d 関節数=%d 軸=%s/%s/%s",
		frameCount, len(localAngles), mapping.Horizontal, mapping.Vertical, mapping.Depth,
	)

	return &model.ProjectedMotion{
		Fps:                    humanoid.Fps,
		Duration:               humanoid.Duration,
		FrameTimes:             humanoid.FrameTimes,
		JointAngles:            localAngles,
		WorldJointAngles:       worldAngles,
		HipsTranslation:        hipsTranslation,
		AxisMapping:            mapping,
		SourceSide:             side,
		MissingCanonicalJoints: missing,
		Warnings:               warnings,
	}, nil
}

// inferMotionAxes は先頭フレームの関節位置から投影軸を推定する。
func inferMotionAxes(humanoid *model.CanonicalHumanoid, sampleFrames int) mmath.AxisMapping {
	mean := func(joint model.CanonicalJoint) (mmath.Vec3, bool) {
		return averageTrackPosition(humanoid.Tracks[joint], sampleFrames)
	}
	samples := make([]mmath.Vec3, 0)
	for _, joint := range model.CanonicalJoints {
		track := humanoid.Tracks[joint]
		if track == nil {
			continue
		}
		count := clampSampleCount(sampleFrames, len(track.Positions))
		for frame := 0; frame < count; frame++ {
			if position, ok := track.PositionAt(frame); ok {
				samples = append(samples, position)
			}
		}
	}
	return inferAxisMapping(mean, samples)
}

// inferAxisMapping は腰→頭、左右腕、左右脚、点群の広がりの順で軸を推定する。
func inferAxisMapping(mean func(model.CanonicalJoint) (mmath.Vec3, bool), samples []mmath.Vec3) mmath.AxisMapping {
	spread := mmath.BoundingSpread(samples)

	vertical := mmath.Axis("")
	if hips, ok := mean(model.JointHips); ok {
		top, topOk := mean(model.JointHead)
		if !topOk {
			top, topOk = mean(model.JointNeck)
		}
		if topOk {
			if up := top.Sub(hips); maxMagnitude(up) > planarEpsilon {
				vertical = mmath.DominantAxis(up)
			}
		}
	}
	if vertical == "" {
		vertical = mmath.DominantAxis(spread)
	}

	horizontal := mmath.Axis("")
	pairs := [][2]model.CanonicalJoint{
		{model.JointLeftArm, model.JointRightArm},
		{model.JointLeftUpLeg, model.JointRightUpLeg},
	}
	for _, pair := range pairs {
		left, leftOk := mean(pair[0])
		right, rightOk := mean(pair[1])
		if !leftOk || !rightOk {
			continue
		}
		across := left.Sub(right)
		if maxMagnitudeExcluding(across, vertical) <= planarEpsilon {
			continue
		}
		horizontal = mmath.DominantAxis(across, vertical)
		break
	}
	if horizontal == "" {
		horizontal = mmath.DominantAxis(spread, vertical)
	}

	return mmath.AxisMapping{
		Horizontal: horizontal,
		Vertical:   vertical,
		Depth:      mmath.RemainingAxis(horizontal, vertical),
	}
}

func maxMagnitude(v mmath.Vec3) float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

func maxMagnitudeExcluding(v mmath.Vec3, excluded mmath.Axis) float64 {
	result := 0.0
	for _, axis := range []mmath.Axis{mmath.AxisX, mmath.AxisY, mmath.AxisZ} {
		if axis == excluded {
			continue
		}
		result = math.Max(result, math.Abs(v.Component(axis)))
	}
	return result
}

func clampSampleCount(sampleFrames, length int) int {
	if length == 0 {
		return 0
	}
	if sampleFrames < 1 {
		return 1
	}
	if sampleFrames > length {
		return length
	}
	return sampleFrames
}

// averageTrackPosition は先頭 sampleFrames フレームの有効な位置の平均を返す。
func averageTrackPosition(track *model.CanonicalTrack, sampleFrames int) (mmath.Vec3, bool) {
	if track == nil {
		return mmath.Vec3{}, false
	}
	count := clampSampleCount(sampleFrames, len(track.Positions))
	points := make([]mmath.Vec3, 0, count)
	for frame := 0; frame < count; frame++ {
		if position, ok := track.PositionAt(frame); ok {
			points = append(points, position)
		}
	}
	return mmath.MeanVec3(points)
}

// averageAxisPosition は先頭 sampleFrames フレームの指定軸成分の平均を返す。
func averageAxisPosition(track *model.CanonicalTrack, axis mmath.Axis, sampleFrames int) (float64, bool) {
	if track == nil || len(track.Positions) == 0 {
		return 0, false
	}
	count := clampSampleCount(sampleFrames, len(track.Positions))
	values := make([]float64, count)
	for frame := 0; frame < count; frame++ {
		values[frame] = track.Positions[frame].Component(axis)
	}
	return mmath.MeanOfLeading(values, count)
}

// buildWorldAngleTrack は関節から子 (無ければ親から関節) へのベクトル角度列を作る。
// 関節の位置が無いフレームは0、平面成分が縮退したフレームは直前の角度を保持する。
func buildWorldAngleTrack(
	humanoid *model.CanonicalHumanoid,
	joint model.CanonicalJoint,
	frameCount int,
	mapping mmath.AxisMapping,
	options model.ProjectionOptions,
) []float64 {
	track := humanoid.Tracks[joint]
	if track == nil {
		return nil
	}
	var childTrack, parentTrack *model.CanonicalTrack
	if child, ok := joint.Child(); ok {
		childTrack = humanoid.Tracks[child]
	}
	if parent, ok := joint.Parent(); ok {
		parentTrack = humanoid.Tracks[parent]
	}

	angles := make([]float64, frameCount)
	for frame := 0; frame < frameCount; frame++ {
		current, ok := track.PositionAt(frame)
		if !ok {
			continue
		}
		var vector mmath.Vec3
		found := false
		if childPosition, childOk := childTrack.PositionAt(frame); childOk {
			vector = childPosition.Sub(current)
			found = true
		} else if parentPosition, parentOk := parentTrack.PositionAt(frame); parentOk {
			vector = current.Sub(parentPosition)
			found = true
		}

		h, v, d := vector.Project(mapping)
		planar := math.Hypot(h, v)
		if !found || planar <= planarEpsilon {
			if frame > 0 {
				angles[frame] = angles[frame-1]
			}
			continue
		}

		base := mmath.AngleDegrees(h, v)
		planarLength := math.Max(planarLengthFloor, planar)
		depthRatio := math.Abs(d) / (planarLength + math.Abs(d) + planarLengthFloor)
		suppression := 1 - mmath.Clamp(depthRatio*options.OutOfPlaneSuppression, 0, maxYawSuppression)
		yaw := mmath.AngleDegrees(planarLength, d)
		angles[frame] = base + yaw*options.YawInfluence*suppression
	}
	return angles
}

// buildLocalAngleTrack は親関節のワールド角度を差し引く。親が無い関節はワールド角度の複製。
func buildLocalAngleTrack(worldAngles map[model.CanonicalJoint][]float64, joint model.CanonicalJoint, world []float64) []float64 {
	local := make([]float64, len(world))
	copy(local, world)
	parent, ok := joint.Parent()
	if !ok {
		return local
	}
	parentWorld, ok := worldAngles[parent]
	if !ok {
		return local
	}
	for frame := range local {
		if frame < len(parentWorld) {
			local[frame] = world[frame] - parentWorld[frame]
		}
	}
	return local
}

// conditionAngleTrack は unwrap, 中央値, 差分制限, 双方向平滑, 不感帯, unwrap の順に整形する。
func conditionAngleTrack(angles []float64, options angleConditioning) []float64 {
	unwrapped := mmath.UnwrapAngles(angles)
	filtered := mmath.MedianFilter(unwrapped, options.medianWindow)
	clamped := mmath.ClampAngleDeltas(filtered, options.maxDeltaDeg)
	smoothed := mmath.SmoothBidirectional(clamped, options.smoothingAlpha, options.smoothingPasses)
	deadbanded := mmath.ApplyDeadband(smoothed, options.deadband)
	return mmath.UnwrapAngles(deadbanded)
}

// conditionScalarTrack は中央値, 双方向平滑, 不感帯の順に整形する。
func conditionScalarTrack(values []float64, options scalarConditioning) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	filtered := mmath.MedianFilter(values, options.medianWindow)
	smoothed := mmath.SmoothBidirectional(filtered, options.smoothingAlpha, options.smoothingPasses)
	return mmath.ApplyDeadband(smoothed, math.Max(0, options.deadband))
}

// buildHipsTranslation は腰の変位から緩やかなトレンドを除いたその場移動量を返す。
func buildHipsTranslation(
	hips *model.CanonicalTrack,
	frameCount int,
	mapping mmath.AxisMapping,
	options model.ProjectionOptions,
) []model.Translation2D {
	output := make([]model.Translation2D, frameCount)
	if hips == nil || len(hips.Positions) == 0 {
		return output
	}

	base, ok := hips.PositionAt(0)
	if !ok {
		base = mmath.Vec3{}
	}
	baseH, baseV, _ := base.Project(mapping)

	rawX := make([]float64, frameCount)
	rawY := make([]float64, frameCount)
	for frame := 0; frame < frameCount; frame++ {
		position, ok := hips.PositionAt(frame)
		if !ok {
			position = base
		}
		h, v, _ := position.Project(mapping)
		rawX[frame] = h - baseH
		rawY[frame] = v - baseV
	}

	trendX := rawX[0]
	trendY := rawY[0]
	inPlaceX := make([]float64, frameCount)
	inPlaceY := make([]float64, frameCount)
	for frame := 0; frame < frameCount; frame++ {
		trendX += (rawX[frame] - trendX) * options.InPlaceTrendAlpha
		trendY += (rawY[frame] - trendY) * options.InPlaceTrendAlpha
		inPlaceX[frame] = rawX[frame] - trendX
		inPlaceY[frame] = rawY[frame] - trendY
	}

	scalarOptions := scalarConditioning{
		medianWindow:    options.TranslationMedianWindow,
		smoothingAlpha:  options.TranslationSmoothingAlpha,
		smoothingPasses: options.TranslationSmoothingPasses,
		deadband:        options.TranslationDeadband,
	}
	smoothX := conditionScalarTrack(inPlaceX, scalarOptions)
	smoothY := conditionScalarTrack(inPlaceY, scalarOptions)
	for frame := 0; frame < frameCount; frame++ {
		output[frame] = model.Translation2D{X: smoothX[frame], Y: smoothY[frame]}
	}
	return output
}
