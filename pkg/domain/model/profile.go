// 指示: miu200521358
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultProfileID はプロファイルIDが無い場合のレポート値。
	DefaultProfileID = "unknown-profile"
	// DefaultSideCalibrationLeftBone は左右判定に使う既定の左ボーン名。
	DefaultSideCalibrationLeftBone = "ARM_L"
	// DefaultSideCalibrationRightBone は左右判定に使う既定の右ボーン名。
	DefaultSideCalibrationRightBone = "ARM_R"
)

// RetargetProfile はリターゲット設定を表す。読み込み後は変更しない。
type RetargetProfile struct {
	ID               string                       `yaml:"id"`
	TargetBones      map[string]TargetBoneMapping `yaml:"targetBones"`
	JointAdjustments map[string]JointAdjustment   `yaml:"jointAdjustments"`
	Limits           ProfileLimits                `yaml:"limits"`
	SideCalibration  SideCalibration              `yaml:"sideCalibration"`
	TranslationScale *float64                     `yaml:"translationScale"`
	Timeline         TimelineConfig               `yaml:"timeline"`
	RootMotion       string                       `yaml:"rootMotion"`
	Projection       ProjectionConfig             `yaml:"projection"`
	Aliases          map[string][]string          `yaml:"aliases"`
}

// TargetBoneMapping は正規化関節に対応する出力ボーン。
type TargetBoneMapping struct {
	Bone      string `yaml:"bone"`
	Translate bool   `yaml:"translate"`
}

// UnmarshalYAML はボーン名のみの文字列表記とオブジェクト表記の両方を受け付ける。
func (m *TargetBoneMapping) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		m.Bone = strings.TrimSpace(value.Value)
		m.Translate = false
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("targetBones の値が不正です: line=%d", value.Line)
	}
	type rawMapping TargetBoneMapping
	var raw rawMapping
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*m = TargetBoneMapping(raw)
	m.Bone = strings.TrimSpace(m.Bone)
	return nil
}

// JointAdjustment は関節またはボーン単位の数値補正。
type JointAdjustment struct {
	Multiplier *float64 `yaml:"multiplier"`
	Offset     *float64 `yaml:"offset"`
	Expression string   `yaml:"expression"`
}

// MultiplierOrDefault は倍率を返す。未指定時は1。
func (a JointAdjustment) MultiplierOrDefault() float64 {
	if a.Multiplier == nil || !mmath.IsFinite(*a.Multiplier) {
		return 1
	}
	return *a.Multiplier
}

// OffsetOrDefault はオフセットを返す。未指定時は0。
func (a JointAdjustment) OffsetOrDefault() float64 {
	if a.Offset == nil || !mmath.IsFinite(*a.Offset) {
		return 0
	}
	return *a.Offset
}

// ProfileLimits は角度範囲と間引き閾値。
type ProfileLimits struct {
	MinAngle           *float64 `yaml:"minAngle"`
	MaxAngle           *float64 `yaml:"maxAngle"`
	RotationEpsilonDeg *float64 `yaml:"rotationEpsilonDeg"`
	TranslationEpsilon *float64 `yaml:"translationEpsilon"`
}

// SideCalibration は左右判定に使う関節とボーン。
type SideCalibration struct {
	SourceLeftJoint  string `yaml:"sourceLeftJoint"`
	SourceRightJoint string `yaml:"sourceRightJoint"`
	TargetLeftBone   string `yaml:"targetLeftBone"`
	TargetRightBone  string `yaml:"targetRightBone"`
}

// TimelineConfig はキーフレーム生成設定。未指定の項目は nil。
type TimelineConfig struct {
	UniformKeyframes      *bool `yaml:"uniformKeyframes"`
	ReduceRotationKeys    *bool `yaml:"reduceRotationKeys"`
	ReduceTranslationKeys *bool `yaml:"reduceTranslationKeys"`
	FillMissingWithZero   *bool `yaml:"fillMissingWithZero"`
	ReferenceFrameCount   *int  `yaml:"referenceFrameCount"`
}

// AxisConfig は明示的な投影軸指定。
type AxisConfig struct {
	Horizontal string `yaml:"horizontal"`
	Vertical   string `yaml:"vertical"`
	Depth      string `yaml:"depth"`
}

// Mapping は軸指定を検証して軸対応に変換する。
func (c *AxisConfig) Mapping() (mmath.AxisMapping, bool) {
	if c == nil {
		return mmath.AxisMapping{}, false
	}
	mapping := mmath.AxisMapping{
		Horizontal: mmath.Axis(strings.ToLower(strings.TrimSpace(c.Horizontal))),
		Vertical:   mmath.Axis(strings.ToLower(strings.TrimSpace(c.Vertical))),
		Depth:      mmath.Axis(strings.ToLower(strings.TrimSpace(c.Depth))),
	}
	if !mapping.IsValid() {
		return mmath.AxisMapping{}, false
	}
	return mapping, true
}

// ProjectionConfig は投影と平滑化の上書き設定。
type ProjectionConfig struct {
	MaxDeltaDeg                 *float64    `yaml:"maxDeltaDeg"`
	AngleMedianWindow           *int        `yaml:"angleMedianWindow"`
	AngleSmoothingAlpha         *float64    `yaml:"angleSmoothingAlpha"`
	AngleSmoothingPasses        *int        `yaml:"angleSmoothingPasses"`
	AngleDeadbandDeg            *float64    `yaml:"angleDeadbandDeg"`
	TranslationMedianWindow     *int        `yaml:"translationMedianWindow"`
	TranslationSmoothingAlpha   *float64    `yaml:"translationSmoothingAlpha"`
	TranslationSmoothingPasses  *int        `yaml:"translationSmoothingPasses"`
	TranslationDeadband         *float64    `yaml:"translationDeadband"`
	InPlaceTrendAlpha           *float64    `yaml:"inPlaceTrendAlpha"`
	YawInfluence                *float64    `yaml:"yawInfluence"`
	OutOfPlaneSuppression       *float64    `yaml:"outOfPlaneSuppression"`
	SourceSideCalibrationFrames *int        `yaml:"sourceSideCalibrationFrames"`
	Axes                        *AxisConfig `yaml:"axes"`
}

// ProjectionOptions は解決済みの投影設定。
type ProjectionOptions struct {
	MaxDeltaDeg                 float64
	AngleMedianWindow           int
	AngleSmoothingAlpha         float64
	AngleSmoothingPasses        int
	AngleDeadbandDeg            float64
	TranslationMedianWindow     int
	TranslationSmoothingAlpha   float64
	TranslationSmoothingPasses  int
	TranslationDeadband         float64
	InPlaceTrendAlpha           float64
	YawInfluence                float64
	OutOfPlaneSuppression       float64
	SourceSideCalibrationFrames int
	SourceLeftJoint             CanonicalJoint
	SourceRightJoint            CanonicalJoint
	// Axes が nil の場合は軸を推定する。
	Axes *mmath.AxisMapping
}

// DefaultProjectionOptions は既定の投影設定を返す。
func DefaultProjectionOptions() ProjectionOptions {
	return ProjectionOptions{
		MaxDeltaDeg:                 70,
		AngleMedianWindow:           5,
		AngleSmoothingAlpha:         0.55,
		AngleSmoothingPasses:        2,
		AngleDeadbandDeg:            0.02,
		TranslationMedianWindow:     5,
		TranslationSmoothingAlpha:   0.5,
		TranslationSmoothingPasses:  2,
		TranslationDeadband:         0.01,
		InPlaceTrendAlpha:           0.03,
		YawInfluence:                0.05,
		OutOfPlaneSuppression:       0.85,
		SourceSideCalibrationFrames: 5,
		SourceLeftJoint:             JointLeftArm,
		SourceRightJoint:            JointRightArm,
	}
}

// Apply は上書き設定を既定値に重ねた投影設定を返す。
func (c ProjectionConfig) Apply(base ProjectionOptions) ProjectionOptions {
	out := base
	overrideFloat(&out.MaxDeltaDeg, c.MaxDeltaDeg)
	overrideInt(&out.AngleMedianWindow, c.AngleMedianWindow)
	overrideFloat(&out.AngleSmoothingAlpha, c.AngleSmoothingAlpha)
	overrideInt(&out.AngleSmoothingPasses, c.AngleSmoothingPasses)
	overrideFloat(&out.AngleDeadbandDeg, c.AngleDeadbandDeg)
	overrideInt(&out.TranslationMedianWindow, c.TranslationMedianWindow)
	overrideFloat(&out.TranslationSmoothingAlpha, c.TranslationSmoothingAlpha)
	overrideInt(&out.TranslationSmoothingPasses, c.TranslationSmoothingPasses)
	overrideFloat(&out.TranslationDeadband, c.TranslationDeadband)
	overrideFloat(&out.InPlaceTrendAlpha, c.InPlaceTrendAlpha)
	overrideFloat(&out.YawInfluence, c.YawInfluence)
	overrideFloat(&out.OutOfPlaneSuppression, c.OutOfPlaneSuppression)
	overrideInt(&out.SourceSideCalibrationFrames, c.SourceSideCalibrationFrames)
	if mapping, ok := c.Axes.Mapping(); ok {
		out.Axes = &mapping
	}
	return out
}

func overrideFloat(dst *float64, value *float64) {
	if value != nil && mmath.IsFinite(*value) {
		*dst = *value
	}
}

func overrideInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

// TargetBoneEntry は処理順に並べた出力ボーン対応。
type TargetBoneEntry struct {
	Joint     string
	Bone      string
	Translate bool
}

// OrderedTargetBones は正規化関節順、その後に残りのキーを名前順で返す。ボーン名が空の項目は除く。
func (p *RetargetProfile) OrderedTargetBones() []TargetBoneEntry {
	if p == nil || len(p.TargetBones) == 0 {
		return nil
	}
	entries := make([]TargetBoneEntry, 0, len(p.TargetBones))
	used := make(map[string]struct{}, len(p.TargetBones))
	appendEntry := func(joint string) {
		mapping, ok := p.TargetBones[joint]
		used[joint] = struct{}{}
		if !ok || mapping.Bone == "" {
			return
		}
		entries = append(entries, TargetBoneEntry{Joint: joint, Bone: mapping.Bone, Translate: mapping.Translate})
	}
	for _, joint := range CanonicalJoints {
		if _, ok := p.TargetBones[joint.String()]; ok {
			appendEntry(joint.String())
		}
	}
	rest := make([]string, 0)
	for joint := range p.TargetBones {
		if _, ok := used[joint]; !ok {
			rest = append(rest, joint)
		}
	}
	sort.Strings(rest)
	for _, joint := range rest {
		appendEntry(joint)
	}
	return entries
}

// Adjustment は関節名、次にボーン名で補正を引く。
func (p *RetargetProfile) Adjustment(joint, bone string) JointAdjustment {
	if p == nil {
		return JointAdjustment{}
	}
	if adjustment, ok := p.JointAdjustments[joint]; ok {
		return adjustment
	}
	if adjustment, ok := p.JointAdjustments[bone]; ok {
		return adjustment
	}
	return JointAdjustment{}
}

// TranslationScaleOrDefault は移動量の倍率を返す。
func (p *RetargetProfile) TranslationScaleOrDefault() float64 {
	if p == nil || p.TranslationScale == nil || !mmath.IsFinite(*p.TranslationScale) {
		return 1
	}
	return *p.TranslationScale
}

// AliasOverrides はプロファイルの別名上書きを正規化関節単位で返す。
func (p *RetargetProfile) AliasOverrides() map[CanonicalJoint][]string {
	if p == nil || len(p.Aliases) == 0 {
		return nil
	}
	out := make(map[CanonicalJoint][]string, len(p.Aliases))
	for joint, aliases := range p.Aliases {
		out[CanonicalJoint(joint)] = aliases
	}
	return out
}
