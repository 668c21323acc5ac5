// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// MergeResult は非破壊マージの結果。
type MergeResult struct {
	Skeleton      *model.Skeleton
	AnimationName string
}

// sanitizeAnimationName はアニメーション名を英数字と _ - のみにする。
func sanitizeAnimationName(name string) string {
	cleaned := animationSpacePattern.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = boneInvalidCharPattern.ReplaceAllString(cleaned, "_")
	cleaned = underscoreRunPattern.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return model.DefaultAnimationName
	}
	return cleaned
}

// resolveAnimationNameCollision は既存のアニメーション名と衝突しない名前を返す。
// 衝突時は _fbx、_fbx_2、_fbx_3 の順に試す。
func resolveAnimationNameCollision(name string, existing map[string]*model.Animation) string {
	base := sanitizeAnimationName(name)
	if _, ok := existing[base]; !ok {
		return base
	}
	for suffix := 1; suffix < uniqueNameSuffixLimit; suffix++ {
		candidate := base + "_fbx"
		if suffix > 1 {
			candidate = fmt.Sprintf("%s_fbx_%d", base, suffix)
		}
		if _, ok := existing[candidate]; !ok {
			return candidate
		}
	}
	return fmt.Sprintf("%s_%d", base, nowFunc().UnixMilli())
}

// MergeAnimation はスケルトンを複製し、既存アニメーションを変更せずに生成アニメーションを追加する。
func MergeAnimation(skeleton *model.Skeleton, name string, animation *model.Animation) *MergeResult {
	merged := skeleton.Clone()
	if merged == nil {
		merged = &model.Skeleton{}
	}
	if merged.Animations == nil {
		merged.Animations = map[string]*model.Animation{}
	}
	resolved := resolveAnimationNameCollision(name, merged.Animations)
	merged.Animations[resolved] = animation
	return &MergeResult{Skeleton: merged, AnimationName: resolved}
}

// DeriveAnimationName は明示指定名、無ければファイル名の stem から FBX_ 付きのアニメーション名を作る。
func DeriveAnimationName(filename, override string) string {
	trimmed := strings.TrimSpace(override)
	if trimmed != "" {
		if strings.HasPrefix(strings.ToUpper(trimmed), "FBX_") {
			return trimmed
		}
		return "FBX_" + trimmed
	}

	source := filename
	if index := strings.LastIndexAny(source, `/\`); index >= 0 {
		source = source[index+1:]
	}
	stem := source
	if index := strings.LastIndex(stem, "."); index >= 0 && index < len(stem)-1 {
		stem = stem[:index]
	}
	normalized := animationStemInvalidChars.ReplaceAllString(stem, "_")
	normalized = underscoreRunPattern.ReplaceAllString(normalized, "_")
	normalized = strings.Trim(normalized, "_")
	if normalized == "" {
		normalized = "animation"
	}
	return "FBX_" + normalized
}
