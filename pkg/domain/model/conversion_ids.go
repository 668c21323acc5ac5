// 指示: miu200521358
package model

const (
	// SkeletonModeSpineFirst は既存ボーンを残して不足分を追加するモード。
	SkeletonModeSpineFirst = "spine-first"
	// SkeletonModeFbxFirst はルート以外を作り直すモード。
	SkeletonModeFbxFirst = "fbx-first"
	// SkeletonModeDisabled は変換無効時のレポート値。
	SkeletonModeDisabled = "disabled"

	// SkeletonScopeFullHierarchy はソース階層全体を対象にする。
	SkeletonScopeFullHierarchy = "full-hierarchy"

	// MismatchPolicyAutoAddBones は未解決参照にボーンを追加する。
	MismatchPolicyAutoAddBones = "auto-add-bones"
	// MismatchPolicySkipMissing は未解決参照を警告して除外する。
	MismatchPolicySkipMissing = "skip-missing"
	// MismatchPolicyStrictFail は未解決参照でエラーにする。
	MismatchPolicyStrictFail = "strict-fail"

	// RootMotionInPlace はルート移動を出力しない。
	RootMotionInPlace = "in_place"
	// RootMotionNone はルート移動を出力しない。
	RootMotionNone = "none"

	// BatchStatusOK は成功したバッチ項目。
	BatchStatusOK = "ok"
	// BatchStatusFailed は失敗したバッチ項目。
	BatchStatusFailed = "failed"

	// DefaultAnimationName は生成アニメーション名の既定値。
	DefaultAnimationName = "fbx_animation"
	// RootBoneName は合成ルートボーン名。
	RootBoneName = "root"
)

// SkeletonModes は有効なスケルトン変換モード。
var SkeletonModes = []string{SkeletonModeSpineFirst, SkeletonModeFbxFirst}

// SkeletonScopes は有効な変換範囲。
var SkeletonScopes = []string{SkeletonScopeFullHierarchy}

// MismatchPolicies は有効な不一致ポリシー。
var MismatchPolicies = []string{MismatchPolicyAutoAddBones, MismatchPolicySkipMissing, MismatchPolicyStrictFail}

// IsRootMotionStatic はルート移動を出力しない指定か判定する。
func IsRootMotionStatic(rootMotion string) bool {
	return rootMotion == RootMotionInPlace || rootMotion == RootMotionNone
}
