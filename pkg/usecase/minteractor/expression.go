// 指示: miu200521358
package minteractor

import (
	"sort"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"gopkg.in/Knetic/govaluate.v3"
)

// keyExpressionInput は補正式へ渡す変数。
type keyExpressionInput struct {
	value     float64
	delta     float64
	source    float64
	reference float64
	time      float64
	frame     int
}

// keyExpression はキー値を後処理するコンパイル済みの補正式。
type keyExpression struct {
	key        string
	source     string
	expression *govaluate.EvaluableExpression
}

// compileKeyExpressions はプロファイル内の補正式を全てコンパイルする。
func compileKeyExpressions(profile *model.RetargetProfile) (map[string]*keyExpression, error) {
	compiled := map[string]*keyExpression{}
	if profile == nil {
		return compiled, nil
	}
	keys := make([]string, 0, len(profile.JointAdjustments))
	for key := range profile.JointAdjustments {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		source := strings.TrimSpace(profile.JointAdjustments[key].Expression)
		if source == "" {
			continue
		}
		expression, err := govaluate.NewEvaluableExpression(source)
		if err != nil {
			return nil, merrors.NewInputError("jointAdjustments[%s] の式が不正です: %s (%v)", key, source, err)
		}
		compiled[key] = &keyExpression{key: key, source: source, expression: expression}
	}
	return compiled, nil
}

// lookupKeyExpression は関節名、次にボーン名で補正式を引く。Adjustment と同じ優先順。
func lookupKeyExpression(compiled map[string]*keyExpression, profile *model.RetargetProfile, joint, bone string) *keyExpression {
	if profile == nil {
		return nil
	}
	if _, ok := profile.JointAdjustments[joint]; ok {
		return compiled[joint]
	}
	if _, ok := profile.JointAdjustments[bone]; ok {
		return compiled[bone]
	}
	return nil
}

// evaluate は補正式を評価する。結果が有限の数値でなければ入力エラー。
func (e *keyExpression) evaluate(input keyExpressionInput) (float64, error) {
	result, err := e.expression.Evaluate(map[string]interface{}{
		"value":     input.value,
		"delta":     input.delta,
		"source":    input.source,
		"reference": input.reference,
		"time":      input.time,
		"frame":     float64(input.frame),
	})
	if err != nil {
		return 0, merrors.NewInputError("jointAdjustments[%s] の式を評価できません: %s (%v)", e.key, e.source, err)
	}
	value, ok := result.(float64)
	if !ok || !mmath.IsFinite(value) {
		return 0, merrors.NewInputError("jointAdjustments[%s] の式の結果が数値ではありません: %s", e.key, e.source)
	}
	return value, nil
}
