// 指示: miu200521358
package model

import (
	"github.com/goccy/go-json"
)

// RotateKey は回転キーフレーム。
type RotateKey struct {
	Time  float64 `json:"time"`
	Angle float64 `json:"angle"`
}

// TranslateKey は移動キーフレーム。
type TranslateKey struct {
	Time float64 `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// BoneTimeline は1ボーン分の生成タイムライン。
type BoneTimeline struct {
	Rotate    []RotateKey    `json:"rotate,omitempty"`
	Translate []TranslateKey `json:"translate,omitempty"`
}

// GeneratedAnimation は生成アニメーションを表す。
type GeneratedAnimation struct {
	Bones map[string]*BoneTimeline `json:"bones"`
}

// ToAnimation はスケルトンへ格納する形式へ変換する。
func (g *GeneratedAnimation) ToAnimation() (*Animation, error) {
	animation := &Animation{Bones: make(map[string]json.RawMessage, len(g.Bones))}
	for boneName, timeline := range g.Bones {
		encoded, err := json.Marshal(timeline)
		if err != nil {
			return nil, err
		}
		animation.Bones[boneName] = encoded
	}
	return animation, nil
}
