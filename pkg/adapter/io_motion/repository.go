// 指示: miu200521358
package io_motion

import (
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

const defaultFps = 30.0

// MotionRepository はデコード済みモーションJSONと glTF/GLB アニメーションの読み込みを表す。
type MotionRepository struct{}

// NewMotionRepository はMotionRepositoryを生成する。
func NewMotionRepository() *MotionRepository {
	return &MotionRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MotionRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".gltf", ".glb":
		return true
	default:
		return false
	}
}

// Load はモーションを読み込む。glTF/GLB は fps でサンプリングする。
func (r *MotionRepository) Load(path string, fps float64) (*model.DecodedMotion, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	if fps < 1 {
		fps = defaultFps
	}
	logging.DefaultLogger().Info("モーション読込開始: file=%s", filepath.Base(path))

	var (
		motion *model.DecodedMotion
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		motion, err = loadMotionJSON(path, fps)
	default:
		motion, err = loadMotionGltf(path, fps)
	}
	if err != nil {
		return nil, err
	}

	logging.DefaultLogger().Info(
		"モーション読込完了: file=%s clip=%s frames=%d joints=%d",
		filepath.Base(path), motion.ClipName, motion.FrameCount(), len(motion.JointTracks),
	)
	return motion, nil
}

// stemOf は拡張子を除いたファイル名を返す。
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
