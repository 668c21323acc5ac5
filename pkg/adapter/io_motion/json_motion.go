// 指示: miu200521358
package io_motion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// loadMotionJSON はデコード済みモーションJSONを読み込む。関節トラックの記述順を保持する。
func loadMotionJSON(path string, fps float64) (*model.DecodedMotion, error) {
	data, err := io_common.ReadTextFile(path)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		JointTracks json.RawMessage `json:"jointTracks"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, io_common.NewIoParseFailed("モーションJSONの解析に失敗しました: %s", err, path)
	}
	motion := &model.DecodedMotion{}
	if err := json.Unmarshal(data, motion); err != nil {
		return nil, io_common.NewIoParseFailed("モーションJSONの解析に失敗しました: %s", err, path)
	}
	if len(envelope.JointTracks) > 0 {
		order, err := orderedObjectKeys(envelope.JointTracks)
		if err != nil {
			return nil, io_common.NewIoParseFailed("jointTracks の解析に失敗しました: %s", err, path)
		}
		motion.TrackOrder = order
	}

	for name, track := range motion.JointTracks {
		if track == nil {
			delete(motion.JointTracks, name)
			continue
		}
		if track.Name == "" {
			track.Name = name
		}
	}
	if motion.SourceFile == "" {
		motion.SourceFile = filepath.Base(path)
	}
	if motion.ClipName == "" {
		motion.ClipName = stemOf(path)
	}
	if motion.Fps <= 0 {
		motion.Fps = fps
	}
	if motion.Duration <= 0 && len(motion.FrameTimes) > 0 {
		motion.Duration = motion.FrameTimes[len(motion.FrameTimes)-1]
	}
	return motion, nil
}

// orderedObjectKeys は JSON オブジェクト直下のキーを記述順で返す。
func orderedObjectKeys(raw []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("オブジェクトではありません")
	}

	keys := make([]string, 0)
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("オブジェクトが閉じていません")
			}
			return nil, err
		}
		if delim, ok := token.(json.Delim); ok && delim == '}' {
			return keys, nil
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("キーが文字列ではありません")
		}
		keys = append(keys, key)
		if err := skipValue(decoder); err != nil {
			return nil, err
		}
	}
}

// skipValue は次の値をトークン単位で読み飛ばす。
func skipValue(decoder *json.Decoder) error {
	depth := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		if delim, ok := token.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}
