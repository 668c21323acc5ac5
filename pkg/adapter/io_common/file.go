// 指示: miu200521358
package io_common

import (
	"bytes"
	"io"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const outputFileMode = 0o644

// ReadTextFile はテキストファイルを読み込む。先頭のBOMはUTF-8/UTF-16とも取り除く。
func ReadTextFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewIoFileNotFound(path, err)
		}
		return nil, NewIoParseFailed("ファイルの読み取りに失敗しました: %s", err, path)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), decoder))
	if err != nil {
		return nil, NewIoParseFailed("ファイルの文字コード変換に失敗しました: %s", err, path)
	}
	return decoded, nil
}

// WriteJSONFile は値を2スペースインデントのJSONで保存する。
func WriteJSONFile(path string, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return NewIoSaveFailed("JSONの生成に失敗しました: %s", err, path)
	}
	encoded = append(encoded, '\n')
	if err := os.WriteFile(path, encoded, outputFileMode); err != nil {
		return NewIoSaveFailed("ファイルの保存に失敗しました: %s", err, path)
	}
	return nil
}
