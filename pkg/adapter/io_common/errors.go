// 指示: miu200521358
package io_common

import "github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"

// NewIoExtInvalid は未対応拡張子のエラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return merrors.NewIoError("未対応の拡張子です: %s", cause, path)
}

// NewIoFileNotFound はファイル未検出のエラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return merrors.NewIoError("ファイルが見つかりません: %s", cause, path)
}

// NewIoParseFailed は解析失敗のエラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return merrors.NewIoError(format, cause, params...)
}

// NewIoSaveFailed は保存失敗のエラーを生成する。
func NewIoSaveFailed(format string, cause error, params ...any) error {
	return merrors.NewIoError(format, cause, params...)
}
