// 指示: miu200521358
// Package merrors は変換処理のエラー種別を提供する。
package merrors

import (
	"errors"
	"fmt"
)

// Kind はエラー種別を表す。
type Kind string

const (
	// KindUnknown は分類できないエラー。
	KindUnknown Kind = "unknown"
	// KindInput は呼び出し側入力の不備による中断。
	KindInput Kind = "input"
	// KindInvariant は事後条件違反。ポリシーに関係なく常に致命的。
	KindInvariant Kind = "invariant"
	// KindIo はファイル入出力・解析の失敗。
	KindIo Kind = "io"
)

// ConvertError は種別付きのエラーを表す。
type ConvertError struct {
	kind    Kind
	message string
	cause   error
}

// Error はエラーメッセージを返す。
func (e *ConvertError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.cause)
}

// Unwrap は原因エラーを返す。
func (e *ConvertError) Unwrap() error {
	return e.cause
}

// Kind はエラー種別を返す。
func (e *ConvertError) Kind() Kind {
	return e.kind
}

// newError は種別付きエラーを生成する。
func newError(kind Kind, format string, cause error, params ...any) *ConvertError {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return &ConvertError{kind: kind, message: message, cause: cause}
}

// NewInputError は入力不備エラーを生成する。
func NewInputError(format string, params ...any) error {
	return newError(KindInput, format, nil, params...)
}

// NewInvariantError は事後条件違反エラーを生成する。
func NewInvariantError(format string, params ...any) error {
	return newError(KindInvariant, format, nil, params...)
}

// NewIoError は入出力エラーを生成する。
func NewIoError(format string, cause error, params ...any) error {
	return newError(KindIo, format, cause, params...)
}

// Classify はエラー種別を判定する。
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var convertErr *ConvertError
	if errors.As(err, &convertErr) {
		return convertErr.kind
	}
	return KindUnknown
}

// IsInputError は入力不備エラーか判定する。
func IsInputError(err error) bool {
	return Classify(err) == KindInput
}

// IsInvariantError は事後条件違反エラーか判定する。
func IsInvariantError(err error) bool {
	return Classify(err) == KindInvariant
}

// IsIoError は入出力エラーか判定する。
func IsIoError(err error) bool {
	return Classify(err) == KindIo
}
