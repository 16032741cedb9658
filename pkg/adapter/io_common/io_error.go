// 指示: miu200521358
// Package io_common はファイル入出力アダプタ共通のエラー型を提供する。
package io_common

import (
	"errors"
	"fmt"
)

// IoErrorKind は入出力エラーの種別を表す。
type IoErrorKind int

const (
	// IO_ERROR_KIND_FILE_NOT_FOUND はファイルが存在しない。
	IO_ERROR_KIND_FILE_NOT_FOUND IoErrorKind = iota + 1
	// IO_ERROR_KIND_PARSE_FAILED は解析に失敗した。
	IO_ERROR_KIND_PARSE_FAILED
	// IO_ERROR_KIND_EXT_INVALID は拡張子が対象外。
	IO_ERROR_KIND_EXT_INVALID
	// IO_ERROR_KIND_FORMAT_NOT_SUPPORTED は形式・版が未対応。
	IO_ERROR_KIND_FORMAT_NOT_SUPPORTED
	// IO_ERROR_KIND_SAVE_FAILED は保存に失敗した。
	IO_ERROR_KIND_SAVE_FAILED
)

// String は種別名を返す。
func (k IoErrorKind) String() string {
	switch k {
	case IO_ERROR_KIND_FILE_NOT_FOUND:
		return "FileNotFound"
	case IO_ERROR_KIND_PARSE_FAILED:
		return "ParseFailed"
	case IO_ERROR_KIND_EXT_INVALID:
		return "ExtInvalid"
	case IO_ERROR_KIND_FORMAT_NOT_SUPPORTED:
		return "FormatNotSupported"
	case IO_ERROR_KIND_SAVE_FAILED:
		return "SaveFailed"
	default:
		return "Unknown"
	}
}

var (
	// ErrIoFileNotFound は errors.Is 判定用のファイル未検出エラー。
	ErrIoFileNotFound = &IoError{Kind: IO_ERROR_KIND_FILE_NOT_FOUND}
	// ErrIoParseFailed は errors.Is 判定用の解析失敗エラー。
	ErrIoParseFailed = &IoError{Kind: IO_ERROR_KIND_PARSE_FAILED}
	// ErrIoExtInvalid は errors.Is 判定用の拡張子不正エラー。
	ErrIoExtInvalid = &IoError{Kind: IO_ERROR_KIND_EXT_INVALID}
	// ErrIoFormatNotSupported は errors.Is 判定用の未対応形式エラー。
	ErrIoFormatNotSupported = &IoError{Kind: IO_ERROR_KIND_FORMAT_NOT_SUPPORTED}
	// ErrIoSaveFailed は errors.Is 判定用の保存失敗エラー。
	ErrIoSaveFailed = &IoError{Kind: IO_ERROR_KIND_SAVE_FAILED}
)

// IoError は種別と原因を持つ入出力エラー。
type IoError struct {
	Kind    IoErrorKind
	Message string
	Cause   error
}

// Error はエラーメッセージを返す。
func (e *IoError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

// Unwrap は原因エラーを返す。
func (e *IoError) Unwrap() error {
	return e.Cause
}

// Is は同じ種別の IoError と一致する。
func (e *IoError) Is(target error) bool {
	var other *IoError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, err error) error {
	return &IoError{Kind: IO_ERROR_KIND_FILE_NOT_FOUND, Message: fmt.Sprintf("ファイルが見つかりません: %s", path), Cause: err}
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, err error, params ...any) error {
	return &IoError{Kind: IO_ERROR_KIND_PARSE_FAILED, Message: fmt.Sprintf(format, params...), Cause: err}
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, err error) error {
	return &IoError{Kind: IO_ERROR_KIND_EXT_INVALID, Message: fmt.Sprintf("対応していない拡張子です: %s", path), Cause: err}
}

// NewIoFormatNotSupported は未対応形式エラーを生成する。
func NewIoFormatNotSupported(format string, err error, params ...any) error {
	return &IoError{Kind: IO_ERROR_KIND_FORMAT_NOT_SUPPORTED, Message: fmt.Sprintf(format, params...), Cause: err}
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, err error, params ...any) error {
	return &IoError{Kind: IO_ERROR_KIND_SAVE_FAILED, Message: fmt.Sprintf(format, params...), Cause: err}
}
