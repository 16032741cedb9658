// 指示: miu200521358
package io_common

import (
	"errors"
	"os"
	"testing"
)

func TestIoErrorIsMatchesKind(t *testing.T) {
	err := NewIoParseFailed("node index が不正です: %d", nil, 3)
	if !errors.Is(err, ErrIoParseFailed) {
		t.Fatalf("parse failed should match: %v", err)
	}
	if errors.Is(err, ErrIoFileNotFound) {
		t.Fatalf("different kind should not match: %v", err)
	}
	if got, want := err.Error(), "ParseFailed: node index が不正です: 3"; got != want {
		t.Fatalf("message mismatch: got=%s want=%s", got, want)
	}
}

func TestIoErrorUnwrapsCause(t *testing.T) {
	err := NewIoFileNotFound("missing.glb", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause should be unwrapped: %v", err)
	}
	var ioErr *IoError
	if !errors.As(err, &ioErr) || ioErr.Kind != IO_ERROR_KIND_FILE_NOT_FOUND {
		t.Fatalf("kind mismatch: %v", err)
	}
}
