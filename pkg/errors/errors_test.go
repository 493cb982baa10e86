package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestExtractionError(t *testing.T) {
	err := NewExtractionError("张三.pdf", io.ErrUnexpectedEOF)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ExtractionError 应可 Unwrap 到底层错误")
	}
	if !strings.Contains(err.Error(), "张三.pdf") {
		t.Errorf("错误信息应包含文件名: %s", err.Error())
	}

	wrapped := fmt.Errorf("处理上传: %w", err)
	if !IsExtractionError(wrapped) {
		t.Error("包装后仍应识别为 ExtractionError")
	}
	if IsExtractionError(io.EOF) {
		t.Error("普通错误不应识别为 ExtractionError")
	}
}

func TestExtractionError_NoFilename(t *testing.T) {
	err := NewExtractionError("", io.EOF)
	if strings.Contains(err.Error(), "()") {
		t.Errorf("无文件名时不应出现空括号: %s", err.Error())
	}
}
