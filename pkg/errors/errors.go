package errors

import (
	"errors"
	"fmt"
)

// ErrUnmappedWeekday 星期字面量不在映射表中（分类阶段已过滤，正常不可达）
var ErrUnmappedWeekday = errors.New("无法识别的星期标记")

// ExtractionError 上传内容无法作为 PDF 文档打开或解析
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("PDF 文本提取失败: %v", e.Err)
	}
	return fmt.Sprintf("PDF 文本提取失败 (%s): %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError 包装提取阶段的底层错误
func NewExtractionError(filename string, err error) *ExtractionError {
	return &ExtractionError{Filename: filename, Err: err}
}

// IsExtractionError 判断错误链中是否包含 ExtractionError
func IsExtractionError(err error) bool {
	var target *ExtractionError
	return errors.As(err, &target)
}
