package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// studentsQuery 读取重复的 students 查询参数
//
// 未携带该参数时返回 nil（全部学生）；携带但全为空值时返回空切片（未选择）。
func studentsQuery(c *gin.Context) []string {
	values, ok := c.GetQueryArray("students")
	if !ok {
		return nil
	}
	students := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			students = append(students, v)
		}
	}
	return students
}

// writeAttachment 以附件形式返回文件内容，文件名按 RFC 5987 编码
func writeAttachment(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
