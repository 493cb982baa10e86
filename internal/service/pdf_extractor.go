package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/uniooo/pdf-calendar/pkg/errors"
)

// TextExtractor 将上传的文档字节转换为纯文本
type TextExtractor interface {
	// ExtractText 返回按页顺序以换行拼接的全文；无法解析时返回 *errors.ExtractionError
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PDFTextExtractor 基于 ledongthuc/pdf 的文本提取器
//
// 每页按基线还原文本行；无文字的页贡献空字符串（保留页序）。
type PDFTextExtractor struct {
	// WordGap 同一行两段文字的水平间距超过 字号×WordGap 时插入空格
	WordGap float64
}

// NewPDFTextExtractor 创建 PDF 文本提取器
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{WordGap: 0.25}
}

// ExtractText 提取 PDF 全文
func (e *PDFTextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// ledongthuc/pdf 遇到损坏的对象流可能 panic
	defer func() {
		if r := recover(); r != nil {
			text, err = "", apperrors.NewExtractionError("", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewExtractionError("", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pages = append(pages, e.pageText(page))
	}

	return strings.Join(pages, "\n"), nil
}

// textRow 同一基线上的文字片段
type textRow struct {
	y     float64
	items []pdf.Text
}

// pageText 按坐标还原页面文字：按基线分行（自上而下），行内按 X 排序
//
// 不使用 GetTextByRow：以 Td 定位的文字在其中坐标全为 0，整页会被并成一行。
func (e *PDFTextExtractor) pageText(page pdf.Page) string {
	if page.V.Key("Contents").IsNull() {
		return ""
	}

	var rows []*textRow
	for _, t := range page.Content().Text {
		row := findRow(rows, t)
		if row == nil {
			row = &textRow{y: t.Y}
			rows = append(rows, row)
		}
		row.items = append(row.items, t)
	}

	// PDF 坐标原点在左下角
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		// 未声明字宽的字体中同一次 Tj 的字符 X 相同，稳定排序保留原顺序
		sort.SliceStable(row.items, func(i, j int) bool { return row.items[i].X < row.items[j].X })

		var b strings.Builder
		for i, t := range row.items {
			if i > 0 && e.isWordGap(row.items[i-1], t) {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// findRow 查找与 t 基线相同的行（容差为半个字号）
func findRow(rows []*textRow, t pdf.Text) *textRow {
	tolerance := t.FontSize / 2
	if tolerance < 1 {
		tolerance = 1
	}
	for _, row := range rows {
		if math.Abs(row.y-t.Y) <= tolerance {
			return row
		}
	}
	return nil
}

// isWordGap 后一片段起点距前一片段终点超过 字号×WordGap 时视为词间隔
//
// 字宽缺失（W=0）时前一片段终点即其 X。
func (e *PDFTextExtractor) isWordGap(prev, next pdf.Text) bool {
	if prev.S == " " || next.S == " " {
		return false
	}
	size := next.FontSize
	if size <= 0 {
		size = prev.FontSize
	}
	return next.X-(prev.X+prev.W) > size*e.WordGap
}
