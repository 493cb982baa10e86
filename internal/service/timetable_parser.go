package service

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uniooo/pdf-calendar/internal/model"
)

// ── 课表文本解析器 ──────────────────────────────────────────
//
// 职责：把 PDF 提取出的线性文本解析为 CourseEntry 列表。
//
// 流程：
//   - DetectStudentName 按优先级匹配"学生:"/"姓名:"/"Student:"标签
//   - CandidateLines 选出同时包含周次、星期、时间段三种标记的行
//   - ParseCourseEntry 提取三种标记，剩余文本拆分为课程名与地点
//
// 所有函数均为纯函数：无法解析时返回 ok=false，不返回错误。
// ─────────────────────────────────────────────────────────────

// DefaultPlaceholder 未能提取课程名时使用的占位名称
const DefaultPlaceholder = "课程"

// sp 空白字符（含全角空格等 Unicode 空白）
const sp = `[\s\v\p{Z}]`

var (
	weekPattern = regexp.MustCompile(`第` + sp + `*(\p{Nd}+)(?:` + sp + `*[-~至到]` + sp + `*(\p{Nd}+))?` + sp + `*周`)
	dayPattern  = regexp.MustCompile(`周[一二三四五六日天]|星期[一二三四五六日天]`)
	timePattern = regexp.MustCompile(`(\p{Nd}{1,2}:\p{Nd}{2})` + sp + `*[-–~至到]` + sp + `*(\p{Nd}{1,2}:\p{Nd}{2})`)

	whitespaceRun   = regexp.MustCompile(sp + `+`)
	locationPattern = regexp.MustCompile(`\p{Nd}|教室|楼`)
)

// namePatterns 按优先级排列，先命中者生效
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`学生[:：]` + sp + `*([^\s\v\p{Z}]+)`),
	regexp.MustCompile(`姓名[:：]` + sp + `*([^\s\v\p{Z}]+)`),
	regexp.MustCompile(`Student[:：]?` + sp + `*([A-Za-z\s\v\p{Z}]+)`),
}

// weekdayIndex 星期字面量 → 0-6（周一=0）。新增写法只需在此表中追加。
var weekdayIndex = map[string]int{
	"周一": 0, "星期一": 0,
	"周二": 1, "星期二": 1,
	"周三": 2, "星期三": 2,
	"周四": 3, "星期四": 3,
	"周五": 4, "星期五": 4,
	"周六": 5, "星期六": 5,
	"周日": 6, "星期日": 6,
	"周天": 6, "星期天": 6,
}

// WeekdayIndex 查询星期字面量对应的下标
func WeekdayIndex(label string) (int, bool) {
	idx, ok := weekdayIndex[label]
	return idx, ok
}

// DetectStudentName 从全文中识别学生姓名，未识别时返回 fallback
func DetectStudentName(text, fallback string) string {
	for _, p := range namePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// "Student:" 后仅有空白时视为未命中，继续尝试下一个模式
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return fallback
}

// CandidateLines 按原文顺序产出 (原始行, 去空白行) 对
//
// 序列持有 text 本身，可重复遍历。
func CandidateLines(text string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, raw := range splitLines(text) {
			line := strings.TrimSpace(raw)
			if line == "" || !IsCandidateLine(line) {
				continue
			}
			if !yield(raw, line) {
				return
			}
		}
	}
}

// IsCandidateLine 行内是否同时含有周次、星期、时间段标记
func IsCandidateLine(line string) bool {
	return weekPattern.MatchString(line) &&
		dayPattern.MatchString(line) &&
		timePattern.MatchString(line)
}

// LineParser 将候选行转换为 CourseEntry
type LineParser struct {
	// Placeholder 课程名为空时的占位名称
	Placeholder string
}

// NewLineParser 创建 LineParser，placeholder 为空时使用 DefaultPlaceholder
func NewLineParser(placeholder string) LineParser {
	if strings.TrimSpace(placeholder) == "" {
		placeholder = DefaultPlaceholder
	}
	return LineParser{Placeholder: placeholder}
}

// ParseCourseEntry 解析单行课表文本
//
// 三种标记任一缺失、星期无法映射或周次不合法时返回 ok=false，调用方跳过该行。
func (p LineParser) ParseCourseEntry(line, student string) (model.CourseEntry, bool) {
	week := weekPattern.FindStringSubmatch(line)
	day := dayPattern.FindString(line)
	tm := timePattern.FindStringSubmatch(line)
	if week == nil || day == "" || tm == nil {
		return model.CourseEntry{}, false
	}

	weekStart, weekEnd, ok := parseWeekRange(week[1], week[2])
	if !ok {
		return model.CourseEntry{}, false
	}

	weekday, ok := WeekdayIndex(day)
	if !ok {
		return model.CourseEntry{}, false
	}

	timeRange := normalizeClock(tm[1]) + "-" + normalizeClock(tm[2])

	courseName, location := p.splitResidue(residue(line, week[0], day, tm[0]))

	return model.CourseEntry{
		Student:    student,
		CourseName: courseName,
		Location:   location,
		Weekday:    weekday,
		TimeRange:  timeRange,
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,
	}, true
}

// ParseText 解析整份文本：识别姓名并提取全部课程
func (p LineParser) ParseText(text, fallback string) (string, []model.CourseEntry) {
	student := DetectStudentName(text, fallback)

	var entries []model.CourseEntry
	for _, line := range CandidateLines(text) {
		if entry, ok := p.ParseCourseEntry(line, student); ok {
			entries = append(entries, entry)
		}
	}
	return student, entries
}

// splitResidue 最后一个含数字或"教室"/"楼"的词视为地点，其余为课程名
//
// 无法区分以数字结尾的课程名与真正的地点，这是已接受的启发式取舍。
func (p LineParser) splitResidue(rest string) (courseName, location string) {
	if rest == "" {
		return p.Placeholder, ""
	}

	tokens := strings.Split(rest, " ")
	last := tokens[len(tokens)-1]
	if len(tokens) > 1 && locationPattern.MatchString(last) {
		courseName = strings.Join(tokens[:len(tokens)-1], " ")
		location = last
	} else {
		courseName = rest
	}

	if courseName == "" {
		courseName = p.Placeholder
	}
	return courseName, location
}

// residue 依次去掉周次、星期、时间段标记（所有出现处），再压缩空白
func residue(line string, segments ...string) string {
	rest := line
	for _, seg := range segments {
		rest = strings.ReplaceAll(rest, seg, " ")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(rest, " "))
}

// parseWeekRange 周次必须从 1 开始且起始不大于结束
func parseWeekRange(startStr, endStr string) (int, int, bool) {
	start, err := strconv.Atoi(asciiDigits(startStr))
	if err != nil {
		return 0, 0, false
	}
	end := start
	if endStr != "" {
		if end, err = strconv.Atoi(asciiDigits(endStr)); err != nil {
			return 0, 0, false
		}
	}
	if start < 1 || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// normalizeClock "8:05" → "08:05"，全角等数字统一为 ASCII
func normalizeClock(clock string) string {
	clock = asciiDigits(clock)
	if strings.IndexByte(clock, ':') == 1 {
		return "0" + clock
	}
	return clock
}

// asciiDigits 将任意十进制数字（Nd，如全角 "３"）替换为对应的 ASCII 数字
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf || !unicode.IsDigit(r) {
			return r
		}
		if v, ok := digitValue(r); ok {
			return '0' + rune(v)
		}
		return r
	}, s)
}

// digitValue 查 unicode.Nd 表：每段连续区间都由若干组完整的 0-9 组成
func digitValue(r rune) (int, bool) {
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); rg.Stride == 1 && lo <= r && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); rg.Stride == 1 && lo <= r && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}

// splitLines 按换行边界切分，识别 \n、\r\n、\r 以及 \v、\f、U+2028/2029 等行分隔符
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				size = 2
			}
			start = i + size
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			lines = append(lines, text[start:i])
			start = i + size
		}
		i += size
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
