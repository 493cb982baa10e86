// pdfweek 在终端中解析本地 PDF 课表并打印周视图
//
//	pdfweek [-week N | -date YYYY-MM-DD] [-semester-start YYYY-MM-DD] [-student 姓名]... a.pdf b.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/dto"
	"github.com/uniooo/pdf-calendar/internal/repository"
	"github.com/uniooo/pdf-calendar/internal/service"
	applogger "github.com/uniooo/pdf-calendar/pkg/logger"
)

// stringList 可重复的字符串参数
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type options struct {
	configPath    string
	week          int
	date          string
	semesterStart string
	students      stringList
	excelOut      string
	icsOut        string
	files         []string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("pdfweek", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "配置文件路径")
	fs.IntVar(&opts.week, "week", 0, "手动指定周次（≥1）；缺省时按日期推算")
	fs.StringVar(&opts.date, "date", "", "用于推算周次的日期 YYYY-MM-DD（默认今天）")
	fs.StringVar(&opts.semesterStart, "semester-start", "", "学期起始日期 YYYY-MM-DD")
	fs.Var(&opts.students, "student", "只显示指定学生，可重复")
	fs.StringVar(&opts.excelOut, "excel", "", "同时导出周视图 Excel 到该路径")
	fs.StringVar(&opts.icsOut, "ics", "", "同时导出 iCalendar 到该路径")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "用法: pdfweek [选项] 文件.pdf...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.week < 0 {
		return nil, fmt.Errorf("-week 必须不小于 1")
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("至少需要一个 PDF 文件")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(2)
	}
	// 终端模式只输出警告以上的日志
	cfg.Log = config.LogConfig{Level: "warn", Format: "console"}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(2)
	}

	// os.Exit 不执行 defer，需在退出前显式刷新日志
	code := run(context.Background(), cfg, opts, logger)
	_ = logger.Sync()
	os.Exit(code)
}

// run 返回进程退出码：没有解析出任何课程时为 1
func run(ctx context.Context, cfg *config.Config, opts *options, logger *zap.Logger) int {
	files := make([]service.UploadedFile, 0, len(opts.files))
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "读取文件失败: %v\n", err)
			return 2
		}
		files = append(files, service.UploadedFile{Filename: filepath.Base(path), Data: data})
	}

	repo := repository.NewRepository(repository.NewMemoryBatchRepo(), nil)
	svc := service.NewAggregateService(cfg, repo, service.NewPDFTextExtractor(), logger)

	batch, err := svc.ImportBatch(ctx, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "解析失败: %v\n", err)
		return 2
	}
	fmt.Println(renderOutcomes(batch))

	if batch.EntryCount == 0 {
		fmt.Fprintln(os.Stderr, noticeText(batch.Notice))
		return 1
	}

	query := &dto.WeekQuery{
		Week:          opts.week,
		Date:          opts.date,
		SemesterStart: opts.semesterStart,
	}
	if len(opts.students) > 0 {
		query.Students = opts.students
	}

	view, err := svc.WeekView(ctx, batch.BatchID, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成周视图失败: %v\n", err)
		return 2
	}
	fmt.Println(renderWeek(view))

	if opts.excelOut != "" {
		data, _, err := svc.ExportWeekExcel(ctx, batch.BatchID, query)
		if err == nil {
			err = os.WriteFile(opts.excelOut, data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "导出 Excel 失败: %v\n", err)
			return 2
		}
	}
	if opts.icsOut != "" {
		data, _, err := svc.ExportICS(ctx, batch.BatchID, query)
		if err == nil {
			err = os.WriteFile(opts.icsOut, data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "导出 iCalendar 失败: %v\n", err)
			return 2
		}
	}

	return 0
}
