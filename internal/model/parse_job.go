package model

// 单个文件的解析结果状态
const (
	ParseStatusParsed = "parsed" // 解析出至少一条课程
	ParseStatusEmpty  = "empty"  // 文档可读但没有候选课程行
	ParseStatusFailed = "failed" // 无法作为 PDF 打开
)

// ParseJob 解析任务审计表 — 对应 parse_jobs
//
// 只记录文件级结果，不保存课程数据本身。
type ParseJob struct {
	ParseJobID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"parse_job_id"`
	BatchID      string `gorm:"type:uuid;not null;index"                       json:"batch_id"`
	Filename     string `gorm:"type:varchar(255);not null"                     json:"filename"`
	Student      string `gorm:"type:varchar(100)"                              json:"student"`
	Status       string `gorm:"type:varchar(10);not null"                      json:"status"`
	EntryCount   int    `gorm:"not null;default:0"                             json:"entry_count"`
	ErrorMessage string `gorm:"type:text"                                      json:"error_message,omitempty"`
	DurationMS   int64  `gorm:"not null;default:0"                             json:"duration_ms"`
	BaseModel
}

// TableName 指定表名
func (ParseJob) TableName() string { return "parse_jobs" }
