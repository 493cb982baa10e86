package model

import "time"

// FileOutcome 单个上传文件的解析结果
type FileOutcome struct {
	Filename   string `json:"filename"`
	Student    string `json:"student,omitempty"` // 失败时为空
	Status     string `json:"status"`            // parsed | empty | failed
	EntryCount int    `json:"entry_count"`
	Error      string `json:"error,omitempty"`
}

// Batch 一次上传批次的聚合结果
//
// 新的上传生成新的批次，旧批次到期后由存储淘汰。
type Batch struct {
	BatchID   string        `json:"batch_id"`
	CreatedAt time.Time     `json:"created_at"`
	Files     []FileOutcome `json:"files"`
	Entries   []CourseEntry `json:"entries"`
	Students  []string      `json:"students"` // 去重并排序
}
