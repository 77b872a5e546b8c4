package dto

import (
	"time"

	pkgerrors "student-records/pkg/errors"
)

// ── 表格同步 DTO ──

// PushResult 推送结果。推送失败不会以 error 返回，而是 Synced=false 并携带 Err。
type PushResult struct {
	Synced bool      `json:"synced"`
	Rows   int       `json:"rows"` // 写入的数据行数（不含表头）
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`

	Err *pkgerrors.SyncError `json:"-"`
}

// PullRowError 单行拉取失败详情，Row 为表格中的行号（表头为第 1 行）
type PullRowError struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id,omitempty"`
	Reason    string `json:"reason"`
}

// PullReport 拉取（或文件导入）结果汇总。
// Synced=false 表示整表读取失败，此时计数均为 0；单行失败只记入 Errors。
type PullReport struct {
	Synced    bool           `json:"synced"`
	Error     string         `json:"error,omitempty"`
	At        time.Time      `json:"at"`
	Total     int            `json:"total"` // 参与处理的数据行（不含表头与空行）
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Skipped   int            `json:"skipped"` // 空行
	Failed    int            `json:"failed"`
	Errors    []PullRowError `json:"errors,omitempty"`

	Err *pkgerrors.SyncError `json:"-"`
}

// SyncStatusResponse 最近一次推送 / 拉取结果，从未执行或未启用 Redis 时为 null
type SyncStatusResponse struct {
	Push *PushResult `json:"push"`
	Pull *PullReport `json:"pull"`
}

// ImportResponse 上传文件导入结果：逐行处理汇总 + 导入后推送表格镜像的结果
type ImportResponse struct {
	PullReport
	SheetSynced bool   `json:"sheet_synced"`
	Warning     string `json:"warning,omitempty"`
}
