package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-records/config"
	"student-records/internal/dto"
	"student-records/internal/model"
	"student-records/internal/repository"
	pkgerrors "student-records/pkg/errors"
	"student-records/pkg/sheets"
)

const maxImportRows = 5000

var (
	ErrImportBadFile     = errors.New("无法解析上传的 Excel 文件")
	ErrImportBadHeader   = errors.New("Excel 表头应为 StudentID, Name, Department, Program, Course, Semester, Grade")
	ErrImportNoData      = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
)

// SyncStatusStore 保存最近一次同步结果（Redis 实现见 pkg/redis）
type SyncStatusStore interface {
	SetSyncStatus(ctx context.Context, direction string, payload []byte) error
	GetSyncStatus(ctx context.Context, direction string) ([]byte, error)
}

// SyncService 学生表与外部表格之间的同步引擎
//
// 约定：
//   - Push 整表覆盖：清空工作表后写入表头 + 全部学生（按姓名升序）
//   - Pull 逐行 upsert：跳过表头与空行，按学号匹配，行之间互不影响
//   - 与表格交互的任何失败都只体现在返回结果中，从不返回 error、从不 panic
//   - Pull 不会触发 Push
type SyncService interface {
	Push(ctx context.Context) *dto.PushResult
	Pull(ctx context.Context) *dto.PullReport
	// Import 导入上传的 .xlsx 文件（与表格镜像同样的 7 列布局），完成后推送一次
	Import(ctx context.Context, reader io.Reader) (*dto.ImportResponse, error)
	// Status 最近一次推送 / 拉取结果；未配置 Redis 时返回空结果
	Status(ctx context.Context) (*dto.SyncStatusResponse, error)
}

type syncService struct {
	repo    *repository.Repository
	factory sheets.Factory
	status  SyncStatusStore
	timeout time.Duration
	refMode string
	logger  *zap.Logger
}

// NewSyncService 创建 SyncService 实例，status 可为 nil
func NewSyncService(
	cfg *config.SheetConfig,
	repo *repository.Repository,
	factory sheets.Factory,
	status SyncStatusStore,
	logger *zap.Logger,
) SyncService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &syncService{
		repo:    repo,
		factory: factory,
		status:  status,
		timeout: timeout,
		refMode: cfg.PullRefMode,
		logger:  logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Push — 本地学生表 → 外部表格（整表覆盖）
// ═══════════════════════════════════════════════════════════

func (s *syncService) Push(ctx context.Context) (result *dto.PushResult) {
	result = &dto.PushResult{At: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			result.Rows = 0
			s.failPush(result, "panic", fmt.Errorf("%v", r))
		}
		s.record(ctx, pkgerrors.SyncPush, result)
	}()

	// 1. 读取全部学生投影（先于连接表格，读取失败时不会清空表格）
	rows, err := s.repo.Student.ListSheetRows(ctx, nil)
	if err != nil {
		s.failPush(result, "load", err)
		return result
	}
	table := buildSheetTable(rows)

	sheetCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 2. 连接表格
	client, err := s.factory(sheetCtx)
	if err != nil {
		s.failPush(result, "connect", err)
		return result
	}

	// 3. 清空后从 A1 写入
	if err := client.Clear(sheetCtx); err != nil {
		s.failPush(result, "clear", err)
		return result
	}
	if err := client.Write(sheetCtx, table, "A1"); err != nil {
		s.failPush(result, "write", err)
		return result
	}

	result.Synced = true
	result.Rows = len(rows)
	s.logger.Info("表格推送完成", zap.Int("rows", len(rows)))
	return result
}

func (s *syncService) failPush(result *dto.PushResult, stage string, err error) {
	syncErr := &pkgerrors.SyncError{Direction: pkgerrors.SyncPush, Stage: stage, Err: err}
	result.Synced = false
	result.Err = syncErr
	result.Error = syncErr.Error()
	s.logger.Warn("表格推送失败",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// ═══════════════════════════════════════════════════════════
// Pull — 外部表格 → 本地学生表（逐行 upsert）
// ═══════════════════════════════════════════════════════════

func (s *syncService) Pull(ctx context.Context) (report *dto.PullReport) {
	report = &dto.PullReport{At: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			s.failPull(report, "panic", fmt.Errorf("%v", r))
		}
		s.record(ctx, pkgerrors.SyncPull, report)
	}()

	table, err := s.readSheet(ctx, report)
	if err != nil {
		return report
	}

	report.Synced = true
	s.applyTable(ctx, newRefResolver(s.refMode, s.repo), table, report)

	s.logger.Info("表格拉取完成",
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failed", report.Failed),
	)
	return report
}

// readSheet 表格读取受 sheet.timeout 约束，写库阶段不受其约束
func (s *syncService) readSheet(ctx context.Context, report *dto.PullReport) ([][]string, error) {
	sheetCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := s.factory(sheetCtx)
	if err != nil {
		s.failPull(report, "connect", err)
		return nil, err
	}
	table, err := client.ReadAll(sheetCtx)
	if err != nil {
		s.failPull(report, "read", err)
		return nil, err
	}
	return table, nil
}

func (s *syncService) failPull(report *dto.PullReport, stage string, err error) {
	syncErr := &pkgerrors.SyncError{Direction: pkgerrors.SyncPull, Stage: stage, Err: err}
	report.Synced = false
	report.Err = syncErr
	report.Error = syncErr.Error()
	s.logger.Warn("表格拉取失败",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// ── 逐行 upsert ──

type upsertOutcome int

const (
	outcomeCreated upsertOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// applyTable 跳过第一行（表头），逐行处理；单行失败记入报告后继续
func (s *syncService) applyTable(ctx context.Context, resolver refResolver, table [][]string, report *dto.PullReport) {
	for i := 1; i < len(table); i++ {
		rowNum := i + 1
		cells := table[i]
		if isBlankRow(cells) {
			report.Skipped++
			continue
		}
		report.Total++

		row := decodeRow(cells)
		outcome, err := s.upsertRow(ctx, resolver, row)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, dto.PullRowError{
				Row:       rowNum,
				StudentID: row.StudentID,
				Reason:    err.Error(),
			})
			continue
		}
		switch outcome {
		case outcomeCreated:
			report.Created++
		case outcomeUpdated:
			report.Updated++
		case outcomeUnchanged:
			report.Unchanged++
		}
	}
}

func (s *syncService) upsertRow(ctx context.Context, resolver refResolver, row SheetRow) (upsertOutcome, error) {
	if err := validateStudentID(row.StudentID); err != nil {
		return 0, err
	}
	if err := validateName(row.Name); err != nil {
		return 0, err
	}
	refs, err := resolver.resolve(ctx, row)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.Student.GetByStudentID(ctx, row.StudentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		student := &model.Student{
			StudentID: row.StudentID,
			Name:      row.Name,
			DeptID:    refs.DeptID,
			ProgramID: refs.ProgramID,
			CourseID:  refs.CourseID,
			Semester:  row.Semester,
			Grade:     row.Grade,
		}
		if err := s.repo.Student.Create(ctx, student); err != nil {
			return 0, pkgerrors.WrapStore("student.create", err)
		}
		return outcomeCreated, nil
	}
	if err != nil {
		return 0, pkgerrors.WrapStore("student.get_by_student_id", err)
	}

	if existing.Name == row.Name &&
		existing.DeptID == refs.DeptID &&
		equalRef(existing.ProgramID, refs.ProgramID) &&
		equalRef(existing.CourseID, refs.CourseID) &&
		existing.Semester == row.Semester &&
		existing.Grade == row.Grade {
		return outcomeUnchanged, nil
	}

	existing.Name = row.Name
	existing.DeptID = refs.DeptID
	existing.ProgramID = refs.ProgramID
	existing.CourseID = refs.CourseID
	existing.Semester = row.Semester
	existing.Grade = row.Grade
	if err := s.repo.Student.Update(ctx, existing); err != nil {
		return 0, pkgerrors.WrapStore("student.update", err)
	}
	return outcomeUpdated, nil
}

func equalRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ═══════════════════════════════════════════════════════════
// Import — 上传 .xlsx 文件批量导入
// ═══════════════════════════════════════════════════════════

func (s *syncService) Import(ctx context.Context, reader io.Reader) (*dto.ImportResponse, error) {
	table, err := parseImportFile(reader)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportResponse{}
	resp.At = time.Now()
	resp.Synced = true
	// 导入文件来自导出，始终按院系代码 / 专业名称 / 课程名称解释
	s.applyTable(ctx, newRefResolver(PullRefModeLabel, s.repo), table, &resp.PullReport)

	s.logger.Info("Excel 导入完成",
		zap.Int("total", resp.Total),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("failed", resp.Failed),
	)

	if resp.Created > 0 || resp.Updated > 0 {
		push := s.Push(ctx)
		resp.SheetSynced = push.Synced
		if !push.Synced {
			resp.Warning = WarnSheetSyncFailed
		}
	} else {
		resp.SheetSynced = true
	}
	return resp, nil
}

// parseImportFile 读取第一个工作表，校验表头与行数
func parseImportFile(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}

	header := normalizeRow(rows[0])
	for i, h := range SheetHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), h) {
			return nil, ErrImportBadHeader
		}
	}

	dataRows := 0
	for _, r := range rows[1:] {
		if !isBlankRow(r) {
			dataRows++
		}
	}
	if dataRows == 0 {
		return nil, ErrImportNoData
	}
	if dataRows > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// ═══════════════════════════════════════════════════════════
// Status — 最近一次同步结果
// ═══════════════════════════════════════════════════════════

func (s *syncService) record(ctx context.Context, direction pkgerrors.SyncDirection, result interface{}) {
	if s.status == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("序列化同步结果失败", zap.Error(err))
		return
	}
	// 请求结束不应影响结果落盘
	if err := s.status.SetSyncStatus(context.WithoutCancel(ctx), string(direction), data); err != nil {
		s.logger.Warn("记录同步结果失败", zap.String("direction", string(direction)), zap.Error(err))
	}
}

func (s *syncService) Status(ctx context.Context) (*dto.SyncStatusResponse, error) {
	resp := &dto.SyncStatusResponse{}
	if s.status == nil {
		return resp, nil
	}

	data, err := s.status.GetSyncStatus(ctx, string(pkgerrors.SyncPush))
	if err != nil {
		return nil, err
	}
	if data != nil {
		resp.Push = &dto.PushResult{}
		if err := json.Unmarshal(data, resp.Push); err != nil {
			return nil, err
		}
	}

	data, err = s.status.GetSyncStatus(ctx, string(pkgerrors.SyncPull))
	if err != nil {
		return nil, err
	}
	if data != nil {
		resp.Pull = &dto.PullReport{}
		if err := json.Unmarshal(data, resp.Pull); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
