package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"student-records/config"
	"student-records/internal/repository"
	pkgerrors "student-records/pkg/errors"
)

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 文件布局与表格镜像一致：表头 + 每个学生一行，按姓名升序。
type ExportService interface {
	// ExportStudents 导出学生，deptCode 非空时只导出该院系
	ExportStudents(ctx context.Context, deptCode string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.ExportConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.ExportConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

func (s *exportService) ExportStudents(ctx context.Context, deptCode string) (*bytes.Buffer, string, error) {
	// 1. 查询
	rows, err := s.repo.Student.ListSheetRows(ctx, &repository.StudentFilter{DeptCode: strings.TrimSpace(deptCode)})
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, "", pkgerrors.WrapStore("student.list_sheet_rows", err)
	}
	table := buildSheetTable(rows)

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := s.cfg.SheetName
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	if sheetName != "Sheet1" {
		// 删除默认 Sheet1
		_ = f.DeleteSheet("Sheet1")
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "G", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, row := range table {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			s.logger.Error("写入 Excel 行失败", zap.Int("row", i+1), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}
	_ = f.SetCellStyle(sheetName, "A1", "G1", headerStyle)

	// 3. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, s.cfg.Filename, nil
}
