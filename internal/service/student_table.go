package service

import (
	"strings"

	"student-records/internal/model"
)

// sheetColumns 表格镜像固定为 7 列
const sheetColumns = 7

// SheetHeader 表格镜像 / 导出文件的表头，第一行永远是它
var SheetHeader = []string{"StudentID", "Name", "Department", "Program", "Course", "Semester", "Grade"}

// SheetRow 表格中一行学生数据的按位置解码结果。
// Department / Program / Course 的含义取决于 sheet.pull_ref_mode：
// label 模式下为院系代码 / 专业名称 / 课程名称，raw_id 模式下为对应的内部 ID。
type SheetRow struct {
	StudentID  string
	Name       string
	Department string
	Program    string
	Course     string
	Semester   string
	Grade      string
}

// projectRow 将一条学生投影为 7 个单元格，缺失值写空串
func projectRow(r model.StudentRow) []string {
	return []string{r.StudentID, r.Name, r.DeptCode, r.ProgramName, r.CourseName, r.Semester, r.Grade}
}

// buildSheetTable 表头 + 每个学生一行
func buildSheetTable(rows []model.StudentRow) [][]string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, append([]string(nil), SheetHeader...))
	for _, r := range rows {
		table = append(table, projectRow(r))
	}
	return table
}

// isBlankRow 所有单元格去空白后均为空
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeRow 不足 7 列补空串，超出部分截断
func normalizeRow(cells []string) []string {
	out := make([]string, sheetColumns)
	copy(out, cells)
	return out
}

// decodeRow 按位置解码，单元格首尾空白被去除
func decodeRow(cells []string) SheetRow {
	c := normalizeRow(cells)
	for i := range c {
		c[i] = strings.TrimSpace(c[i])
	}
	return SheetRow{
		StudentID:  c[0],
		Name:       c[1],
		Department: c[2],
		Program:    c[3],
		Course:     c[4],
		Semester:   c[5],
		Grade:      c[6],
	}
}
