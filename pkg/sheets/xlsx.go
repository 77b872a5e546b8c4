package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// XLSXClient 以本地工作簿的第一个工作表作为表格镜像
type XLSXClient struct {
	path string
	mu   sync.Mutex
}

// NewXLSXClient 创建本地工作簿客户端，文件不存在时在首次写入时创建
func NewXLSXClient(path string) *XLSXClient {
	return &XLSXClient{path: path}
}

func (x *XLSXClient) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("读取工作表失败: %w", err)
	}
	// 自底向上删除，避免行号位移
	for i := len(rows); i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.RemoveRow(sheet, i); err != nil {
			return fmt.Errorf("删除第 %d 行失败: %w", i, err)
		}
	}
	return f.SaveAs(x.path)
}

func (x *XLSXClient) Write(ctx context.Context, table [][]string, origin string) error {
	r0, c0, err := parseOrigin(origin)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i := range table {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(c0+1, r0+i+1)
		if err != nil {
			return err
		}
		row := table[i]
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", cell, err)
		}
	}
	return f.SaveAs(x.path)
}

func (x *XLSXClient) ReadAll(_ context.Context) ([][]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, err := os.Stat(x.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	f, err := x.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return rows, nil
}

// open 打开工作簿；文件不存在时返回一个带默认工作表的新工作簿
func (x *XLSXClient) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(x.path)
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("打开工作簿 %s 失败: %w", x.path, err)
	}
	return f, nil
}
