// Package sheets 封装学生信息外部表格（sheet-of-record 镜像）的读写。
//
// 同步引擎只依赖 Client 的三个能力：清空、从某个起始单元格批量写入、读取全部内容。
// 具体后端由 sheet.driver 决定：
//   - google：按标题打开 Google 表格文档，使用第一个工作表
//   - xlsx：本地 .xlsx 文件的第一个工作表（开发环境替身）
//   - memory：进程内表格（测试、演示）
//   - disabled：镜像关闭，任何连接请求都返回 ErrDisabled
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"student-records/config"
)

var (
	ErrDisabled         = errors.New("表格镜像未启用")
	ErrDocumentNotFound = errors.New("未找到表格文档")
	ErrNoWorksheet      = errors.New("表格文档中没有工作表")
)

// Client 外部表格客户端
type Client interface {
	// Clear 清空工作表全部内容
	Clear(ctx context.Context) error
	// Write 从 origin（如 "A1"）开始批量写入二维表
	Write(ctx context.Context, table [][]string, origin string) error
	// ReadAll 读取全部内容（含表头），每行为字符串单元格
	ReadAll(ctx context.Context) ([][]string, error)
}

// Factory 创建一个已完成认证的 Client。
// 同步引擎在每次同步时调用，构造失败与读写失败同等处理。
type Factory func(ctx context.Context) (Client, error)

// NewFactory 根据配置选择表格后端
func NewFactory(cfg *config.SheetConfig) (Factory, error) {
	switch cfg.Driver {
	case "google":
		return func(ctx context.Context) (Client, error) {
			return NewGoogleClient(ctx, cfg.CredentialsFile, cfg.DocumentTitle)
		}, nil
	case "xlsx":
		c := NewXLSXClient(cfg.XLSXPath)
		return func(context.Context) (Client, error) { return c, nil }, nil
	case "memory":
		c := NewMemoryClient(nil)
		return func(context.Context) (Client, error) { return c, nil }, nil
	case "disabled":
		return func(context.Context) (Client, error) { return nil, ErrDisabled }, nil
	default:
		return nil, fmt.Errorf("不支持的表格驱动: %s", cfg.Driver)
	}
}

// parseOrigin 将 "A1" 形式的单元格引用解析为从 0 开始的行列偏移
func parseOrigin(origin string) (row, col int, err error) {
	if origin == "" {
		return 0, 0, nil
	}
	c, r, err := excelize.CellNameToCoordinates(strings.ToUpper(origin))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的起始单元格 %q: %w", origin, err)
	}
	return r - 1, c - 1, nil
}
