package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// GoogleClient 按标题打开的 Google 表格文档，读写其第一个工作表
type GoogleClient struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
}

// NewGoogleClient 使用服务账号密钥文件完成认证，并按标题定位文档。
// 密钥在每次构造时读取一次；作用域为表格读写 + 云端硬盘只读（用于按标题查找文档）。
func NewGoogleClient(ctx context.Context, credentialsFile, title string) (*GoogleClient, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("读取服务账号密钥失败: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("解析服务账号密钥失败: %w", err)
	}

	opt := option.WithCredentials(creds)
	return newGoogleClient(ctx, title, []option.ClientOption{opt}, []option.ClientOption{opt})
}

func newGoogleClient(ctx context.Context, title string, sheetsOpts, driveOpts []option.ClientOption) (*GoogleClient, error) {
	driveSvc, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 Drive 客户端失败: %w", err)
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeQuery(title), spreadsheetMimeType)
	files, err := driveSvc.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("查找表格文档失败: %w", err)
	}
	if len(files.Files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, title)
	}
	spreadsheetID := files.Files[0].Id

	svc, err := gsheets.NewService(ctx, sheetsOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 Sheets 客户端失败: %w", err)
	}

	doc, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("读取表格文档失败: %w", err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return nil, ErrNoWorksheet
	}

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     doc.Sheets[0].Properties.Title,
	}, nil
}

func (g *GoogleClient) Clear(ctx context.Context) error {
	_, err := g.svc.Spreadsheets.Values.
		Clear(g.spreadsheetID, g.sheetRange(""), &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("清空工作表失败: %w", err)
	}
	return nil
}

func (g *GoogleClient) Write(ctx context.Context, table [][]string, origin string) error {
	if origin == "" {
		origin = "A1"
	}
	values := make([][]interface{}, len(table))
	for i, row := range table {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	// RAW：按原文写入，避免 "25-12345" 之类的值被表格解析成日期或数字
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.sheetRange(origin), &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("写入工作表失败: %w", err)
	}
	return nil
}

func (g *GoogleClient) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.
		Get(g.spreadsheetID, g.sheetRange("")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

// escapeQuery 转义 Drive 查询字符串字面量：先反斜杠，再单引号
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// sheetRange 生成 A1 表示法范围，工作表名按规范加单引号
func (g *GoogleClient) sheetRange(cell string) string {
	quoted := "'" + strings.ReplaceAll(g.worksheet, "'", "''") + "'"
	if cell == "" {
		return quoted
	}
	return quoted + "!" + cell
}
