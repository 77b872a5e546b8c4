package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"student-records/internal/service"
	"student-records/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStudents 导出学生名单（可按院系代码过滤）
// GET /api/v1/export/students?dept=CS
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStudents(c.Request.Context(), c.Query("dept"))
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
