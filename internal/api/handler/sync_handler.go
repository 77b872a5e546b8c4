package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-records/internal/service"
	"student-records/pkg/response"
)

// SyncHandler 表格同步与文件导入 HTTP 处理器
type SyncHandler struct {
	syncSvc service.SyncService
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(syncSvc service.SyncService) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc}
}

// Push 手动整表推送（修复过期镜像）
// POST /api/v1/sync/push
func (h *SyncHandler) Push(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	result := h.syncSvc.Push(c.Request.Context())
	if !result.Synced {
		response.BadGateway(c, 13001, "表格镜像推送失败", result.Error)
		return
	}
	response.OK(c, result)
}

// Pull 从表格拉取并逐行写入本地。
// 整表读取失败返回 502；单行失败只体现在报告中，整体仍返回 200。
// POST /api/v1/sync/pull
func (h *SyncHandler) Pull(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	report := h.syncSvc.Pull(c.Request.Context())
	if !report.Synced {
		response.BadGateway(c, 13002, "表格镜像读取失败", report.Error)
		return
	}
	response.OK(c, report)
}

// Status 最近一次推送 / 拉取结果
// GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	status, err := h.syncSvc.Status(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, status)
}

// Import 上传 .xlsx 批量导入学生
// POST /api/v1/students/import (multipart, 字段 file)
func (h *SyncHandler) Import(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
			return
		}
		response.BadRequest(c, 13101, "请上传 Excel 文件（字段名 file）")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 13101, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.syncSvc.Import(c.Request.Context(), f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	if result.Warning != "" {
		response.OKWithMessage(c, result.Warning, result)
		return
	}
	response.OK(c, result)
}

func (h *SyncHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 13102, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13103, err.Error())
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 13104, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 13105, err.Error())
	default:
		response.InternalError(c)
	}
}
