package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/internal/dto"
	"github.com/Marky00100/program-gap/internal/service"
	"github.com/Marky00100/program-gap/pkg/response"
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

// ExportGaps 导出全部专业的缺口报表
// GET /api/v1/export/gaps?degree=Bachelor&region=North
func (h *ExportHandler) ExportGaps(c *gin.Context) {
	var req dto.GapExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportGapReport(c.Request.Context(), req.DegreeLevel, req.Region)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDatasetNotReady):
		response.ServiceUnavailable(c, 17001, "数据集未就绪，计算已停止", err.Error())
	case errors.Is(err, service.ErrExportNoPrograms):
		response.NotFound(c, 17101, "毕业生数据中没有任何专业")
	default:
		response.InternalError(c)
	}
}
