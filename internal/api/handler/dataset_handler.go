package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/internal/service"
	"github.com/Marky00100/program-gap/pkg/response"
)

// DatasetHandler 数据集模块 HTTP 处理器
type DatasetHandler struct {
	datasetSvc service.DatasetService
}

// NewDatasetHandler 创建 DatasetHandler
func NewDatasetHandler(datasetSvc service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetSvc: datasetSvc}
}

// Status 数据集装载状态
// GET /api/v1/datasets/status
func (h *DatasetHandler) Status(c *gin.Context) {
	response.OK(c, h.datasetSvc.Status(c.Request.Context()))
}

// Reload 手动重新装载数据集
// POST /api/v1/datasets/reload
func (h *DatasetHandler) Reload(c *gin.Context) {
	status, err := h.datasetSvc.Reload(c.Request.Context(), OperatorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReloadInProgress):
			response.Conflict(c, 17002, "数据集正在重新装载，请稍后再试")
		case errors.Is(err, service.ErrDatasetNotReady):
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Code:    17001,
				Message: "数据集装载失败，计算已停止",
				Data:    status,
				Details: status.LastError,
			})
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, status)
}
