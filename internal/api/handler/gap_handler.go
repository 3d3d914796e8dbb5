package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/internal/api/middleware"
	"github.com/Marky00100/program-gap/internal/dto"
	"github.com/Marky00100/program-gap/internal/service"
	"github.com/Marky00100/program-gap/pkg/response"
)

// GapHandler 缺口计算模块 HTTP 处理器
type GapHandler struct {
	gapSvc service.GapService
}

// NewGapHandler 创建 GapHandler
func NewGapHandler(gapSvc service.GapService) *GapHandler {
	return &GapHandler{gapSvc: gapSvc}
}

// Compute 计算供需缺口
// GET /api/v1/gap?cip=51.0000&degree=Bachelor&region=North
func (h *GapHandler) Compute(c *gin.Context) {
	var req dto.GapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.gapSvc.Compute(c.Request.Context(), &req)
	if err != nil {
		handleGapError(c, err)
		return
	}

	setGapContext(c, result)
	response.OK(c, result)
}

// Detail 缺口计算明细
// GET /api/v1/gap/detail
func (h *GapHandler) Detail(c *gin.Context) {
	var req dto.GapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.gapSvc.Detail(c.Request.Context(), &req)
	if err != nil {
		handleGapError(c, err)
		return
	}

	setGapContext(c, &result.GapResponse)
	response.OK(c, result)
}

// Options 选择器可选值
// GET /api/v1/options
func (h *GapHandler) Options(c *gin.Context) {
	result, err := h.gapSvc.Options(c.Request.Context())
	if err != nil {
		handleGapError(c, err)
		return
	}

	response.OK(c, result)
}

// ProgramOccupations 专业对应的职业
// GET /api/v1/programs/:cip/occupations
func (h *GapHandler) ProgramOccupations(c *gin.Context) {
	cip := c.Param("cip")
	if cip == "" {
		response.BadRequest(c, 10001, "专业代码不能为空")
		return
	}

	result, err := h.gapSvc.ProgramOccupations(c.Request.Context(), cip)
	if err != nil {
		handleGapError(c, err)
		return
	}

	response.OK(c, result)
}

// OccupationPrograms 职业对应的专业
// GET /api/v1/occupations/:soc/programs
func (h *GapHandler) OccupationPrograms(c *gin.Context) {
	soc := c.Param("soc")
	if soc == "" {
		response.BadRequest(c, 10001, "职业代码不能为空")
		return
	}

	result, err := h.gapSvc.OccupationPrograms(c.Request.Context(), soc)
	if err != nil {
		handleGapError(c, err)
		return
	}

	response.OK(c, result)
}

// handleGapError 统一处理缺口模块业务错误
func handleGapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDatasetNotReady):
		response.ServiceUnavailable(c, 17001, "数据集未就绪，计算已停止", err.Error())
	default:
		response.InternalError(c)
	}
}

// setGapContext 供请求日志记录本次计算对应的快照与选择
func setGapContext(c *gin.Context, r *dto.GapResponse) {
	middleware.SetGapContext(c, r.SnapshotID, r.CIPCode+"|"+r.DegreeLevel+"|"+r.Region)
}
