package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/internal/dto"
	"github.com/Marky00100/program-gap/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// dashboardTemplate 模板名
const dashboardTemplate = "dashboard.tmpl"

// Templates 解析内嵌的 HTML 模板，供 router 注册到 gin
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

// DashboardHandler 单页看板：选择器 + 结果 + 可选明细
type DashboardHandler struct {
	gapSvc service.GapService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(gapSvc service.GapService) *DashboardHandler {
	return &DashboardHandler{gapSvc: gapSvc}
}

// dashboardQuery 看板 query 参数
type dashboardQuery struct {
	CIPCode     string `form:"cip"`
	DegreeLevel string `form:"degree"`
	Region      string `form:"region"`
	Detail      bool   `form:"detail"`
}

// dashboardView 模板数据
type dashboardView struct {
	Options  *dto.OptionsResponse
	Query    dashboardQuery
	Result   *dto.GapResponse
	Detail   *dto.GapDetailResponse
	LoadErr  string
	ErrorMsg string
}

// Index 看板首页
// GET /?cip=51.0000&degree=Bachelor&region=North&detail=1
func (h *DashboardHandler) Index(c *gin.Context) {
	var q dashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.HTML(http.StatusBadRequest, dashboardTemplate, dashboardView{ErrorMsg: "参数校验失败"})
		return
	}

	ctx := c.Request.Context()
	view := dashboardView{Query: q}

	opts, err := h.gapSvc.Options(ctx)
	if err != nil {
		h.renderError(c, view, err)
		return
	}
	view.Options = opts

	// 未选择专业时默认取第一个
	if view.Query.CIPCode == "" && len(opts.Programs) > 0 {
		view.Query.CIPCode = opts.Programs[0]
	}
	if view.Query.CIPCode == "" {
		c.HTML(http.StatusOK, dashboardTemplate, view)
		return
	}

	req := &dto.GapRequest{
		CIPCode:     view.Query.CIPCode,
		DegreeLevel: view.Query.DegreeLevel,
		Region:      view.Query.Region,
	}

	if view.Query.Detail {
		detail, err := h.gapSvc.Detail(ctx, req)
		if err != nil {
			h.renderError(c, view, err)
			return
		}
		view.Detail = detail
		view.Result = &detail.GapResponse
	} else {
		result, err := h.gapSvc.Compute(ctx, req)
		if err != nil {
			h.renderError(c, view, err)
			return
		}
		view.Result = result
	}

	setGapContext(c, view.Result)
	c.HTML(http.StatusOK, dashboardTemplate, view)
}

// renderError 装载失败时只展示错误，不展示任何计算结果
func (h *DashboardHandler) renderError(c *gin.Context, view dashboardView, err error) {
	view.Result = nil
	view.Detail = nil
	if errors.Is(err, service.ErrDatasetNotReady) {
		view.LoadErr = err.Error()
		c.HTML(http.StatusServiceUnavailable, dashboardTemplate, view)
		return
	}
	view.ErrorMsg = "服务器内部错误"
	c.HTML(http.StatusInternalServerError, dashboardTemplate, view)
}
