package handler

import "github.com/Marky00100/program-gap/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Gap       *GapHandler
	Dataset   *DatasetHandler
	Export    *ExportHandler
	Dashboard *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Gap:       NewGapHandler(svc.Gap),
		Dataset:   NewDatasetHandler(svc.Dataset),
		Export:    NewExportHandler(svc.Export),
		Dashboard: NewDashboardHandler(svc.Gap),
	}
}
