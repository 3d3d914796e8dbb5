package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoPrograms   = errors.New("毕业生数据中没有任何专业")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 对毕业生表中的每个专业，按同一 (学位层级, 地区) 计算缺口
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 单 Sheet：标题行 + 表头 + 每专业一行
type ExportService interface {
	ExportGapReport(ctx context.Context, degree, region string) (*bytes.Buffer, string, error)
}

type exportService struct {
	snapshots SnapshotProvider
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(snapshots SnapshotProvider, logger *zap.Logger) ExportService {
	return &exportService{snapshots: snapshots, logger: logger}
}

// reportSheet 报表 Sheet 名
const reportSheet = "Gap Report"

// ═══════════════════════════════════════════════════════════
// ExportGapReport 导出全部专业的缺口报表
// ═══════════════════════════════════════════════════════════
//
// 表头：| CIP | Graduates | Adjusted Demand | Gap Ratio | Matched SOCs |
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportGapReport(_ context.Context, degree, region string) (*bytes.Buffer, string, error) {
	t, err := s.snapshots.Current()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDatasetNotReady, err)
	}

	programs := t.Programs()
	if len(programs) == 0 {
		return nil, "", ErrExportNoPrograms
	}

	sel := resolveSelection(t, "", degree, region)

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(reportSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(reportSheet, "A", "A", 12)
	f.SetColWidth(reportSheet, "B", "D", 18)
	f.SetColWidth(reportSheet, "E", "E", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	ratioStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00

	// 标题行
	title := fmt.Sprintf("Supply/Demand Gap: %s, %s", sel.level, sel.region)
	if t.GraduateYear != 0 {
		title += fmt.Sprintf(" (%d)", t.GraduateYear)
	}
	f.SetCellValue(reportSheet, "A1", title)
	f.MergeCell(reportSheet, "A1", "E1")
	f.SetCellStyle(reportSheet, "A1", "E1", headerStyle)

	// 表头
	headers := []string{"CIP", "Graduates", "Adjusted Demand", "Gap Ratio", "Matched SOCs"}
	for i, h := range headers {
		f.SetCellValue(reportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(reportSheet, "A2", "E2", headerStyle)

	// 数据行
	row := 3
	for _, cip := range programs {
		b := ExplainGap(t, cip, sel.level, sel.region)
		f.SetCellValue(reportSheet, cell("A", row), cip)
		f.SetCellValue(reportSheet, cell("B", row), b.TotalGraduates)
		f.SetCellValue(reportSheet, cell("C", row), b.AdjustedDemand)
		f.SetCellValue(reportSheet, cell("D", row), b.Ratio)
		f.SetCellValue(reportSheet, cell("E", row), len(b.Occupations))
		row++
	}
	f.SetCellStyle(reportSheet, "D3", cell("D", row-1), ratioStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("gap_report_%s_%s.xlsx", sel.level, sel.region)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
