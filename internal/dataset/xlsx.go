package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Marky00100/program-gap/internal/model"
	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// headerScanRows 表头可能位于说明行之后，只在前若干行内查找
const headerScanRows = 10

// ParseCrosswalkXLSX 解析 Excel 格式的映射表（如 CIP2020_SOC2018_Crosswalk.xlsx）。
// 依次扫描各 Sheet，取第一个同时包含 CIP 与 SOC 列的表头。
func ParseCrosswalkXLSX(r io.Reader) ([]model.CrosswalkRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: 打开 xlsx 失败: %v", pkgerrors.ErrMalformedData, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: 读取 Sheet %q 失败: %v", pkgerrors.ErrMalformedData, sheet, err)
		}

		for i := 0; i < len(rows) && i < headerScanRows; i++ {
			h := newHeader(rows[i])
			if h.find(cipAliases) < 0 || h.find(socAliases) < 0 {
				continue
			}
			return crosswalkFromRows(h, rows[i+1:])
		}
	}

	return nil, fmt.Errorf("%w: xlsx 中未找到包含 CIP/SOC 列的 Sheet", pkgerrors.ErrMalformedData)
}
