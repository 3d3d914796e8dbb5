package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Marky00100/program-gap/internal/model"
	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// ── 列名别名（大小写、首尾空白不敏感）──

var (
	socAliases      = []string{"soc_code", "soc2018code", "soc", "occ_code"}
	socTitleAliases = []string{"soc_title", "soc2018title", "occ_title", "title"}
	cipAliases      = []string{"cip_code", "cip2020code", "cipcode", "cip"}
	regionAliases   = []string{"region", "area_name", "area"}
	growthAliases   = []string{"annual_openings_growth", "annual_openings", "openings_growth"}
	doctoralAliases = []string{"onet % doctoral", "pct_doctoral"}
	masterAliases   = []string{"onet % master", "pct_master"}
	bachelorAliases = []string{"onet % bachelor", "pct_bachelor"}
	degreeAliases   = []string{"degree_level", "degree_type", "award_level", "awlevel"}
	countAliases    = []string{"graduates", "completions", "count"}
	yearAliases     = []string{"year", "academic_year"}
)

// header 列名 → 列下标
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		key := normalizeColumn(c)
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

func normalizeColumn(c string) string {
	c = strings.TrimPrefix(c, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(c)), " ")
}

// find 返回第一个命中的别名下标，未命中返回 -1
func (h header) find(aliases []string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

func (h header) require(table string, aliases []string) (int, error) {
	i := h.find(aliases)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s 缺少列 %q", pkgerrors.ErrMalformedData, table, aliases[0])
	}
	return i, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber 解析数值单元格；空串视为 0，允许千分位逗号与百分号
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.EqualFold(s, "nan") || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

var cipPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,4})$`)

// NormalizeCIP 将 "1.1" / "51.0" 这类被数值化的 CIP 代码补齐为 "01.1000" / "51.0000"
func NormalizeCIP(code string) string {
	code = strings.TrimSpace(code)
	m := cipPattern.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	major := m[1]
	if len(major) == 1 {
		major = "0" + major
	}
	return major + "." + m[2] + strings.Repeat("0", 4-len(m[2]))
}

// ── 读取工具 ──

// readRows 读取 CSV：返回表头与数据行
func readRows(r io.Reader) (header, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	cols, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: 文件为空", pkgerrors.ErrMalformedData)
		}
		return nil, nil, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedData, err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedData, err)
	}
	return newHeader(cols), rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ── LMI ──

// ParseOccupations 解析 LMI 表。缺少地区列时整表视为 allRegionsLabel 汇总数据；
// 缺少学历权重列时置 0，由 WeightProvider 补齐。
func ParseOccupations(r io.Reader, allRegionsLabel string) ([]model.OccupationRecord, error) {
	h, rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("LMI: %w", err)
	}

	socIdx, err := h.require("LMI", socAliases)
	if err != nil {
		return nil, err
	}
	growthIdx, err := h.require("LMI", growthAliases)
	if err != nil {
		return nil, err
	}
	regionIdx := h.find(regionAliases)
	titleIdx := h.find(socTitleAliases)
	pctIdx := [3]int{h.find(doctoralAliases), h.find(masterAliases), h.find(bachelorAliases)}

	occs := make([]model.OccupationRecord, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		line := n + 2

		growth, err := parseNumber(cellAt(row, growthIdx))
		if err != nil {
			return nil, fmt.Errorf("%w: LMI 第 %d 行 openings growth: %v", pkgerrors.ErrMalformedData, line, err)
		}
		var pct [3]float64
		for k, idx := range pctIdx {
			if idx < 0 {
				continue
			}
			if pct[k], err = parseNumber(cellAt(row, idx)); err != nil {
				return nil, fmt.Errorf("%w: LMI 第 %d 行学历占比: %v", pkgerrors.ErrMalformedData, line, err)
			}
		}

		region := allRegionsLabel
		if regionIdx >= 0 {
			region = cellAt(row, regionIdx)
		}

		occs = append(occs, model.OccupationRecord{
			SOCCode:        cellAt(row, socIdx),
			Title:          cellAt(row, titleIdx),
			Region:         region,
			OpeningsGrowth: growth,
			PctDoctoral:    pct[0],
			PctMaster:      pct[1],
			PctBachelor:    pct[2],
		})
	}
	return occs, nil
}

// ── 毕业生 ──

// ParseGraduates 解析毕业生表。学位列可为标签或 award level 序数；
// 无法映射的行保留原值、DegreeLevel 置空，不会被任何学位层级选中。
func ParseGraduates(r io.Reader, allRegionsLabel string) ([]model.GraduateRecord, error) {
	h, rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("毕业生: %w", err)
	}

	cipIdx, err := h.require("毕业生", cipAliases)
	if err != nil {
		return nil, err
	}
	degreeIdx, err := h.require("毕业生", degreeAliases)
	if err != nil {
		return nil, err
	}
	countIdx, err := h.require("毕业生", countAliases)
	if err != nil {
		return nil, err
	}
	yearIdx := h.find(yearAliases)
	regionIdx := h.find(regionAliases)

	grads := make([]model.GraduateRecord, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		line := n + 2

		count, err := parseNumber(cellAt(row, countIdx))
		if err != nil || count < 0 || count != math.Trunc(count) {
			return nil, fmt.Errorf("%w: 毕业生第 %d 行人数 %q 不是非负整数", pkgerrors.ErrMalformedData, line, cellAt(row, countIdx))
		}

		year := 0
		if yearIdx >= 0 {
			y, err := parseNumber(cellAt(row, yearIdx))
			if err != nil {
				return nil, fmt.Errorf("%w: 毕业生第 %d 行年份: %v", pkgerrors.ErrMalformedData, line, err)
			}
			year = int(y)
		}

		region := allRegionsLabel
		if regionIdx >= 0 {
			region = cellAt(row, regionIdx)
		}

		raw := cellAt(row, degreeIdx)
		var level model.DegreeLevel
		if lvl, ok := model.ParseDegreeLevel(raw); ok {
			level = lvl
		}

		grads = append(grads, model.GraduateRecord{
			CIPCode:     NormalizeCIP(cellAt(row, cipIdx)),
			RawDegree:   raw,
			DegreeLevel: level,
			Graduates:   int64(count),
			Year:        year,
			Region:      region,
		})
	}
	return grads, nil
}

// ── 映射表 ──

// ParseCrosswalkCSV 解析 CSV 格式的 CIP ↔ SOC 映射表（正向或反向列序均可）
func ParseCrosswalkCSV(r io.Reader) ([]model.CrosswalkRecord, error) {
	h, rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("映射表: %w", err)
	}
	return crosswalkFromRows(h, rows)
}

func crosswalkFromRows(h header, rows [][]string) ([]model.CrosswalkRecord, error) {
	cipIdx, err := h.require("映射表", cipAliases)
	if err != nil {
		return nil, err
	}
	socIdx, err := h.require("映射表", socAliases)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.CrosswalkRecord]struct{}, len(rows))
	out := make([]model.CrosswalkRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.CrosswalkRecord{
			CIPCode: NormalizeCIP(cellAt(row, cipIdx)),
			SOCCode: cellAt(row, socIdx),
		}
		if rec.CIPCode == "" || rec.SOCCode == "" {
			continue
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}
