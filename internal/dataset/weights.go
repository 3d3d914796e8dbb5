package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/internal/model"
	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// WeightProvider 在装载期填充 LMI 行的三列学历占比（0–100）。
// 计算核心只读取这三列，不关心数值来源。
type WeightProvider interface {
	Name() string
	Apply(occs []model.OccupationRecord) error
}

// NewWeightProvider 按配置创建权重来源
func NewWeightProvider(cfg *config.WeightsConfig) (WeightProvider, error) {
	form, err := ParseFractionForm(cfg.FractionForm)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "", "columns":
		return ColumnWeights{Form: form}, nil
	case "file":
		fw, err := NewFileWeights(cfg.Path)
		if err != nil {
			return nil, err
		}
		fw.Form = form
		return fw, nil
	case "synthetic":
		return SeededWeights{Seed: cfg.Seed}, nil
	}
	return nil, fmt.Errorf("不支持的权重来源 %q", cfg.Provider)
}

// FractionForm 数据源占比列的数值形式
type FractionForm string

const (
	// FractionAuto 逐列检测：最大值 ≤ 1 视为小数形式
	FractionAuto FractionForm = "auto"
	// FractionPercent 已是 0–100 百分数，不换算
	FractionPercent FractionForm = "percent"
	// FractionFraction 0–1 小数，全部 ×100
	FractionFraction FractionForm = "fraction"
)

// ParseFractionForm 解析配置值，空串按 auto 处理
func ParseFractionForm(s string) (FractionForm, error) {
	switch f := FractionForm(s); f {
	case "":
		return FractionAuto, nil
	case FractionAuto, FractionPercent, FractionFraction:
		return f, nil
	}
	return "", fmt.Errorf("不支持的占比列形式 %q（auto | percent | fraction）", s)
}

// NormalizePercentColumns 按 form 把三列占比统一为百分数。
// auto 逐列检测小数形式（最大值 ≤ 1）：全部值都不超过 1% 的百分数列会被误判，
// 这类数据源应显式配置 percent。全 0 列保持不变。
func NormalizePercentColumns(occs []model.OccupationRecord, form FractionForm) {
	if form == FractionPercent {
		return
	}
	cols := []func(o *model.OccupationRecord) *float64{
		func(o *model.OccupationRecord) *float64 { return &o.PctDoctoral },
		func(o *model.OccupationRecord) *float64 { return &o.PctMaster },
		func(o *model.OccupationRecord) *float64 { return &o.PctBachelor },
	}
	for _, col := range cols {
		maxV := 0.0
		for i := range occs {
			maxV = math.Max(maxV, *col(&occs[i]))
		}
		if maxV == 0 || (form != FractionFraction && maxV > 1) {
			continue
		}
		for i := range occs {
			*col(&occs[i]) *= 100
		}
	}
}

// ── columns：沿用数据源自带列 ──

// ColumnWeights 使用 LMI 数据源自带的 ONET 占比列；零值 Form 按 auto 处理
type ColumnWeights struct {
	Form FractionForm
}

func (ColumnWeights) Name() string { return "columns" }

func (w ColumnWeights) Apply(occs []model.OccupationRecord) error {
	NormalizePercentColumns(occs, w.Form)
	return nil
}

// ── file：外部权重表 ──

// AttainmentWeights 单个职业的学历占比
type AttainmentWeights struct {
	Doctoral float64 `yaml:"doctoral"`
	Master   float64 `yaml:"master"`
	Bachelor float64 `yaml:"bachelor"`
}

// weightsFile 权重表文件结构：
//
//	occupations:
//	  "29-1141": {doctoral: 2, master: 18, bachelor: 65}
type weightsFile struct {
	Occupations map[string]AttainmentWeights `yaml:"occupations"`
}

// FileWeights 从 YAML 权重表读取占比，表中未列出的职业保留数据源原值
type FileWeights struct {
	Form  FractionForm // 表外职业的数据源占比列形式
	table map[string]AttainmentWeights
}

// NewFileWeights 读取并校验 YAML 权重表
func NewFileWeights(path string) (*FileWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取权重表失败: %w", err)
	}
	return ParseWeightsYAML(data)
}

// ParseWeightsYAML 解析 YAML 权重表内容
func ParseWeightsYAML(data []byte) (*FileWeights, error) {
	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("%w: 权重表 YAML: %v", pkgerrors.ErrMalformedData, err)
	}
	for soc, w := range wf.Occupations {
		for _, v := range []float64{w.Doctoral, w.Master, w.Bachelor} {
			if v < 0 || v > 100 {
				return nil, fmt.Errorf("%w: 权重表 %s 占比 %v 超出 0–100", pkgerrors.ErrMalformedData, soc, v)
			}
		}
	}
	return &FileWeights{table: wf.Occupations}, nil
}

func (*FileWeights) Name() string { return "file" }

func (w *FileWeights) Apply(occs []model.OccupationRecord) error {
	NormalizePercentColumns(occs, w.Form)
	for i := range occs {
		aw, ok := w.table[occs[i].SOCCode]
		if !ok {
			continue
		}
		occs[i].PctDoctoral = aw.Doctoral
		occs[i].PctMaster = aw.Master
		occs[i].PctBachelor = aw.Bachelor
	}
	return nil
}

// ── synthetic：固定种子伪随机占比 ──

// SeededWeights 用固定种子生成占比，仅用于复现旧版数值输出；不代表真实学历统计。
// 同一种子、同一行序得到相同结果。
type SeededWeights struct {
	Seed int64
}

func (SeededWeights) Name() string { return "synthetic" }

func (w SeededWeights) Apply(occs []model.OccupationRecord) error {
	rng := rand.New(rand.NewSource(w.Seed))
	for i := range occs {
		occs[i].PctDoctoral = float64(rng.Intn(101))
		occs[i].PctMaster = float64(rng.Intn(101))
		occs[i].PctBachelor = float64(rng.Intn(101))
	}
	return nil
}
