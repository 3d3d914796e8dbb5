package dataset

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Marky00100/program-gap/internal/model"
	"github.com/Marky00100/program-gap/internal/repository"
)

// Loader 装载一份完整的数据快照
type Loader interface {
	Load(ctx context.Context) (*Tables, error)
}

// URIs 四张表的资源位置
type URIs struct {
	LMI       string
	Graduates string
	Crosswalk string
	Inverse   string // 可选
}

// ── 文件 / HTTP / S3 装载 ──

// SourceLoader 从 Source 并行拉取并解析四张表
type SourceLoader struct {
	source  Source
	uris    URIs
	opts    Options
	weights WeightProvider
	logger  *zap.Logger
}

// NewSourceLoader 创建 SourceLoader
func NewSourceLoader(source Source, uris URIs, opts Options, weights WeightProvider, logger *zap.Logger) *SourceLoader {
	if weights == nil {
		weights = ColumnWeights{}
	}
	if opts.AllRegionsLabel == "" {
		opts.AllRegionsLabel = DefaultAllRegionsLabel
	}
	return &SourceLoader{source: source, uris: uris, opts: opts, weights: weights, logger: logger}
}

// Load 并行拉取；任一失败即取消其余请求并返回首个错误
func (l *SourceLoader) Load(ctx context.Context) (*Tables, error) {
	var (
		occs    []model.OccupationRecord
		grads   []model.GraduateRecord
		xwalk   []model.CrosswalkRecord
		inverse []model.CrosswalkRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.fetch(gctx, "lmi", l.uris.LMI, func(r io.Reader) (err error) {
			occs, err = ParseOccupations(r, l.opts.AllRegionsLabel)
			return err
		})
	})
	g.Go(func() error {
		return l.fetch(gctx, "graduates", l.uris.Graduates, func(r io.Reader) (err error) {
			grads, err = ParseGraduates(r, l.opts.AllRegionsLabel)
			return err
		})
	})
	g.Go(func() error {
		return l.fetch(gctx, "crosswalk", l.uris.Crosswalk, func(r io.Reader) (err error) {
			xwalk, err = parseCrosswalk(l.uris.Crosswalk, r)
			return err
		})
	})
	if l.uris.Inverse != "" {
		g.Go(func() error {
			return l.fetch(gctx, "inverse", l.uris.Inverse, func(r io.Reader) (err error) {
				inverse, err = parseCrosswalk(l.uris.Inverse, r)
				return err
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return finalize(l.source.Kind(), l.opts, l.weights, occs, grads, xwalk, inverse, l.logger)
}

func (l *SourceLoader) fetch(ctx context.Context, name, uri string, parse func(io.Reader) error) error {
	rc, err := l.source.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("拉取 %s 失败: %w", name, err)
	}
	defer rc.Close()

	if err := parse(rc); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", name, err)
	}
	l.logger.Debug("数据表拉取完成", zap.String("table", name), zap.String("uri", uri))
	return nil
}

// parseCrosswalk 按扩展名选择 xlsx 或 CSV 解析
func parseCrosswalk(uri string, r io.Reader) ([]model.CrosswalkRecord, error) {
	if isXLSX(uri) {
		return ParseCrosswalkXLSX(r)
	}
	return ParseCrosswalkCSV(r)
}

func isXLSX(uri string) bool {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".xlsx")
}

// ── PostgreSQL 装载 ──

// RepositoryLoader 从数据库读取由导入工具写入的三张表；反向映射由正向映射推导
type RepositoryLoader struct {
	repo    *repository.Repository
	opts    Options
	weights WeightProvider
	logger  *zap.Logger
}

// NewRepositoryLoader 创建 RepositoryLoader
func NewRepositoryLoader(repo *repository.Repository, opts Options, weights WeightProvider, logger *zap.Logger) *RepositoryLoader {
	if weights == nil {
		weights = ColumnWeights{}
	}
	if opts.AllRegionsLabel == "" {
		opts.AllRegionsLabel = DefaultAllRegionsLabel
	}
	return &RepositoryLoader{repo: repo, opts: opts, weights: weights, logger: logger}
}

func (l *RepositoryLoader) Load(ctx context.Context) (*Tables, error) {
	occs, err := l.repo.Occupation.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取 lmi_occupations 失败: %w", err)
	}
	grads, err := l.repo.Graduate.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取 graduate_counts 失败: %w", err)
	}
	xwalk, err := l.repo.Crosswalk.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取 program_occupation_crosswalk 失败: %w", err)
	}

	return finalize("postgres", l.opts, l.weights, occs, grads, xwalk, nil, l.logger)
}

// ── 装载后处理 ──

// finalize 计算派生列（学历权重）、按年份过滤毕业生并组装快照
func finalize(
	source string,
	opts Options,
	weights WeightProvider,
	occs []model.OccupationRecord,
	grads []model.GraduateRecord,
	xwalk, inverse []model.CrosswalkRecord,
	logger *zap.Logger,
) (*Tables, error) {
	if err := weights.Apply(occs); err != nil {
		return nil, fmt.Errorf("计算学历权重失败: %w", err)
	}

	unmapped := 0
	kept := make([]model.GraduateRecord, 0, len(grads))
	for _, g := range grads {
		if opts.GraduateYear != 0 && g.Year != 0 && g.Year != opts.GraduateYear {
			continue
		}
		if g.DegreeLevel == "" {
			unmapped++
		}
		kept = append(kept, g)
	}
	if unmapped > 0 {
		logger.Warn("部分毕业生行的学位层级无法识别，已排除在三类学位之外", zap.Int("rows", unmapped))
	}

	t := NewTables(source, opts, occs, kept, xwalk, inverse)
	logger.Info("数据快照装载完成",
		zap.String("snapshot_id", t.ID),
		zap.String("source", source),
		zap.String("weights", weights.Name()),
		zap.Int("occupations", len(t.Occupations)),
		zap.Int("graduates", len(t.Graduates)),
		zap.Int("crosswalk", len(t.Crosswalk)),
		zap.Int("inverse", len(t.Inverse)),
	)
	return t, nil
}
