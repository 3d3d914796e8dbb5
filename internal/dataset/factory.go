package dataset

import (
	"context"
	"fmt"

	"github.com/Marky00100/program-gap/config"
)

// NewSource 按 dataset.source 创建文件类来源；postgres 不经过 Source
func NewSource(ctx context.Context, cfg *config.DatasetConfig) (Source, error) {
	switch cfg.Source {
	case "http":
		return NewHTTPSource(cfg.HTTPTimeout), nil
	case "file":
		return NewFileSource(""), nil
	case "s3":
		src, err := NewS3Source(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("dataset.source %q 不是文件类来源", cfg.Source)
	}
}

// URIsFromConfig 读取四张表的资源位置
func URIsFromConfig(cfg *config.DatasetConfig) URIs {
	return URIs{
		LMI:       cfg.LMIURI,
		Graduates: cfg.GraduatesURI,
		Crosswalk: cfg.CrosswalkURI,
		Inverse:   cfg.InverseURI,
	}
}

// OptionsFromConfig 读取快照选项
func OptionsFromConfig(cfg *config.DatasetConfig) Options {
	return Options{
		GraduateYear:    cfg.GraduateYear,
		AllRegionsLabel: cfg.AllRegionsLabel,
	}
}
