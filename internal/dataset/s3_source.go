package dataset

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Marky00100/program-gap/config"
	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// S3Source 从 S3 / R2 兼容存储读取数据文件，uri 为对象 key（可带 s3://bucket/ 前缀）
type S3Source struct {
	client *s3.Client
	bucket string
}

// NewS3Source 基于静态凭证创建 S3Source；未配置凭证时走默认凭证链
func NewS3Source(ctx context.Context, cfg *config.S3Config) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Source) Kind() string { return "s3" }

func (s *S3Source) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key := s.bucket, uri
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		if b, k, found := strings.Cut(rest, "/"); found {
			bucket, key = b, k
		}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %v", pkgerrors.ErrSourceUnavailable, bucket, key, err)
	}
	return out.Body, nil
}
