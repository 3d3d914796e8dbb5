package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// Source 表格资源的读取方式
type Source interface {
	// Open 打开 uri 指向的资源，调用方负责 Close
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	// Kind 来源类型（http / file / s3），用于日志与状态展示
	Kind() string
}

// ── HTTP 来源 ──

// HTTPSource 通过 HTTP GET 拉取远端文件（如 GitHub raw 地址）
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource 创建 HTTPSource，timeout<=0 时使用 30s
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Kind() string { return "http" }

func (s *HTTPSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败 %s: %w", uri, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", pkgerrors.ErrSourceUnavailable, uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s 返回 %d", pkgerrors.ErrSourceUnavailable, uri, resp.StatusCode)
	}
	return resp.Body, nil
}

// ── 本地文件来源 ──

// FileSource 从本地目录读取，uri 为相对 baseDir 的路径或绝对路径
type FileSource struct {
	baseDir string
}

// NewFileSource 创建 FileSource
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{baseDir: baseDir}
}

func (s *FileSource) Kind() string { return "file" }

func (s *FileSource) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	path := uri
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrSourceUnavailable, err)
	}
	return f, nil
}
