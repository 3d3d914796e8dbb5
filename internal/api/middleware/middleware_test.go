package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "0123456789abcdef0123456789abcdef"

// serveReload 挂载 OperatorAuth 后的受保护路由，返回响应与处理器看到的 operator
func serveReload(mgr *jwt.Manager, authHeader string) (*httptest.ResponseRecorder, string) {
	var seen string
	r := gin.New()
	r.POST("/reload", OperatorAuth(mgr), func(c *gin.Context) {
		seen = c.GetString("operator")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/reload", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestOperatorAuth_Disabled(t *testing.T) {
	w, _ := serveReload(jwt.NewManager(&config.AuthConfig{}), "")
	if w.Code != http.StatusOK {
		t.Errorf("未配置密钥时应放行，实际=%d", w.Code)
	}

	w, _ = serveReload(nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("nil manager 应放行，实际=%d", w.Code)
	}
}

func TestOperatorAuth_Enabled(t *testing.T) {
	mgr := jwt.NewManager(&config.AuthConfig{OperatorSecret: testSecret, TokenTTL: time.Hour})
	token, err := mgr.GenerateOperatorToken("ops-oncall")
	if err != nil {
		t.Fatalf("GenerateOperatorToken 失败: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, operator := serveReload(mgr, tc.header)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && operator != "ops-oncall" {
				t.Errorf("期望 operator=ops-oncall，实际=%s", operator)
			}
			if tc.want == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"code":10002`) {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	// 透传合法的外部 ID
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应透传请求头中的 ID，实际 header=%s body=%s", w.Header().Get("X-Request-ID"), w.Body.String())
	}

	// 超长或含控制字符的 ID 被替换为新生成的 UUID
	for _, bad := range []string{strings.Repeat("x", 65), "abc\nforged=1", "a b"} {
		req = httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", bad)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("X-Request-ID"); len(got) != 36 || got == bad {
			t.Errorf("非法 ID %q 应被替换为 UUID，实际=%s", bad, got)
		}
	}
}

func TestLogger_GapContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/api/v1/gap", func(c *gin.Context) {
		SetGapContext(c, "snap-1", "51.0000|Bachelor|North")
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/gap?cip=51", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("期望 2 条请求日志，实际=%d", len(entries))
	}
	gap := entries[0].ContextMap()
	if gap["snapshot_id"] != "snap-1" || gap["selection"] != "51.0000|Bachelor|North" || gap["route"] != "/api/v1/gap" {
		t.Errorf("计算请求日志缺少快照信息: %v", gap)
	}
	if _, ok := entries[1].ContextMap()["snapshot_id"]; ok {
		t.Error("非计算请求不应记录 snapshot_id")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://dash.example.org/"}))
	r.GET("/api/v1/export/gaps", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/api/v1/export/gaps", nil)
	req.Header.Set("Origin", "https://dash.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://dash.example.org" {
		t.Errorf("允许的来源应回写，实际=%q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("应暴露 Content-Disposition 以便读取导出文件名")
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("不使用 Cookie，不应允许携带凭据")
	}

	req = httptest.NewRequest("OPTIONS", "/api/v1/export/gaps", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("未允许的来源不应回写 CORS 头: code=%d", w.Code)
	}
}

func TestBodyLimit_DeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/reload", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/reload", strings.NewReader(strings.Repeat("x", 32))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/reload", nil))
	if w.Code != http.StatusOK {
		t.Errorf("无请求体应放行，实际=%d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/gap", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "form-action 'self'") {
		t.Errorf("unexpected CSP: %s", w.Header().Get("Content-Security-Policy"))
	}
	if w.Header().Get("Cache-Control") != "" {
		t.Error("看板页面不应设置 no-store")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/gap", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("API 响应应禁止缓存，实际=%q", w.Header().Get("Cache-Control"))
	}
}

func TestRateLimit_NoRedis(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute))
	r.GET("/api/v1/gap", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/gap", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("未启用 Redis 时应降级放行，第 %d 次=%d", i+1, w.Code)
		}
	}
}
