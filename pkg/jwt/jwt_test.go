package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/Marky00100/program-gap/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		OperatorSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:       time.Hour,
	})
}

func TestGenerateAndParseOperatorToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateOperatorToken("ops")
	if err != nil {
		t.Fatalf("GenerateOperatorToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.Operator != "ops" {
		t.Errorf("期望 Operator=ops，实际=%s", claims.Operator)
	}
	if claims.Scope != "dataset:reload" {
		t.Errorf("期望 Scope=dataset:reload，实际=%s", claims.Scope)
	}
	if claims.Issuer != "program-gap" {
		t.Errorf("期望 Issuer=program-gap，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	// 检查过期时间约为 1h
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Errorf("TTL 期望约1h，实际=%v", ttl)
	}
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := NewManager(&config.AuthConfig{OperatorSecret: "test-secret-key-for-unit-testing-2026"})

	token, err := m.GenerateOperatorToken("ops")
	if err != nil {
		t.Fatalf("GenerateOperatorToken 失败: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("默认 TTL 期望约24h，实际=%v", ttl)
	}
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(&config.AuthConfig{})

	if m.Enabled() {
		t.Fatal("未配置密钥时不应启用")
	}
	if _, err := m.GenerateOperatorToken("ops"); err != ErrNoSecret {
		t.Errorf("期望 ErrNoSecret，实际: %v", err)
	}
	if _, err := m.ParseToken("any"); err != ErrNoSecret {
		t.Errorf("期望 ErrNoSecret，实际: %v", err)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err == nil {
		t.Error("期望解析无效 token 返回错误")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{OperatorSecret: "different-secret-key-for-unit-tests"})

	token, _ := m1.GenerateOperatorToken("ops")
	_, err := m2.ParseToken(token)
	if err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_WrongScope(t *testing.T) {
	m := newTestManager()

	claims := Claims{
		Operator: "ops",
		Scope:    "something-else",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	if _, err := m.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// 创建一个 TTL 极短的 manager 来测试过期
	m := NewManager(&config.AuthConfig{
		OperatorSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:       1 * time.Millisecond,
	})

	token, _ := m.GenerateOperatorToken("ops")
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err == nil {
		t.Error("过期 token 不应通过验证")
	}
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
