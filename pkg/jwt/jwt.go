package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Marky00100/program-gap/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
	ErrNoSecret     = errors.New("未配置 auth.operator_secret")
)

const (
	operatorScope      = "dataset:reload"
	operatorIssuer     = "program-gap"
	defaultOperatorTTL = 24 * time.Hour
)

// Claims 运维令牌声明
type Claims struct {
	Operator string `json:"operator"`
	Scope    string `json:"scope"`
	jwtv5.RegisteredClaims
}

// Manager 运维令牌管理器
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建令牌管理器；secret 为空时 Enabled() 返回 false
func NewManager(cfg *config.AuthConfig) *Manager {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultOperatorTTL
	}
	return &Manager{secret: []byte(cfg.OperatorSecret), ttl: ttl}
}

// Enabled 是否启用鉴权
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// GenerateOperatorToken 签发可触发数据集重新装载的令牌
func (m *Manager) GenerateOperatorToken(operator string) (string, error) {
	if !m.Enabled() {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := Claims{
		Operator: operator,
		Scope:    operatorScope,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    operatorIssuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证令牌
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if !m.Enabled() {
		return nil, ErrNoSecret
	}

	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != operatorScope {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
