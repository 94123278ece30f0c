// 인입 엔드포인트 Bearer 토큰 발급/검증 (HS256)
// WEBHOOK_JWT_SECRET이 설정된 경우에만 사용

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "aiops-processor"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("auth config invalid")
)

// TokenService 구조체 정의
type TokenService struct {
	jwtSecret []byte
	now       func() time.Time
}

// TokenService 객체 생성
func NewTokenService(secret string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: WEBHOOK_JWT_SECRET is required", ErrMisconfigured)
	}
	return &TokenService{
		jwtSecret: []byte(secret),
		now:       time.Now,
	}, nil
}

// IssueToken - Alertmanager 등 호출자용 토큰 발급 (ttl <= 0 이면 만료 없음)
func (s *TokenService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ParseToken - 서명/만료/발급자 검증 후 subject 반환
func (s *TokenService) ParseToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.jwtSecret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
