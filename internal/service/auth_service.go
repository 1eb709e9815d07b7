package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/pulsechat/internal/format"
)

var (
	ErrNonceExpired = errors.New("service: nonce missing or expired")
	ErrBadSignature = errors.New("service: signature does not match address")
	ErrBadToken     = errors.New("service: invalid token")
)

// AuthService 钱包签名登录。
// 流程：下发一次性 nonce -> 钱包对挑战文本 personal_sign -> 服务端恢复地址比对 -> 发 JWT。
// 服务端全程不接触私钥。
type AuthService interface {
	Nonce(ctx context.Context, address string) (nonce, message string, err error)
	Login(ctx context.Context, address, signature string) (token string, err error)
	Verify(token string) (address string, err error)
}

type authService struct {
	cache    *redis.Client
	secret   []byte
	tokenTTL time.Duration
	nonceTTL time.Duration
}

func NewAuthService(cache *redis.Client, secret string, tokenTTL, nonceTTL time.Duration) AuthService {
	return &authService{cache: cache, secret: []byte(secret), tokenTTL: tokenTTL, nonceTTL: nonceTTL}
}

func nonceKey(addr string) string {
	return fmt.Sprintf("auth:nonce:%s", format.NormalizeAddress(addr))
}

func challengeMessage(nonce string) string {
	return fmt.Sprintf("PulseChat login\n\nNonce: %s", nonce)
}

func (s *authService) Nonce(ctx context.Context, address string) (string, string, error) {
	if !format.IsHexAddress(address) {
		return "", "", ErrInvalidAddress
	}
	nonce := uuid.NewString()
	if err := s.cache.Set(ctx, nonceKey(address), nonce, s.nonceTTL).Err(); err != nil {
		return "", "", fmt.Errorf("store nonce: %w", err)
	}
	return nonce, challengeMessage(nonce), nil
}

func (s *authService) Login(ctx context.Context, address, signature string) (string, error) {
	if !format.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	nonce, err := s.cache.Get(ctx, nonceKey(address)).Result()
	if err != nil {
		return "", ErrNonceExpired
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", ErrBadSignature
	}
	// personal_sign 的 v 是 27/28，恢复公钥前归一到 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	hash := accounts.TextHash([]byte(challengeMessage(nonce)))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", ErrBadSignature
	}
	recovered := format.NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex())
	if recovered != format.NormalizeAddress(address) {
		return "", ErrBadSignature
	}

	// nonce 一次性，验签通过立即作废
	_ = s.cache.Del(ctx, nonceKey(address)).Err()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   recovered,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrBadToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrBadToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrBadToken
	}
	return claims.Subject, nil
}
