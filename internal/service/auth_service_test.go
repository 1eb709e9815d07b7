package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newAuthForTest(t *testing.T) AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAuthService(rdb, "test-secret", time.Hour, time.Minute)
}

func TestWalletLoginRoundTrip(t *testing.T) {
	svc := newAuthForTest(t)
	ctx := context.Background()

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	_, message, err := svc.Nonce(ctx, address)
	require.NoError(t, err)
	require.Contains(t, message, "Nonce:")

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), priv)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27 // 钱包返回的 v 是 27/28

	token, err := svc.Login(ctx, address, hexutil.Encode(sig))
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(address), got)

	// nonce 一次性：同一签名不能二次登录
	_, err = svc.Login(ctx, address, hexutil.Encode(sig))
	require.ErrorIs(t, err, ErrNonceExpired)
}

func TestLoginRejectsWrongSigner(t *testing.T) {
	svc := newAuthForTest(t)
	ctx := context.Background()

	victim, err := crypto.GenerateKey()
	require.NoError(t, err)
	attacker, err := crypto.GenerateKey()
	require.NoError(t, err)
	victimAddr := crypto.PubkeyToAddress(victim.PublicKey).Hex()

	_, message, err := svc.Nonce(ctx, victimAddr)
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), attacker)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	_, err = svc.Login(ctx, victimAddr, hexutil.Encode(sig))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestLoginRejectsGarbage(t *testing.T) {
	svc := newAuthForTest(t)
	ctx := context.Background()

	_, _, err := svc.Nonce(ctx, "not-an-address")
	require.ErrorIs(t, err, ErrInvalidAddress)

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	_, _, err = svc.Nonce(ctx, address)
	require.NoError(t, err)
	_, err = svc.Login(ctx, address, "0x1234")
	require.ErrorIs(t, err, ErrBadSignature)

	_, err = svc.Verify("not.a.token")
	require.ErrorIs(t, err, ErrBadToken)
}
