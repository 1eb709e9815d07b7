package service

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/repository"
)

func newPostServiceForTest(t *testing.T, backend *chain.MemoryBackend) (PostService, *ledger.Ledger, *Refresher) {
	t.Helper()
	db := setupServiceDB(t)
	led := newServiceLedger(t)
	postRepo := repository.NewPostRepository(db)
	indexer := NewIndexer(backend, db, postRepo, 50, time.Second)
	refresher := NewRefresher(backend, indexer, time.Millisecond, 16)
	return NewPostService(backend, led, postRepo, refresher), led, refresher
}

func decodePseudoCalldata(t *testing.T, data string) string {
	t.Helper()
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	require.NoError(t, err)
	return string(raw)
}

func fund(backend *chain.MemoryBackend, addr string, units int64) {
	backend.SetBalance(addr, big.NewInt(units))
	backend.SetAllowance(addr, big.NewInt(units))
}

func TestCreatePostPreflight(t *testing.T) {
	backend := chain.NewMemory()
	svc, _, _ := newPostServiceForTest(t, backend)
	ctx := context.Background()

	// 默认 fee 10000（6 位小数下 0.01），先不给钱
	_, err := svc.CreatePost(ctx, addrAlice, "hello", "")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	backend.SetBalance(addrAlice, big.NewInt(1_000_000))
	_, err = svc.CreatePost(ctx, addrAlice, "hello", "")
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	backend.SetAllowance(addrAlice, big.NewInt(1_000_000))
	tx, err := svc.CreatePost(ctx, addrAlice, "hello", "")
	require.NoError(t, err)
	require.NotEmpty(t, tx.Data)
	require.NotEmpty(t, tx.To)

	_, err = svc.CreatePost(ctx, addrAlice, "", "")
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestCreatePostAppendsMedia(t *testing.T) {
	backend := chain.NewMemory()
	svc, _, _ := newPostServiceForTest(t, backend)
	fund(backend, addrAlice, 1_000_000)

	tx, err := svc.CreatePost(context.Background(), addrAlice, "look", "https://cdn.example/a.png")
	require.NoError(t, err)
	// memory 后端的伪 calldata 带原文，正好能断言媒体标记被拼进内容
	require.Contains(t, decodePseudoCalldata(t, tx.Data), "[media:https://cdn.example/a.png]")
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	backend := chain.NewMemory()
	db := setupServiceDB(t)
	led := newServiceLedger(t)
	postRepo := repository.NewPostRepository(db)
	indexer := NewIndexer(backend, db, postRepo, 50, time.Second)
	refresher := NewRefresher(backend, indexer, time.Millisecond, 16)
	svc := NewPostService(backend, led, postRepo, refresher)
	ctx := context.Background()

	p := backend.AddPost(addrAlice, "original")
	require.NoError(t, indexer.SyncOnce(ctx))
	fund(backend, addrBob, 1_000_000)

	_, err := svc.Comment(ctx, addrBob, p.ID, "nice")
	require.NoError(t, err)

	notes := led.Notifications(addrAlice)
	require.Len(t, notes, 1)
	require.Equal(t, ledger.TypeComment, notes[0].Type)
	require.Equal(t, addrBob, notes[0].From)
}

func TestTipParsesDecimalAmount(t *testing.T) {
	backend := chain.NewMemory()
	svc, led, _ := newPostServiceForTest(t, backend)
	ctx := context.Background()
	fund(backend, addrAlice, 10_000_000)

	_, err := svc.Tip(ctx, addrAlice, addrBob, "1.5")
	require.NoError(t, err)

	notes := led.Notifications(addrBob)
	require.Len(t, notes, 1)
	require.Equal(t, ledger.TypeTip, notes[0].Type)
	require.Equal(t, "1.5", notes[0].Amount)

	// tip 金额也计入预检：余额只够手续费时应拒绝
	backend.SetBalance(addrCarol, big.NewInt(10_000))
	backend.SetAllowance(addrCarol, big.NewInt(10_000))
	_, err = svc.Tip(ctx, addrCarol, addrBob, "1.0")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = svc.Tip(ctx, addrAlice, "bogus", "1.0")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestSetProfileEncodesStructuredBio(t *testing.T) {
	backend := chain.NewMemory()
	svc, _, _ := newPostServiceForTest(t, backend)
	fund(backend, addrAlice, 1_000_000)

	tx, err := svc.SetProfile(context.Background(), addrAlice, "alice", "Alice", "builder", "ipfs://x")
	require.NoError(t, err)
	payload := decodePseudoCalldata(t, tx.Data)
	require.Contains(t, payload, `{\"displayName\":\"Alice\",\"bio\":\"builder\"}`)
}

func TestConfirmEnqueuesRefresh(t *testing.T) {
	backend := chain.NewMemory()
	svc, _, refresher := newPostServiceForTest(t, backend)

	svc.Confirm("0xdeadbeef")
	require.Equal(t, 1, refresher.QueueLen())
}
