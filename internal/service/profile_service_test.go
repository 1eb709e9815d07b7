package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/pulsechat/internal/chain"
)

func newCachedProfileService(t *testing.T, backend chain.Backend) (ProfileService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProfileService(backend, rdb, newServiceLedger(t), time.Minute), mr
}

func TestProfileGetCachesSnapshot(t *testing.T) {
	backend := chain.NewMemory()
	backend.SetProfileFor(addrAlice, "alice", `{"displayName":"Alice","bio":"builder"}`, "ipfs://a")
	svc, _ := newCachedProfileService(t, backend)
	ctx := context.Background()

	view, err := svc.Get(ctx, addrAlice)
	require.NoError(t, err)
	require.Equal(t, "Alice", view.Profile.DisplayName)
	require.Equal(t, "builder", view.Profile.Bio)
	require.Equal(t, "Alice", view.Display)

	// 命中缓存后链上变更对读不可见，Invalidate 后才刷新
	backend.SetProfileFor(addrAlice, "alice", `{"displayName":"Alicia","bio":"builder"}`, "ipfs://a")
	view, err = svc.Get(ctx, addrAlice)
	require.NoError(t, err)
	require.Equal(t, "Alice", view.Profile.DisplayName)

	svc.Invalidate(ctx, addrAlice)
	view, err = svc.Get(ctx, addrAlice)
	require.NoError(t, err)
	require.Equal(t, "Alicia", view.Profile.DisplayName)
}

func TestProfileLegacyBioPassthrough(t *testing.T) {
	backend := chain.NewMemory()
	backend.SetProfileFor(addrBob, "bob", "plain old bio", "")
	svc, _ := newCachedProfileService(t, backend)

	view, err := svc.Get(context.Background(), addrBob)
	require.NoError(t, err)
	require.Equal(t, "plain old bio", view.Profile.Bio)
	require.Empty(t, view.Profile.DisplayName)
	require.Equal(t, "bob", view.Display)
}

func TestProfileGetBatchHydratesMisses(t *testing.T) {
	backend := chain.NewMemory()
	backend.SetProfileFor(addrAlice, "alice", `{"displayName":"Alice","bio":""}`, "")
	backend.SetProfileFor(addrBob, "bob", `{"displayName":"Bobby","bio":""}`, "")
	svc, _ := newCachedProfileService(t, backend)
	ctx := context.Background()

	// 先把 alice 灌进缓存，batch 时 bob 走回源
	_, err := svc.Get(ctx, addrAlice)
	require.NoError(t, err)

	got, err := svc.GetBatch(ctx, []string{addrAlice, addrBob, addrAlice})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Alice", got[addrAlice].DisplayName)
	require.Equal(t, "Bobby", got[addrBob].DisplayName)
}

func TestLeaderboardFormatsFees(t *testing.T) {
	backend := chain.NewMemory()
	backend.SetProfileFor(addrAlice, "alice", `{"displayName":"Alice","bio":""}`, "")
	fund(backend, addrAlice, 10_000_000)
	fund(backend, addrBob, 10_000_000)
	// 产生手续费记录：alice 发两帖，bob 一帖
	backend.AddPost(addrAlice, "one")
	backend.AddPost(addrAlice, "two")
	backend.AddPost(addrBob, "three")

	svc, _ := newCachedProfileService(t, backend)
	board, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, 1, board[0].Rank)
	require.Equal(t, addrAlice, board[0].Address)
	require.Equal(t, "Alice", board[0].Display)
	require.Equal(t, "0.02", board[0].TotalFee)
	require.Equal(t, "0.01", board[1].TotalFee)
}

func TestStatsViewFormatsFee(t *testing.T) {
	backend := chain.NewMemory()
	backend.AddPost(addrAlice, "one")
	svc, _ := newCachedProfileService(t, backend)

	stats, err := svc.Stats(context.Background(), addrAlice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.PostCount)
	require.Equal(t, "0.01", stats.TotalFeePaid)

	totals, err := svc.Totals(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), totals.Posts)
}
