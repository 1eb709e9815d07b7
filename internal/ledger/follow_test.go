package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowSelfIsNoop(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Follow("0xA", "0xA"))
	require.NoError(t, l.Follow("0xA", "0xa")) // 大小写不敏感
	assert.Empty(t, l.Following("0xA"))
	assert.Empty(t, l.Notifications("0xA"))
}

func TestFollowDeduplicates(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Follow("0xA", "0xB"))
	require.NoError(t, l.Follow("0xA", "0xB"))
	require.NoError(t, l.Follow("0xa", "0xb"))

	following := l.Following("0xA")
	require.Len(t, following, 1)
	assert.Equal(t, "0xb", following[0])

	// 重复关注只发一条通知
	assert.Len(t, l.Notifications("0xB"), 1)
}

func TestFollowNotifiesFollowee(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Follow("0xA", "0xB"))
	list := l.Notifications("0xB")
	require.Len(t, list, 1)
	assert.Equal(t, TypeFollow, list[0].Type)
	assert.Equal(t, "0xa", list[0].From)
}

func TestUnfollow(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Follow("0xA", "0xB"))
	require.True(t, l.IsFollowing("0xA", "0xB"))

	require.NoError(t, l.Unfollow("0xA", "0xB"))
	assert.False(t, l.IsFollowing("0xA", "0xB"))
	assert.NotContains(t, l.Followers("0xB"), "0xa")

	// 幂等，且 unfollow 从不产生通知
	require.NoError(t, l.Unfollow("0xA", "0xB"))
	assert.Len(t, l.Notifications("0xB"), 1) // 只剩当初的 follow 通知
}

func TestFollowersComputedByScan(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Follow("0xA", "0xC"))
	require.NoError(t, l.Follow("0xB", "0xC"))
	require.NoError(t, l.Follow("0xC", "0xA"))

	followers := l.Followers("0xC")
	assert.ElementsMatch(t, []string{"0xa", "0xb"}, followers)
	assert.ElementsMatch(t, []string{"0xc"}, l.Followers("0xA"))
	assert.Empty(t, l.Followers("0xB"))
}
