package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySelfSuppressed(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Notify("0xB", TypeLike, "0xb", NotifyOptions{PostID: "1"}))
	assert.Empty(t, l.Notifications("0xB"))
}

func TestNotifyStoredUnderRecipientOnly(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Notify("0xB", TypeTip, "0xA", NotifyOptions{Amount: "1.50"}))
	assert.Len(t, l.Notifications("0xB"), 1)
	assert.Empty(t, l.Notifications("0xA"))
}

func TestNotificationCapKeepsNewest(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 150; i++ {
		require.NoError(t, l.Notify("0xB", TypeLike, "0xA", NotifyOptions{PostID: fmt.Sprintf("%d", i)}))
	}

	list := l.Notifications("0xB")
	require.Len(t, list, maxNotifications)
	// 最新在前：第 149 条在头，第 50 条在尾
	assert.Equal(t, "149", list[0].PostID)
	assert.Equal(t, "50", list[len(list)-1].PostID)
}

func TestNotificationIDsUnique(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 50; i++ {
		require.NoError(t, l.Notify("0xB", TypeComment, "0xA", NotifyOptions{}))
	}
	seen := make(map[string]bool)
	for _, n := range l.Notifications("0xB") {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestMarkRead(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Notify("0xB", TypeLike, "0xA", NotifyOptions{PostID: "1"}))
	require.NoError(t, l.Notify("0xB", TypeFollow, "0xC", NotifyOptions{}))

	list := l.Notifications("0xB")
	require.Len(t, list, 2)
	require.NoError(t, l.MarkRead("0xB", list[0].ID))

	assert.Equal(t, 1, l.UnreadCount("0xB"))

	// 不存在的 ID 是 no-op
	require.NoError(t, l.MarkRead("0xB", "missing"))
	assert.Equal(t, 1, l.UnreadCount("0xB"))
}

func TestMarkAllRead(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Notify("0xB", TypeLike, "0xA", NotifyOptions{}))
	}
	require.Equal(t, 5, l.UnreadCount("0xB"))

	require.NoError(t, l.MarkAllRead("0xB"))
	assert.Equal(t, 0, l.UnreadCount("0xB"))
	assert.Len(t, l.Notifications("0xB"), 5)
}

func TestClearAll(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Notify("0xB", TypeLike, "0xA", NotifyOptions{}))
	require.NoError(t, l.Notify("0xC", TypeLike, "0xA", NotifyOptions{}))

	require.NoError(t, l.ClearAll("0xB"))
	assert.Empty(t, l.Notifications("0xB"))
	assert.Equal(t, 0, l.UnreadCount("0xB"))
	// 其他账户分区不受影响
	assert.Len(t, l.Notifications("0xC"), 1)
}

func TestNotificationsSortedNewestFirst(t *testing.T) {
	l := newTestLedger(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Notify("0xB", TypeLike, "0xA", NotifyOptions{PostID: fmt.Sprintf("%d", i)}))
	}
	list := l.Notifications("0xB")
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, list[i-1].Timestamp, list[i].Timestamp)
	}
	assert.Equal(t, "2", list[0].PostID)
}
