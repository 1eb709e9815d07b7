package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/pulsechat/internal/kv"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/model"
	"github.com/d60-Lab/pulsechat/internal/repository"
)

var (
	addrAlice = "0x" + strings.Repeat("aa", 20)
	addrBob   = "0x" + strings.Repeat("bb", 20)
	addrCarol = "0x" + strings.Repeat("cc", 20)
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Post{}, &model.Outbox{}, &model.Inbox{}))
	return db
}

func newServiceLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(kv.NewMemoryStore())
}

func outboxCount(t *testing.T, db *gorm.DB, status string) int64 {
	t.Helper()
	var n int64
	q := db.Model(&model.Outbox{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestEngagementToggleNotifiesAuthor(t *testing.T) {
	db := setupServiceDB(t)
	led := newServiceLedger(t)
	postRepo := repository.NewPostRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Post{ID: 1, Author: addrAlice, Content: "gm"}).Error)

	svc := NewEngagementService(led, postRepo)

	active, err := svc.ToggleLike(ctx, addrBob, "1")
	require.NoError(t, err)
	require.True(t, active)
	require.True(t, svc.IsLiked(addrBob, "1"))
	require.Equal(t, 1, svc.LocalLikeCount("1"))

	notes := svc.Notifications(addrAlice)
	require.Len(t, notes, 1)
	require.Equal(t, ledger.TypeLike, notes[0].Type)
	require.Equal(t, addrBob, notes[0].From)

	// 取消点赞不应追加新通知
	active, err = svc.ToggleLike(ctx, addrBob, "1")
	require.NoError(t, err)
	require.False(t, active)
	require.Equal(t, 0, svc.LocalLikeCount("1"))
	require.Len(t, svc.Notifications(addrAlice), 1)
}

func TestEngagementFollowValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewEngagementService(newServiceLedger(t), repository.NewPostRepository(db))

	require.ErrorIs(t, svc.Follow(addrAlice, "not-an-address"), ErrInvalidAddress)
	require.NoError(t, svc.Follow(addrBob, addrAlice))
	require.True(t, svc.IsFollowing(addrBob, addrAlice))
	require.Equal(t, []string{strings.ToLower(addrBob)}, svc.Followers(addrAlice))
	require.Equal(t, 1, svc.UnreadCount(addrAlice))

	require.NoError(t, svc.Unfollow(addrBob, addrAlice))
	require.False(t, svc.IsFollowing(addrBob, addrAlice))
	// 取关不产生通知
	require.Equal(t, 1, svc.UnreadCount(addrAlice))
}
