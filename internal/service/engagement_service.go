package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/repository"
)

var ErrInvalidAddress = errors.New("service: invalid address")

// EngagementService 本地互动台账的业务入口。
// 点赞/转发翻转时从帖子缓存解析作者，通知由台账负责发给作者。
type EngagementService interface {
	ToggleLike(ctx context.Context, account, postID string) (bool, error)
	ToggleRepost(ctx context.Context, account, postID string) (bool, error)
	IsLiked(account, postID string) bool
	IsReposted(account, postID string) bool
	LocalLikeCount(postID string) int
	LocalRepostCount(postID string) int
	Reposts(account string) []ledger.Record

	Follow(account, target string) error
	Unfollow(account, target string) error
	IsFollowing(account, target string) bool
	Following(account string) []string
	Followers(account string) []string

	Notifications(account string) []ledger.Notification
	UnreadCount(account string) int
	MarkRead(account, notificationID string) error
	MarkAllRead(account string) error
	ClearNotifications(account string) error
}

type engagementService struct {
	led      *ledger.Ledger
	postRepo repository.PostRepository
}

func NewEngagementService(led *ledger.Ledger, postRepo repository.PostRepository) EngagementService {
	return &engagementService{led: led, postRepo: postRepo}
}

// postAuthor 从缓存解析作者；未索引到的帖子不发互动通知
func (s *engagementService) postAuthor(ctx context.Context, postID string) string {
	id, err := strconv.ParseUint(postID, 10, 64)
	if err != nil {
		return ""
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return post.Author
}

func (s *engagementService) ToggleLike(ctx context.Context, account, postID string) (bool, error) {
	return s.led.Toggle(ledger.FeatureLike, account, postID, s.postAuthor(ctx, postID))
}

func (s *engagementService) ToggleRepost(ctx context.Context, account, postID string) (bool, error) {
	return s.led.Toggle(ledger.FeatureRepost, account, postID, s.postAuthor(ctx, postID))
}

func (s *engagementService) IsLiked(account, postID string) bool {
	return s.led.IsActive(ledger.FeatureLike, account, postID)
}

func (s *engagementService) IsReposted(account, postID string) bool {
	return s.led.IsActive(ledger.FeatureRepost, account, postID)
}

func (s *engagementService) LocalLikeCount(postID string) int {
	return s.led.CountForPost(ledger.FeatureLike, postID)
}

func (s *engagementService) LocalRepostCount(postID string) int {
	return s.led.CountForPost(ledger.FeatureRepost, postID)
}

func (s *engagementService) Reposts(account string) []ledger.Record {
	return s.led.RecordsFor(ledger.FeatureRepost, account)
}

func (s *engagementService) Follow(account, target string) error {
	if !format.IsHexAddress(target) {
		return ErrInvalidAddress
	}
	return s.led.Follow(account, target)
}

func (s *engagementService) Unfollow(account, target string) error {
	if !format.IsHexAddress(target) {
		return ErrInvalidAddress
	}
	return s.led.Unfollow(account, target)
}

func (s *engagementService) IsFollowing(account, target string) bool {
	return s.led.IsFollowing(account, target)
}

func (s *engagementService) Following(account string) []string { return s.led.Following(account) }
func (s *engagementService) Followers(account string) []string { return s.led.Followers(account) }

func (s *engagementService) Notifications(account string) []ledger.Notification {
	return s.led.Notifications(account)
}

func (s *engagementService) UnreadCount(account string) int { return s.led.UnreadCount(account) }

func (s *engagementService) MarkRead(account, notificationID string) error {
	return s.led.MarkRead(account, notificationID)
}

func (s *engagementService) MarkAllRead(account string) error { return s.led.MarkAllRead(account) }

func (s *engagementService) ClearNotifications(account string) error { return s.led.ClearAll(account) }
