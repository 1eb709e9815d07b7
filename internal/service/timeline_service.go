package service

import (
	"context"
	"strconv"
	"time"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/model"
	"github.com/d60-Lab/pulsechat/internal/profile"
	"github.com/d60-Lab/pulsechat/internal/repository"
)

const defaultPageSize = 20

// PostView 单条帖子的展示聚合：
// 链上内容 + 链上计数（缓存）+ 本地台账计数与 viewer 状态
type PostView struct {
	ID            uint64   `json:"id"`
	Author        string   `json:"author"`
	AuthorDisplay string   `json:"authorDisplay"`
	AuthorAvatar  string   `json:"authorAvatar,omitempty"`
	Text          string   `json:"text"`
	MediaURLs     []string `json:"mediaUrls,omitempty"`
	Timestamp     int64    `json:"timestamp"`
	PostedAt      string   `json:"postedAt"`
	QuotedPostID  uint64   `json:"quotedPostId,omitempty"`

	ChainLikeCount    uint64 `json:"chainLikeCount"`
	ChainCommentCount uint64 `json:"chainCommentCount"`
	ChainRepostCount  uint64 `json:"chainRepostCount"`

	LocalLikeCount   int  `json:"localLikeCount"`
	LocalRepostCount int  `json:"localRepostCount"`
	ViewerLiked      bool `json:"viewerLiked"`
	ViewerReposted   bool `json:"viewerReposted"`
}

type CommentView struct {
	ID            uint64 `json:"id"`
	PostID        uint64 `json:"postId"`
	Author        string `json:"author"`
	AuthorDisplay string `json:"authorDisplay"`
	Text          string `json:"text"`
	Timestamp     int64  `json:"timestamp"`
	PostedAt      string `json:"postedAt"`
}

// TimelineService 读路径：inbox 分页 + post 缓存 + 作者资料水合
type TimelineService interface {
	Timeline(ctx context.Context, viewer string, page, size int) ([]PostView, error)
	Latest(ctx context.Context, viewer string, page, size int) ([]PostView, error)
	ByAuthor(ctx context.Context, viewer, author string, page, size int) ([]PostView, error)
	PostDetail(ctx context.Context, viewer string, postID uint64) (PostView, []CommentView, error)
}

type timelineService struct {
	postRepo    repository.PostRepository
	inboxRepo   repository.InboxRepository
	backend     chain.Backend
	led         *ledger.Ledger
	profileSvc  ProfileService
	now         func() time.Time
	commentPage int
}

func NewTimelineService(postRepo repository.PostRepository, inboxRepo repository.InboxRepository, backend chain.Backend, led *ledger.Ledger, profileSvc ProfileService) TimelineService {
	return &timelineService{
		postRepo:    postRepo,
		inboxRepo:   inboxRepo,
		backend:     backend,
		led:         led,
		profileSvc:  profileSvc,
		now:         time.Now,
		commentPage: 50,
	}
}

func pageBounds(page, size int) (offset, limit int) {
	if size <= 0 {
		size = defaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}

// buildViews 把缓存行批量拼成 PostView；作者资料一轮 GetBatch 水合
func (s *timelineService) buildViews(ctx context.Context, viewer string, posts []*model.Post) ([]PostView, error) {
	authors := make([]string, 0, len(posts))
	for _, p := range posts {
		authors = append(authors, p.Author)
	}
	profiles, err := s.profileSvc.GetBatch(ctx, authors)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.buildView(viewer, p, profiles, now))
	}
	return views, nil
}

func (s *timelineService) buildView(viewer string, p *model.Post, profiles map[string]profile.Profile, now time.Time) PostView {
	text, media := format.ExtractMedia(p.Content)
	norm := format.NormalizeAddress(p.Author)
	prof := profiles[norm]
	postID := strconv.FormatUint(p.ID, 10)

	v := PostView{
		ID:            p.ID,
		Author:        norm,
		AuthorDisplay: profile.DisplayText(prof, p.Author),
		AuthorAvatar:  prof.Avatar,
		Text:          text,
		MediaURLs:     media,
		Timestamp:     p.Timestamp,
		PostedAt:      format.FormatTimestamp(p.Timestamp, now),
		QuotedPostID:  p.QuotedPostID,

		ChainLikeCount:    p.LikeCount,
		ChainCommentCount: p.CommentCount,
		ChainRepostCount:  p.RepostCount,

		LocalLikeCount:   s.led.CountForPost(ledger.FeatureLike, postID),
		LocalRepostCount: s.led.CountForPost(ledger.FeatureRepost, postID),
	}
	if viewer != "" {
		v.ViewerLiked = s.led.IsActive(ledger.FeatureLike, viewer, postID)
		v.ViewerReposted = s.led.IsActive(ledger.FeatureRepost, viewer, postID)
	}
	return v
}

func (s *timelineService) Timeline(ctx context.Context, viewer string, page, size int) ([]PostView, error) {
	offset, limit := pageBounds(page, size)
	entries, err := s.inboxRepo.ListPage(ctx, format.NormalizeAddress(viewer), offset, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []PostView{}, nil
	}
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PostID)
	}
	posts, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// inbox 顺序（score DESC）是展示顺序，GetByIDs 不保序
	byID := make(map[uint64]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return s.buildViews(ctx, viewer, ordered)
}

func (s *timelineService) Latest(ctx context.Context, viewer string, page, size int) ([]PostView, error) {
	offset, limit := pageBounds(page, size)
	posts, err := s.postRepo.Latest(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, viewer, posts)
}

func (s *timelineService) ByAuthor(ctx context.Context, viewer, author string, page, size int) ([]PostView, error) {
	if !format.IsHexAddress(author) {
		return nil, ErrInvalidAddress
	}
	offset, limit := pageBounds(page, size)
	posts, err := s.postRepo.ByAuthor(ctx, format.NormalizeAddress(author), offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, viewer, posts)
}

// PostDetail 正文走缓存，评论直连链（评论不做本地缓存）
func (s *timelineService) PostDetail(ctx context.Context, viewer string, postID uint64) (PostView, []CommentView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return PostView{}, nil, err
	}

	comments, err := s.backend.CommentsForPost(ctx, postID, s.commentPage)
	if err != nil {
		return PostView{}, nil, err
	}

	authors := []string{post.Author}
	for _, c := range comments {
		authors = append(authors, c.Author)
	}
	profiles, err := s.profileSvc.GetBatch(ctx, authors)
	if err != nil {
		return PostView{}, nil, err
	}

	now := s.now()
	view := s.buildView(viewer, post, profiles, now)

	cviews := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		norm := format.NormalizeAddress(c.Author)
		cviews = append(cviews, CommentView{
			ID:            c.ID,
			PostID:        c.PostID,
			Author:        norm,
			AuthorDisplay: profile.DisplayText(profiles[norm], c.Author),
			Text:          c.Content,
			Timestamp:     c.Timestamp,
			PostedAt:      format.FormatTimestamp(c.Timestamp, now),
		})
	}
	return view, cviews, nil
}
