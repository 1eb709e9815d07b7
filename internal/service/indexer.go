package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/internal/model"
	"github.com/d60-Lab/pulsechat/internal/repository"
	"github.com/d60-Lab/pulsechat/pkg/logger"
)

// Indexer 轮询链上最新帖写入本地缓存。
// 新帖在同一事务里落 posts + outbox 事件，交给 FanoutWorker 扇出时间线；
// 已有帖只刷新链上计数。
type Indexer struct {
	backend      chain.Backend
	db           *gorm.DB
	postRepo     repository.PostRepository
	batchSize    int
	pollInterval time.Duration
}

func NewIndexer(backend chain.Backend, db *gorm.DB, postRepo repository.PostRepository, batchSize int, pollInterval time.Duration) *Indexer {
	if batchSize <= 0 {
		batchSize = 50
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Indexer{
		backend:      backend,
		db:           db,
		postRepo:     postRepo,
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

// Start 启动轮询；返回停止函数
func (ix *Indexer) Start() func(context.Context) error {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(ix.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := ix.SyncOnce(context.Background()); err != nil {
					logger.Warn("indexer: sync failed", zap.Error(err))
				}
			}
		}
	}()
	return func(ctx context.Context) error { close(stop); return nil }
}

// SyncOnce 拉一批最新帖并落库。确认后的延迟刷新也走这里。
func (ix *Indexer) SyncOnce(ctx context.Context) error {
	posts, err := ix.backend.LatestPosts(ctx, ix.batchSize)
	if err != nil {
		return err
	}

	for _, p := range posts {
		// 地址统一小写入库，与台账 key 保持一致
		record := &model.Post{
			ID:           p.ID,
			Author:       format.NormalizeAddress(p.Author),
			Content:      p.Content,
			Timestamp:    p.Timestamp,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			RepostCount:  p.RepostCount,
			QuotedPostID: p.QuotedPostID,
		}

		exists, err := ix.postRepo.Exists(ctx, p.ID)
		if err != nil {
			return err
		}
		if exists {
			if err := ix.postRepo.Upsert(ctx, record); err != nil {
				return err
			}
			continue
		}

		// 新帖：posts + outbox 同一事务
		now := time.Now()
		record.IndexedAt = now
		err = ix.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			out := &model.Outbox{
				ID:        uuid.New().String(),
				PostID:    p.ID,
				Author:    record.Author,
				CreatedAt: now,
				Status:    "pending",
			}
			return tx.Create(out).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}
