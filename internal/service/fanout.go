package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/model"
	"github.com/d60-Lab/pulsechat/internal/repository"
)

// FanoutWorker 从 outbox 拉取新帖事件，按台账里的关注边写入各账户 inbox
type FanoutWorker struct {
	db           *gorm.DB
	led          *ledger.Ledger
	inboxRepo    repository.InboxRepository
	claimLimit   int
	pollInterval time.Duration
	workers      int
	metricsCh    chan time.Duration // outbox->processed latency
}

func NewFanoutWorker(db *gorm.DB, led *ledger.Ledger, inboxRepo repository.InboxRepository, workers, claimLimit int, pollInterval time.Duration) *FanoutWorker {
	if workers <= 0 {
		workers = 2
	}
	if claimLimit <= 0 {
		claimLimit = 128
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &FanoutWorker{db: db, led: led, inboxRepo: inboxRepo, workers: workers, claimLimit: claimLimit, pollInterval: pollInterval, metricsCh: make(chan time.Duration, 65536)}
}

func (w *FanoutWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker 轮询处理 outbox；返回停止函数。
func (w *FanoutWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *FanoutWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = w.ProcessOnce(context.Background())
		}
	}
}

// ProcessOnce claim 一批 pending outbox 并扇出
func (w *FanoutWorker) ProcessOnce(ctx context.Context) error {
	type ob struct {
		ID        string
		PostID    uint64
		Author    string
		CreatedAt time.Time
	}
	var batch []ob
	// 状态翻转在事务里完成即可，单服务部署不需要行锁
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Outbox{}).
			Select("id", "post_id", "author", "created_at").
			Where("status = ?", "pending").
			Order("created_at").
			Limit(w.claimLimit).
			Scan(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).Where("id IN ?", ids).Update("status", "processing").Error
	})
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	for _, b := range batch {
		// 关注边来自本地台账；作者自己的时间线也要进本帖
		targets := append(w.led.Followers(b.Author), b.Author)
		now := time.Now()
		score := b.CreatedAt.UnixNano()
		records := make([]model.Inbox, 0, len(targets))
		for _, account := range targets {
			records = append(records, model.Inbox{
				ID:        uuid.New().String(),
				Account:   account,
				PostID:    b.PostID,
				Score:     score,
				CreatedAt: now,
			})
		}
		if err := w.inboxRepo.CreateBatch(ctx, records); err != nil {
			return err
		}

		processed := time.Now()
		_ = w.db.WithContext(ctx).Model(&model.Outbox{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{"status": "done", "processed_at": processed, "fanout_count": int64(len(records))}).Error
		if !b.CreatedAt.IsZero() {
			select {
			case w.metricsCh <- time.Since(b.CreatedAt):
			default:
			}
		}
	}
	return nil
}
