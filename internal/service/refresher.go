package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/pkg/logger"
)

type refreshJob struct {
	txHash string
	enqAt  time.Time
}

// Refresher 确认后的延迟重读执行器。
// 链上没有读后写一致性，写交易确认后等一小段再触发一次索引同步，
// 新状态才会出现在本地缓存里。
type Refresher struct {
	backend   chain.Backend
	indexer   *Indexer
	delay     time.Duration
	ch        chan refreshJob
	metricsCh chan time.Duration
}

func NewRefresher(backend chain.Backend, indexer *Indexer, delay time.Duration, queueSize int) *Refresher {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Refresher{backend: backend, indexer: indexer, delay: delay, ch: make(chan refreshJob, queueSize), metricsCh: make(chan time.Duration, 65536)}
}

func (r *Refresher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-r.ch:
					r.process(job)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(r.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (r *Refresher) process(job refreshJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := r.backend.WaitConfirmed(ctx, job.txHash); err != nil {
		logger.Warn("refresher: tx not confirmed", zap.String("tx", job.txHash), zap.Error(err))
		return
	}
	// 读后写窗口：确认后仍等一拍再重读
	time.Sleep(r.delay)
	if err := r.indexer.SyncOnce(ctx); err != nil {
		logger.Warn("refresher: resync failed", zap.String("tx", job.txHash), zap.Error(err))
		return
	}
	if !job.enqAt.IsZero() {
		select {
		case r.metricsCh <- time.Since(job.enqAt):
		default:
		}
	}
}

// Enqueue 登记一笔已广播的交易等待确认后刷新
func (r *Refresher) Enqueue(txHash string) {
	select {
	case r.ch <- refreshJob{txHash: txHash, enqAt: time.Now()}:
	default:
		logger.Warn("refresher queue full, drop refresh", zap.String("tx", txHash))
	}
}

// Metrics 返回确认到刷新完成耗时的只读通道（每处理一条发送一次 duration）。
func (r *Refresher) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (r *Refresher) QueueLen() int { return len(r.ch) }
