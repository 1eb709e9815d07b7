package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/repository"
	"github.com/d60-Lab/pulsechat/pkg/logger"
)

var (
	ErrEmptyContent = errors.New("service: empty content")
	// 费用预检失败：余额/授权不够就不提交一笔注定失败的交易
	ErrInsufficientBalance   = errors.New("service: insufficient token balance for fee")
	ErrInsufficientAllowance = errors.New("service: insufficient token allowance for fee")
)

// PostService 链上写路径。所有写操作只产出待签名交易，
// 钱包端签名广播后通过 Confirm 登记刷新。
type PostService interface {
	CreatePost(ctx context.Context, account, content, mediaURL string) (chain.TxRequest, error)
	Comment(ctx context.Context, account string, postID uint64, content string) (chain.TxRequest, error)
	Quote(ctx context.Context, account string, postID uint64, content string) (chain.TxRequest, error)
	LikeOnChain(ctx context.Context, account string, postID uint64) (chain.TxRequest, error)
	Tip(ctx context.Context, account, to, amount string) (chain.TxRequest, error)
	SendMessage(ctx context.Context, account, to, content string) (chain.TxRequest, error)
	SetProfile(ctx context.Context, account, username, displayName, bio, avatar string) (chain.TxRequest, error)
	Approve(ctx context.Context, amount string) (chain.TxRequest, error)
	Confirm(txHash string)
}

type postService struct {
	backend   chain.Backend
	led       *ledger.Ledger
	postRepo  repository.PostRepository
	refresher *Refresher
}

func NewPostService(backend chain.Backend, led *ledger.Ledger, postRepo repository.PostRepository, refresher *Refresher) PostService {
	return &postService{backend: backend, led: led, postRepo: postRepo, refresher: refresher}
}

// preflightFee 提交前对缓存余额/授权做一次本地检查
func (s *postService) preflightFee(ctx context.Context, account string, extra ...string) error {
	fee, err := s.backend.FeeAmount(ctx)
	if err != nil {
		return fmt.Errorf("read fee: %w", err)
	}
	need := new(big.Int).Set(fee)
	for _, amount := range extra {
		decimals, err := s.backend.TokenDecimals(ctx)
		if err != nil {
			return fmt.Errorf("read decimals: %w", err)
		}
		v, err := format.ParseUnits(amount, int(decimals))
		if err != nil {
			return err
		}
		need.Add(need, v)
	}

	balance, err := s.backend.TokenBalance(ctx, account)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if balance.Cmp(need) < 0 {
		return ErrInsufficientBalance
	}
	allowance, err := s.backend.TokenAllowance(ctx, account)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if allowance.Cmp(need) < 0 {
		return ErrInsufficientAllowance
	}
	return nil
}

// notify 互动通知是本地 overlay，提交即落账，不等链上确认
func (s *postService) notify(recipient string, typ ledger.Type, from string, opts ledger.NotifyOptions) {
	if recipient == "" {
		return
	}
	if err := s.led.Notify(recipient, typ, from, opts); err != nil {
		logger.Warn("post: notification not saved", zap.String("type", string(typ)), zap.Error(err))
	}
}

func (s *postService) authorOf(ctx context.Context, postID uint64) string {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return ""
	}
	return post.Author
}

func (s *postService) CreatePost(ctx context.Context, account, content, mediaURL string) (chain.TxRequest, error) {
	if content == "" && mediaURL == "" {
		return chain.TxRequest{}, ErrEmptyContent
	}
	if err := s.preflightFee(ctx, account); err != nil {
		return chain.TxRequest{}, err
	}
	return s.backend.PrepareCreatePost(format.AppendMedia(content, mediaURL))
}

func (s *postService) Comment(ctx context.Context, account string, postID uint64, content string) (chain.TxRequest, error) {
	if content == "" {
		return chain.TxRequest{}, ErrEmptyContent
	}
	if err := s.preflightFee(ctx, account); err != nil {
		return chain.TxRequest{}, err
	}
	tx, err := s.backend.PrepareComment(postID, content)
	if err != nil {
		return chain.TxRequest{}, err
	}
	s.notify(s.authorOf(ctx, postID), ledger.TypeComment, account,
		ledger.NotifyOptions{PostID: strconv.FormatUint(postID, 10)})
	return tx, nil
}

// Quote 链上付费 quote（合约里叫 repostPost），与台账免费 repost 是两个动作
func (s *postService) Quote(ctx context.Context, account string, postID uint64, content string) (chain.TxRequest, error) {
	if err := s.preflightFee(ctx, account); err != nil {
		return chain.TxRequest{}, err
	}
	tx, err := s.backend.PrepareQuote(postID, content)
	if err != nil {
		return chain.TxRequest{}, err
	}
	s.notify(s.authorOf(ctx, postID), ledger.TypeQuote, account,
		ledger.NotifyOptions{PostID: strconv.FormatUint(postID, 10)})
	return tx, nil
}

func (s *postService) LikeOnChain(ctx context.Context, account string, postID uint64) (chain.TxRequest, error) {
	return s.backend.PrepareLike(postID)
}

func (s *postService) Tip(ctx context.Context, account, to, amount string) (chain.TxRequest, error) {
	if !format.IsHexAddress(to) {
		return chain.TxRequest{}, ErrInvalidAddress
	}
	if err := s.preflightFee(ctx, account, amount); err != nil {
		return chain.TxRequest{}, err
	}
	decimals, err := s.backend.TokenDecimals(ctx)
	if err != nil {
		return chain.TxRequest{}, err
	}
	v, err := format.ParseUnits(amount, int(decimals))
	if err != nil {
		return chain.TxRequest{}, err
	}
	tx, err := s.backend.PrepareTip(to, v)
	if err != nil {
		return chain.TxRequest{}, err
	}
	s.notify(to, ledger.TypeTip, account, ledger.NotifyOptions{Amount: amount})
	return tx, nil
}

func (s *postService) SendMessage(ctx context.Context, account, to, content string) (chain.TxRequest, error) {
	if content == "" {
		return chain.TxRequest{}, ErrEmptyContent
	}
	if !format.IsHexAddress(to) {
		return chain.TxRequest{}, ErrInvalidAddress
	}
	if err := s.preflightFee(ctx, account); err != nil {
		return chain.TxRequest{}, err
	}
	tx, err := s.backend.PrepareMessage(to, content)
	if err != nil {
		return chain.TxRequest{}, err
	}
	s.notify(to, ledger.TypeMessage, account, ledger.NotifyOptions{})
	return tx, nil
}

// SetProfile 新写入一律用结构化 bio 编码；旧的纯文本记录由读侧兼容
func (s *postService) SetProfile(ctx context.Context, account, username, displayName, bio, avatar string) (chain.TxRequest, error) {
	if err := s.preflightFee(ctx, account); err != nil {
		return chain.TxRequest{}, err
	}
	encoded, err := json.Marshal(map[string]string{"displayName": displayName, "bio": bio})
	if err != nil {
		return chain.TxRequest{}, err
	}
	return s.backend.PrepareSetProfile(username, string(encoded), avatar)
}

func (s *postService) Approve(ctx context.Context, amount string) (chain.TxRequest, error) {
	decimals, err := s.backend.TokenDecimals(ctx)
	if err != nil {
		return chain.TxRequest{}, err
	}
	v, err := format.ParseUnits(amount, int(decimals))
	if err != nil {
		return chain.TxRequest{}, err
	}
	return s.backend.PrepareApprove(v)
}

// Confirm 登记一笔已广播的交易，确认后延迟重读链上状态
func (s *postService) Confirm(txHash string) { s.refresher.Enqueue(txHash) }
