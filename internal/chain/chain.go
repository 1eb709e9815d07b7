package chain

import (
	"context"
	"errors"
	"math/big"
)

// 合约是内容的唯一权威数据源；本服务只通过这套固定 ABI 读写。
// 写操作不由服务端代签：Prepare* 只产出 calldata，由用户钱包签名广播，
// 服务端随后通过 WaitConfirmed + 延迟刷新观察新状态（链上无读后写一致性保证）。

var ErrTxFailed = errors.New("chain: transaction reverted")

// Post 链上帖子。QuotedPostID 为 0 表示普通帖；
// 链上 quote（付费 repostPost）与台账里的本地 repost 是两个独立计数。
type Post struct {
	ID           uint64 `json:"id"`
	Author       string `json:"author"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
	LikeCount    uint64 `json:"likeCount"`
	CommentCount uint64 `json:"commentCount"`
	RepostCount  uint64 `json:"repostCount"`
	QuotedPostID uint64 `json:"quotedPostId"`
}

type Comment struct {
	ID        uint64 `json:"id"`
	PostID    uint64 `json:"postId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type Message struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// RawProfile profiles(address) 的原始元组；bio 的双格式解码在 profile 包
type RawProfile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
	CreatedAt int64  `json:"createdAt"`
}

type UserStats struct {
	PostCount    uint64   `json:"postCount"`
	CommentCount uint64   `json:"commentCount"`
	MessageCount uint64   `json:"messageCount"`
	TotalFeePaid *big.Int `json:"totalFeePaid"`
}

type FeeEntry struct {
	User     string   `json:"user"`
	TotalFee *big.Int `json:"totalFee"`
}

type Totals struct {
	Posts    uint64 `json:"posts"`
	Users    uint64 `json:"users"`
	Comments uint64 `json:"comments"`
	Messages uint64 `json:"messages"`
}

// TxRequest 待钱包签名的交易；Data 为 0x 前缀 calldata
type TxRequest struct {
	To    string   `json:"to"`
	Data  string   `json:"data"`
	Value *big.Int `json:"value,omitempty"`
}

// Backend 链后端。evm 实现走 JSON-RPC，memory 实现用于测试与本地模式。
type Backend interface {
	Profile(ctx context.Context, addr string) (RawProfile, error)
	UserStats(ctx context.Context, addr string) (UserStats, error)
	FeeAmount(ctx context.Context) (*big.Int, error)
	TokenDecimals(ctx context.Context) (uint8, error)
	TokenBalance(ctx context.Context, addr string) (*big.Int, error)
	TokenAllowance(ctx context.Context, owner string) (*big.Int, error)
	LatestPosts(ctx context.Context, n int) ([]Post, error)
	UserPosts(ctx context.Context, addr string, n int) ([]Post, error)
	CommentsForPost(ctx context.Context, postID uint64, n int) ([]Comment, error)
	MessagesByUser(ctx context.Context, addr string, n int) ([]Message, error)
	TopUsersByFee(ctx context.Context, n int) ([]FeeEntry, error)
	HasLikedPost(ctx context.Context, postID uint64, addr string) (bool, error)
	Totals(ctx context.Context) (Totals, error)

	PrepareCreatePost(content string) (TxRequest, error)
	PrepareComment(postID uint64, content string) (TxRequest, error)
	PrepareQuote(postID uint64, content string) (TxRequest, error)
	PrepareLike(postID uint64) (TxRequest, error)
	PrepareTip(to string, amount *big.Int) (TxRequest, error)
	PrepareMessage(to, content string) (TxRequest, error)
	PrepareSetProfile(username, bio, avatar string) (TxRequest, error)
	PrepareApprove(amount *big.Int) (TxRequest, error)

	// WaitConfirmed 阻塞到交易上链；revert 返回 ErrTxFailed
	WaitConfirmed(ctx context.Context, txHash string) error
}
