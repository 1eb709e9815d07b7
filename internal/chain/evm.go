package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMBackend 通过 JSON-RPC 读合约、打包 calldata
type EVMBackend struct {
	client   *ethclient.Client
	contract common.Address
	token    common.Address
	cabi     abi.ABI
	tabi     abi.ABI
}

var _ Backend = (*EVMBackend)(nil)

func NewEVM(rpcURL, contractAddr, tokenAddr string) (*EVMBackend, error) {
	cabi, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	tabi, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &EVMBackend{
		client:   client,
		contract: common.HexToAddress(contractAddr),
		token:    common.HexToAddress(tokenAddr),
		cabi:     cabi,
		tabi:     tabi,
	}, nil
}

func (b *EVMBackend) call(ctx context.Context, to common.Address, a abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := a.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := b.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	res, err := a.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return res, nil
}

func (b *EVMBackend) prepare(a abi.ABI, to common.Address, method string, args ...interface{}) (TxRequest, error) {
	data, err := a.Pack(method, args...)
	if err != nil {
		return TxRequest{}, fmt.Errorf("pack %s: %w", method, err)
	}
	return TxRequest{To: to.Hex(), Data: hexutil.Encode(data)}, nil
}

// ABI 元组的解码中间结构，字段名与 ABI components 对应

type abiPost struct {
	Id           *big.Int
	Author       common.Address
	Content      string
	Timestamp    *big.Int
	LikeCount    *big.Int
	CommentCount *big.Int
	RepostCount  *big.Int
	QuotedPostId *big.Int
}

type abiComment struct {
	Id        *big.Int
	PostId    *big.Int
	Author    common.Address
	Content   string
	Timestamp *big.Int
}

type abiMessage struct {
	From      common.Address
	To        common.Address
	Content   string
	Timestamp *big.Int
}

type abiFeeEntry struct {
	User     common.Address
	TotalFee *big.Int
}

func fromABIPost(p abiPost) Post {
	return Post{
		ID:           p.Id.Uint64(),
		Author:       strings.ToLower(p.Author.Hex()),
		Content:      p.Content,
		Timestamp:    p.Timestamp.Int64(),
		LikeCount:    p.LikeCount.Uint64(),
		CommentCount: p.CommentCount.Uint64(),
		RepostCount:  p.RepostCount.Uint64(),
		QuotedPostID: p.QuotedPostId.Uint64(),
	}
}

func (b *EVMBackend) Profile(ctx context.Context, addr string) (RawProfile, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "profiles", common.HexToAddress(addr))
	if err != nil {
		return RawProfile{}, err
	}
	return RawProfile{
		Username:  out[0].(string),
		Bio:       out[1].(string),
		Avatar:    out[2].(string),
		CreatedAt: out[3].(*big.Int).Int64(),
	}, nil
}

func (b *EVMBackend) UserStats(ctx context.Context, addr string) (UserStats, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "userStats", common.HexToAddress(addr))
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		PostCount:    out[0].(*big.Int).Uint64(),
		CommentCount: out[1].(*big.Int).Uint64(),
		MessageCount: out[2].(*big.Int).Uint64(),
		TotalFeePaid: out[3].(*big.Int),
	}, nil
}

func (b *EVMBackend) FeeAmount(ctx context.Context) (*big.Int, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "feeAmount")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (b *EVMBackend) TokenDecimals(ctx context.Context) (uint8, error) {
	out, err := b.call(ctx, b.token, b.tabi, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

func (b *EVMBackend) TokenBalance(ctx context.Context, addr string) (*big.Int, error) {
	out, err := b.call(ctx, b.token, b.tabi, "balanceOf", common.HexToAddress(addr))
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// TokenAllowance owner 对 PulseChat 合约的授权额度
func (b *EVMBackend) TokenAllowance(ctx context.Context, owner string) (*big.Int, error) {
	out, err := b.call(ctx, b.token, b.tabi, "allowance", common.HexToAddress(owner), b.contract)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (b *EVMBackend) postsCall(ctx context.Context, method string, args ...interface{}) ([]Post, error) {
	out, err := b.call(ctx, b.contract, b.cabi, method, args...)
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]abiPost)).(*[]abiPost)
	posts := make([]Post, len(raw))
	for i, p := range raw {
		posts[i] = fromABIPost(p)
	}
	return posts, nil
}

func (b *EVMBackend) LatestPosts(ctx context.Context, n int) ([]Post, error) {
	return b.postsCall(ctx, "getLatestPosts", big.NewInt(int64(n)))
}

func (b *EVMBackend) UserPosts(ctx context.Context, addr string, n int) ([]Post, error) {
	return b.postsCall(ctx, "getUserPosts", common.HexToAddress(addr), big.NewInt(int64(n)))
}

func (b *EVMBackend) CommentsForPost(ctx context.Context, postID uint64, n int) ([]Comment, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "getCommentsForPost",
		new(big.Int).SetUint64(postID), big.NewInt(int64(n)))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]abiComment)).(*[]abiComment)
	comments := make([]Comment, len(raw))
	for i, c := range raw {
		comments[i] = Comment{
			ID:        c.Id.Uint64(),
			PostID:    c.PostId.Uint64(),
			Author:    strings.ToLower(c.Author.Hex()),
			Content:   c.Content,
			Timestamp: c.Timestamp.Int64(),
		}
	}
	return comments, nil
}

func (b *EVMBackend) MessagesByUser(ctx context.Context, addr string, n int) ([]Message, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "getMessagesByUser",
		common.HexToAddress(addr), big.NewInt(int64(n)))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]abiMessage)).(*[]abiMessage)
	msgs := make([]Message, len(raw))
	for i, m := range raw {
		msgs[i] = Message{
			From:      strings.ToLower(m.From.Hex()),
			To:        strings.ToLower(m.To.Hex()),
			Content:   m.Content,
			Timestamp: m.Timestamp.Int64(),
		}
	}
	return msgs, nil
}

func (b *EVMBackend) TopUsersByFee(ctx context.Context, n int) ([]FeeEntry, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "getTopUsersByFee", big.NewInt(int64(n)))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]abiFeeEntry)).(*[]abiFeeEntry)
	entries := make([]FeeEntry, len(raw))
	for i, e := range raw {
		entries[i] = FeeEntry{User: strings.ToLower(e.User.Hex()), TotalFee: e.TotalFee}
	}
	return entries, nil
}

func (b *EVMBackend) HasLikedPost(ctx context.Context, postID uint64, addr string) (bool, error) {
	out, err := b.call(ctx, b.contract, b.cabi, "hasLikedPost",
		new(big.Int).SetUint64(postID), common.HexToAddress(addr))
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (b *EVMBackend) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	for _, e := range []struct {
		method string
		dst    *uint64
	}{
		{"totalPosts", &t.Posts},
		{"totalUsers", &t.Users},
		{"totalComments", &t.Comments},
		{"totalMessages", &t.Messages},
	} {
		out, err := b.call(ctx, b.contract, b.cabi, e.method)
		if err != nil {
			return Totals{}, err
		}
		*e.dst = out[0].(*big.Int).Uint64()
	}
	return t, nil
}

func (b *EVMBackend) PrepareCreatePost(content string) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "createPost", content)
}

func (b *EVMBackend) PrepareComment(postID uint64, content string) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "commentOnPost", new(big.Int).SetUint64(postID), content)
}

func (b *EVMBackend) PrepareQuote(postID uint64, content string) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "repostPost", new(big.Int).SetUint64(postID), content)
}

func (b *EVMBackend) PrepareLike(postID uint64) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "likePost", new(big.Int).SetUint64(postID))
}

func (b *EVMBackend) PrepareTip(to string, amount *big.Int) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "tipUSDC", common.HexToAddress(to), amount)
}

func (b *EVMBackend) PrepareMessage(to, content string) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "sendDirectMessage", common.HexToAddress(to), content)
}

func (b *EVMBackend) PrepareSetProfile(username, bio, avatar string) (TxRequest, error) {
	return b.prepare(b.cabi, b.contract, "setProfile", username, bio, avatar)
}

func (b *EVMBackend) PrepareApprove(amount *big.Int) (TxRequest, error) {
	return b.prepare(b.tabi, b.token, "approve", b.contract, amount)
}

// WaitConfirmed 轮询回执直到上链。超时语义交给 ctx，自身不设截止时间。
func (b *EVMBackend) WaitConfirmed(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		receipt, err := b.client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return ErrTxFailed
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
