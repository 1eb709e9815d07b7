package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend 测试与本地模式用的链后端。
// 读接口行为与 EVM 实现一致；Prepare* 只产出伪 calldata，不落任何状态，
// 测试通过 Add*/Set* 直接构造链上状态。
type MemoryBackend struct {
	mu         sync.RWMutex
	posts      []Post
	comments   map[uint64][]Comment
	messages   []Message
	profiles   map[string]RawProfile
	likes      map[uint64]map[string]bool
	balances   map[string]*big.Int
	allowances map[string]*big.Int
	feesPaid   map[string]*big.Int
	nextPostID uint64
	nextCmtID  uint64
	fee        *big.Int
	decimals   uint8
	now        func() time.Time
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		comments:   make(map[uint64][]Comment),
		profiles:   make(map[string]RawProfile),
		likes:      make(map[uint64]map[string]bool),
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
		feesPaid:   make(map[string]*big.Int),
		nextPostID: 1,
		nextCmtID:  1,
		fee:        big.NewInt(10000), // 0.01，6 位精度
		decimals:   6,
		now:        time.Now,
	}
}

func norm(addr string) string { return strings.ToLower(addr) }

// --- 测试/本地模式的状态构造 ---

func (m *MemoryBackend) AddPost(author, content string) Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Post{
		ID:        m.nextPostID,
		Author:    norm(author),
		Content:   content,
		Timestamp: m.now().Unix(),
	}
	m.nextPostID++
	m.posts = append(m.posts, p)
	m.addFee(author)
	return p
}

func (m *MemoryBackend) AddQuote(author, content string, quoted uint64) Post {
	p := m.AddPost(author, content)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].ID == p.ID {
			m.posts[i].QuotedPostID = quoted
			p = m.posts[i]
		}
		if m.posts[i].ID == quoted {
			m.posts[i].RepostCount++
		}
	}
	return p
}

func (m *MemoryBackend) AddComment(postID uint64, author, content string) Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Comment{
		ID:        m.nextCmtID,
		PostID:    postID,
		Author:    norm(author),
		Content:   content,
		Timestamp: m.now().Unix(),
	}
	m.nextCmtID++
	m.comments[postID] = append(m.comments[postID], c)
	for i := range m.posts {
		if m.posts[i].ID == postID {
			m.posts[i].CommentCount++
		}
	}
	m.addFee(author)
	return c
}

func (m *MemoryBackend) AddMessage(from, to, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{
		From: norm(from), To: norm(to), Content: content, Timestamp: m.now().Unix(),
	})
	m.addFee(from)
}

func (m *MemoryBackend) LikeFor(postID uint64, addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[postID] == nil {
		m.likes[postID] = make(map[string]bool)
	}
	if !m.likes[postID][norm(addr)] {
		m.likes[postID][norm(addr)] = true
		for i := range m.posts {
			if m.posts[i].ID == postID {
				m.posts[i].LikeCount++
			}
		}
	}
}

func (m *MemoryBackend) SetProfileFor(addr, username, bio, avatar string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[norm(addr)]
	if !ok {
		p.CreatedAt = m.now().Unix()
	}
	p.Username, p.Bio, p.Avatar = username, bio, avatar
	m.profiles[norm(addr)] = p
}

func (m *MemoryBackend) SetBalance(addr string, v *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[norm(addr)] = new(big.Int).Set(v)
}

func (m *MemoryBackend) SetAllowance(addr string, v *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[norm(addr)] = new(big.Int).Set(v)
}

func (m *MemoryBackend) SetFee(v *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fee = new(big.Int).Set(v)
}

// 调用方必须已持有写锁
func (m *MemoryBackend) addFee(addr string) {
	cur := m.feesPaid[norm(addr)]
	if cur == nil {
		cur = new(big.Int)
	}
	m.feesPaid[norm(addr)] = new(big.Int).Add(cur, m.fee)
}

// --- Backend 读接口 ---

func (m *MemoryBackend) Profile(_ context.Context, addr string) (RawProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[norm(addr)], nil
}

func (m *MemoryBackend) UserStats(_ context.Context, addr string) (UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr = norm(addr)
	s := UserStats{TotalFeePaid: new(big.Int)}
	for _, p := range m.posts {
		if p.Author == addr {
			s.PostCount++
		}
	}
	for _, cs := range m.comments {
		for _, c := range cs {
			if c.Author == addr {
				s.CommentCount++
			}
		}
	}
	for _, msg := range m.messages {
		if msg.From == addr {
			s.MessageCount++
		}
	}
	if fee := m.feesPaid[addr]; fee != nil {
		s.TotalFeePaid = new(big.Int).Set(fee)
	}
	return s, nil
}

func (m *MemoryBackend) FeeAmount(_ context.Context) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.fee), nil
}

func (m *MemoryBackend) TokenDecimals(_ context.Context) (uint8, error) { return m.decimals, nil }

func (m *MemoryBackend) TokenBalance(_ context.Context, addr string) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v := m.balances[norm(addr)]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (m *MemoryBackend) TokenAllowance(_ context.Context, owner string) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v := m.allowances[norm(owner)]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (m *MemoryBackend) LatestPosts(_ context.Context, n int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]Post(nil), m.posts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *MemoryBackend) UserPosts(_ context.Context, addr string, n int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr = norm(addr)
	var out []Post
	for i := len(m.posts) - 1; i >= 0; i-- {
		if m.posts[i].Author == addr {
			out = append(out, m.posts[i])
			if n > 0 && len(out) == n {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryBackend) CommentsForPost(_ context.Context, postID uint64, n int) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]Comment(nil), m.comments[postID]...)
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (m *MemoryBackend) MessagesByUser(_ context.Context, addr string, n int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr = norm(addr)
	var out []Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.From == addr || msg.To == addr {
			out = append(out, msg)
			if n > 0 && len(out) == n {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryBackend) TopUsersByFee(_ context.Context, n int) ([]FeeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]FeeEntry, 0, len(m.feesPaid))
	for addr, fee := range m.feesPaid {
		entries = append(entries, FeeEntry{User: addr, TotalFee: new(big.Int).Set(fee)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].TotalFee.Cmp(entries[j].TotalFee); c != 0 {
			return c > 0
		}
		return entries[i].User < entries[j].User
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (m *MemoryBackend) HasLikedPost(_ context.Context, postID uint64, addr string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.likes[postID][norm(addr)], nil
}

func (m *MemoryBackend) Totals(_ context.Context) (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := Totals{Posts: uint64(len(m.posts)), Messages: uint64(len(m.messages))}
	for _, cs := range m.comments {
		t.Comments += uint64(len(cs))
	}
	t.Users = uint64(len(m.profiles))
	return t, nil
}

// --- Backend 写接口（只产出伪 calldata） ---

func (m *MemoryBackend) prepare(method string, args ...interface{}) (TxRequest, error) {
	payload, err := json.Marshal(map[string]interface{}{"method": method, "args": args})
	if err != nil {
		return TxRequest{}, err
	}
	return TxRequest{To: "memory", Data: "0x" + hex.EncodeToString(payload)}, nil
}

func (m *MemoryBackend) PrepareCreatePost(content string) (TxRequest, error) {
	return m.prepare("createPost", content)
}

func (m *MemoryBackend) PrepareComment(postID uint64, content string) (TxRequest, error) {
	return m.prepare("commentOnPost", postID, content)
}

func (m *MemoryBackend) PrepareQuote(postID uint64, content string) (TxRequest, error) {
	return m.prepare("repostPost", postID, content)
}

func (m *MemoryBackend) PrepareLike(postID uint64) (TxRequest, error) {
	return m.prepare("likePost", postID)
}

func (m *MemoryBackend) PrepareTip(to string, amount *big.Int) (TxRequest, error) {
	if amount == nil || amount.Sign() <= 0 {
		return TxRequest{}, fmt.Errorf("chain: invalid tip amount")
	}
	return m.prepare("tipUSDC", to, amount.String())
}

func (m *MemoryBackend) PrepareMessage(to, content string) (TxRequest, error) {
	return m.prepare("sendDirectMessage", to, content)
}

func (m *MemoryBackend) PrepareSetProfile(username, bio, avatar string) (TxRequest, error) {
	return m.prepare("setProfile", username, bio, avatar)
}

func (m *MemoryBackend) PrepareApprove(amount *big.Int) (TxRequest, error) {
	return m.prepare("approve", amount.String())
}

func (m *MemoryBackend) WaitConfirmed(context.Context, string) error { return nil }
