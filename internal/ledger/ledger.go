package ledger

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/internal/kv"
	"github.com/d60-Lab/pulsechat/pkg/logger"
)

// Feature 互动台账的命名空间。like 与 repost 结构完全一致，只是语义不同。
// 注意本地 repost 是免费的个人转发记录，与链上付费 quote 是两个动作。
type Feature string

const (
	FeatureLike   Feature = "liked_posts"
	FeatureRepost Feature = "reposted_posts"
)

const (
	keyFollow        = "follow_data"
	keyNotifications = "notifications"
)

// ErrNoAccount 未连接账户时的互动操作
var ErrNoAccount = errors.New("ledger: no account")

// Record 单条互动记录（account -> [{postId, timestamp}]）
type Record struct {
	PostID    string `json:"postId"`
	Timestamp int64  `json:"timestamp"` // 毫秒
}

// Ledger 设备本地互动台账：likes / reposts / follows / notifications
// 四个命名空间各存一份 JSON 文档，按小写账户地址分区。
// 只是链下 best-effort 覆盖层，不跨设备同步，链上计数始终是权威数据。
type Ledger struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

func normalize(addr string) string { return strings.ToLower(strings.TrimSpace(addr)) }

// loadDoc 读取并反序列化一个命名空间文档。
// 损坏的持久化数据按空文档处理并记日志，绝不向调用方抛解析错误。
func loadDoc[T any](l *Ledger, key string) map[string]T {
	doc := make(map[string]T)
	raw, err := l.store.Get(key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logger.Warn("ledger: store read failed, treating as empty",
				zap.String("key", key), zap.Error(err))
		}
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warn("ledger: corrupt document, treating as empty",
			zap.String("key", key), zap.Error(err))
		return make(map[string]T)
	}
	return doc
}

func (l *Ledger) putDoc(key string, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return l.store.Put(key, raw)
}

// IsActive 该账户是否对该帖存在互动记录。未连接账户恒为 false。
func (l *Ledger) IsActive(f Feature, account, postID string) bool {
	account = normalize(account)
	if account == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Record](l, string(f))
	for _, r := range doc[account] {
		if r.PostID == postID {
			return true
		}
	}
	return false
}

// Toggle 翻转 (account, postID) 的互动状态，返回新状态。
// 首次激活且 author 不是本人时，给作者发一条对应类型的通知；
// 取消时不撤回通知（刻意简化，不是 bug）。
func (l *Ledger) Toggle(f Feature, account, postID, author string) (bool, error) {
	account = normalize(account)
	if account == "" {
		return false, ErrNoAccount
	}

	l.mu.Lock()
	doc := loadDoc[[]Record](l, string(f))
	records := doc[account]
	idx := -1
	for i, r := range records {
		if r.PostID == postID {
			idx = i
			break
		}
	}

	var active bool
	if idx >= 0 {
		records = append(records[:idx], records[idx+1:]...)
		if len(records) == 0 {
			delete(doc, account)
		} else {
			doc[account] = records
		}
		active = false
	} else {
		doc[account] = append(records, Record{PostID: postID, Timestamp: l.now().UnixMilli()})
		active = true
	}
	err := l.putDoc(string(f), doc)
	l.mu.Unlock()
	if err != nil {
		return !active, err
	}

	if active && author != "" {
		typ := TypeLike
		if f == FeatureRepost {
			typ = TypeRepost
		}
		// Notify 自行抑制 author == account 的自通知
		if err := l.Notify(author, typ, account, NotifyOptions{PostID: postID}); err != nil {
			logger.Warn("ledger: engagement notification not saved",
				zap.String("feature", string(f)), zap.Error(err))
		}
	}
	return active, nil
}

// CountForPost 对该帖有互动记录的去重账户数。
// 遍历全部账户的记录集，O(账户数 × 人均记录数)；本地存量小，不建索引。
func (l *Ledger) CountForPost(f Feature, postID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Record](l, string(f))
	count := 0
	for _, records := range doc {
		for _, r := range records {
			if r.PostID == postID {
				count++
				break
			}
		}
	}
	return count
}

// RecordsFor 某账户的全部互动记录，按时间倒序
func (l *Ledger) RecordsFor(f Feature, account string) []Record {
	account = normalize(account)
	if account == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Record](l, string(f))
	records := append([]Record(nil), doc[account]...)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp > records[j].Timestamp })
	return records
}
