package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Type 通知类型
type Type string

const (
	TypeFollow  Type = "follow"
	TypeLike    Type = "like"
	TypeComment Type = "comment"
	TypeRepost  Type = "repost"
	TypeQuote   Type = "quote"
	TypeTip     Type = "tip"
	TypeMessage Type = "message"
)

// 每个账户最多保留的通知条数，超出时剔除最旧的
const maxNotifications = 100

// Notification 存在接收者名下（绝不存在发送者名下）
type Notification struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	From      string `json:"from"`
	PostID    string `json:"postId,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"` // 毫秒
	Read      bool   `json:"read"`
}

// NotifyOptions 可选载荷
type NotifyOptions struct {
	PostID  string
	Amount  string
	Message string
}

// Notify 给 recipient 插入一条未读通知（最新在前，超 100 截断）。
// from == recipient 时静默跳过，自己的动作不通知自己。
func (l *Ledger) Notify(recipient string, typ Type, from string, opts NotifyOptions) error {
	recipient = normalize(recipient)
	from = normalize(from)
	if recipient == "" || from == recipient {
		return nil
	}

	now := l.now()
	n := Notification{
		// 纳秒时间戳 + 随机后缀，连续快速调用也不会撞 ID
		ID:        fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()[:8]),
		Type:      typ,
		From:      from,
		PostID:    opts.PostID,
		Amount:    opts.Amount,
		Message:   opts.Message,
		Timestamp: now.UnixMilli(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	list := append([]Notification{n}, doc[recipient]...)
	if len(list) > maxNotifications {
		list = list[:maxNotifications]
	}
	doc[recipient] = list
	return l.putDoc(keyNotifications, doc)
}

// Notifications 该账户的全部通知，按时间倒序
func (l *Ledger) Notifications(recipient string) []Notification {
	recipient = normalize(recipient)
	if recipient == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	list := append([]Notification(nil), doc[recipient]...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp > list[j].Timestamp })
	return list
}

// MarkRead 置单条已读；不存在则 no-op
func (l *Ledger) MarkRead(recipient, notificationID string) error {
	recipient = normalize(recipient)
	if recipient == "" {
		return ErrNoAccount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	list, ok := doc[recipient]
	if !ok {
		return nil
	}
	changed := false
	for i := range list {
		if list[i].ID == notificationID && !list[i].Read {
			list[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	doc[recipient] = list
	return l.putDoc(keyNotifications, doc)
}

// MarkAllRead 全部置已读
func (l *Ledger) MarkAllRead(recipient string) error {
	recipient = normalize(recipient)
	if recipient == "" {
		return ErrNoAccount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	list, ok := doc[recipient]
	if !ok {
		return nil
	}
	for i := range list {
		list[i].Read = true
	}
	doc[recipient] = list
	return l.putDoc(keyNotifications, doc)
}

// ClearAll 清空该账户的通知列表
func (l *Ledger) ClearAll(recipient string) error {
	recipient = normalize(recipient)
	if recipient == "" {
		return ErrNoAccount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	if _, ok := doc[recipient]; !ok {
		return nil
	}
	delete(doc, recipient)
	return l.putDoc(keyNotifications, doc)
}

// UnreadCount 未读条数
func (l *Ledger) UnreadCount(recipient string) int {
	recipient = normalize(recipient)
	if recipient == "" {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]Notification](l, keyNotifications)
	count := 0
	for _, n := range doc[recipient] {
		if !n.Read {
			count++
		}
	}
	return count
}
