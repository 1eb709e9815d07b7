package ledger

import (
	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/pkg/logger"
)

// Follow 建立 follower -> followee 关注边。
// 自关注与重复关注均为幂等 no-op；新边会给 followee 发 follow 通知。
func (l *Ledger) Follow(follower, followee string) error {
	follower = normalize(follower)
	followee = normalize(followee)
	if follower == "" {
		return ErrNoAccount
	}
	if follower == followee {
		return nil
	}

	l.mu.Lock()
	doc := loadDoc[[]string](l, keyFollow)
	for _, addr := range doc[follower] {
		if addr == followee {
			l.mu.Unlock()
			return nil
		}
	}
	doc[follower] = append(doc[follower], followee)
	err := l.putDoc(keyFollow, doc)
	l.mu.Unlock()
	if err != nil {
		return err
	}

	if err := l.Notify(followee, TypeFollow, follower, NotifyOptions{}); err != nil {
		logger.Warn("ledger: follow notification not saved", zap.Error(err))
	}
	return nil
}

// Unfollow 移除关注边；幂等，从不产生通知
func (l *Ledger) Unfollow(follower, followee string) error {
	follower = normalize(follower)
	followee = normalize(followee)
	if follower == "" {
		return ErrNoAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]string](l, keyFollow)
	edges := doc[follower]
	idx := -1
	for i, addr := range edges {
		if addr == followee {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	edges = append(edges[:idx], edges[idx+1:]...)
	if len(edges) == 0 {
		delete(doc, follower)
	} else {
		doc[follower] = edges
	}
	return l.putDoc(keyFollow, doc)
}

func (l *Ledger) IsFollowing(follower, followee string) bool {
	follower = normalize(follower)
	followee = normalize(followee)
	if follower == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]string](l, keyFollow)
	for _, addr := range doc[follower] {
		if addr == followee {
			return true
		}
	}
	return false
}

// Following 直接查 follower 的出边
func (l *Ledger) Following(addr string) []string {
	addr = normalize(addr)
	if addr == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]string](l, keyFollow)
	return append([]string(nil), doc[addr]...)
}

// Followers 反向查询，遍历所有出边匹配目标。
// O(全部关注边)，不维护反向索引——本地边集小，简单压倒一切。
func (l *Ledger) Followers(addr string) []string {
	addr = normalize(addr)
	if addr == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := loadDoc[[]string](l, keyFollow)
	var followers []string
	for follower, followees := range doc {
		for _, followee := range followees {
			if followee == addr {
				followers = append(followers, follower)
				break
			}
		}
	}
	return followers
}
