package model

import "time"

// Post 链上帖子的本地缓存（链上计数是权威，这里只是索引副本）
type Post struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement:false"`
	Author       string `gorm:"type:varchar(42);index:idx_post_author"`
	Content      string `gorm:"type:text"`
	Timestamp    int64  `gorm:"index"`
	LikeCount    uint64 `gorm:"not null;default:0"`
	CommentCount uint64 `gorm:"not null;default:0"`
	RepostCount  uint64 `gorm:"not null;default:0"`
	QuotedPostID uint64 `gorm:"not null;default:0"`
	IndexedAt    time.Time
}

func (Post) TableName() string { return "posts" }
