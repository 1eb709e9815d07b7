package model

import "time"

// Inbox 时间线项（按接收者地址切分，post 来自关注的作者）
type Inbox struct {
	ID      string `gorm:"primaryKey;type:varchar(36)"`
	Account string `gorm:"type:varchar(42);index:idx_inbox_account;uniqueIndex:ux_inbox_account_post"`
	PostID  uint64 `gorm:"index:idx_inbox_post;uniqueIndex:ux_inbox_account_post"`
	// 复合唯一键，避免重复 (account, post)
	// ux_inbox_account_post = (account, post_id)
	Score     int64     `gorm:"index:idx_inbox_account_score"`
	CreatedAt time.Time `gorm:"index:idx_inbox_account_score"`
}

func (Inbox) TableName() string { return "inbox" }
