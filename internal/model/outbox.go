package model

import "time"

// Outbox 索引到的新帖待扇出事件
type Outbox struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	PostID      uint64    `gorm:"uniqueIndex"`
	Author      string    `gorm:"type:varchar(42);index:idx_outbox_author"`
	CreatedAt   time.Time `gorm:"index"`
	Status      string    `gorm:"type:varchar(16);index"` // pending, processing, done
	ProcessedAt *time.Time
	FanoutCount int64
}

func (Outbox) TableName() string { return "outbox" }
