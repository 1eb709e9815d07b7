package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/pulsechat/internal/model"
)

type InboxRepository interface {
	CreateBatch(ctx context.Context, items []model.Inbox) error
	ListPage(ctx context.Context, account string, offset, limit int) ([]*model.Inbox, error)
}

type inboxRepository struct {
	db *gorm.DB
}

func NewInboxRepository(db *gorm.DB) InboxRepository { return &inboxRepository{db: db} }

// CreateBatch 幂等插入（重复 (account, post) 忽略）
func (r *inboxRepository) CreateBatch(ctx context.Context, items []model.Inbox) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

func (r *inboxRepository) ListPage(ctx context.Context, account string, offset, limit int) ([]*model.Inbox, error) {
	var res []*model.Inbox
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("score DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
