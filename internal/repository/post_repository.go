package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/pulsechat/internal/model"
)

var ErrPostNotFound = errors.New("repository: post not found")

type PostRepository interface {
	Upsert(ctx context.Context, p *model.Post) error
	Exists(ctx context.Context, id uint64) (bool, error)
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]*model.Post, error)
	Latest(ctx context.Context, offset, limit int) ([]*model.Post, error)
	ByAuthor(ctx context.Context, author string, offset, limit int) ([]*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

// Upsert 以链上数据为准覆盖本地副本（计数会被链上新值刷新）
func (r *postRepository) Upsert(ctx context.Context, p *model.Post) error {
	p.IndexedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "like_count", "comment_count", "repost_count", "indexed_at",
		}),
	}).Create(p).Error
}

func (r *postRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.Post
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *postRepository) Latest(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ByAuthor(ctx context.Context, author string, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("timestamp DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
