package feed

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

type Posts interface {
	UpsertPost(ctx context.Context, post *dbsql.Post) error
	ListPosts(ctx context.Context, limit int) ([]*dbsql.Post, error)
	GetPost(ctx context.Context, postID string) (*dbsql.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

type FeedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// UpsertPost inserts the post or overwrites the editable columns of an
// existing row with the same post_id.
func (r *FeedRepository) UpsertPost(ctx context.Context, post *dbsql.Post) error {
	return r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "post_type", "images", "tags", "type", "updated_at"}),
		}).
		Create(post).Error
}

func (r *FeedRepository) ListPosts(ctx context.Context, limit int) ([]*dbsql.Post, error) {
	var posts []*dbsql.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *FeedRepository) GetPost(ctx context.Context, postID string) (*dbsql.Post, error) {
	var post dbsql.Post
	err := r.db.WithContext(ctx).Preload("User").First(&post, "post_id = ?", postID).Error
	if err != nil {
		return nil, common.FromGorm(err)
	}
	return &post, nil
}

func (r *FeedRepository) DeletePost(ctx context.Context, postID string) error {
	res := r.db.WithContext(ctx).Delete(&dbsql.Post{}, "post_id = ?", postID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	}
	return nil
}
