package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, userID uint) error
	HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts a like. A second like for the same (user, post) pair
// hits the composite unique index and surfaces as ErrConflict.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("like on post %d by user %d: %w", like.PostID, like.UserID, apperrors.ErrConflict)
		}
		return fmt.Errorf("creating like: %w", err)
	}
	return nil
}

// DeleteLike removes a like. Removing a like that does not exist is
// ErrNotFound, not a silent no-op.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID uint) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("deleting like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like on post %d by user %d: %w", postID, userID, apperrors.ErrNotFound)
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post.
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking like: %w", err)
	}
	return count > 0, nil
}

// GetLikesCountByPostID retrieves the number of likes on a post.
func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting likes for post %d: %w", postID, err)
	}
	return count, nil
}
