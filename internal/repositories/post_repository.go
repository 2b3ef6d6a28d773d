package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPosts(ctx context.Context, limit, skip int, search string) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, limit, skip int) ([]models.Post, error)
	PostExists(ctx context.Context, id uint) (bool, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost inserts a new post.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a single post by ID.
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("fetching post %d: %w", id, err)
	}
	return &post, nil
}

// GetPosts retrieves posts newest first, optionally filtered by a content
// search term.
func (r *PostgresPostRepository) GetPosts(ctx context.Context, limit, skip int, search string) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(skip)
	if search != "" {
		q = q.Where("content LIKE ?", "%"+search+"%")
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetPostsByUserID retrieves a user's posts newest first.
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint, limit, skip int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(skip).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts for user %d: %w", userID, err)
	}
	return posts, nil
}

// PostExists reports whether a post with the given id exists.
func (r *PostgresPostRepository) PostExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking post %d: %w", id, err)
	}
	return count > 0, nil
}

// UpdatePost saves changes to an existing post.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("updating post %d: %w", post.ID, err)
	}
	return nil
}

// DeletePost removes the post and its dependent media, comment and like rows
// in one transaction. Blob cleanup is the caller's responsibility once the
// transaction has committed.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Media{}).Error; err != nil {
			return fmt.Errorf("deleting media rows for post %d: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments for post %d: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("deleting likes for post %d: %w", id, err)
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("deleting post %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post %d: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}
