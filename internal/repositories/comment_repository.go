package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint, limit, skip int) ([]models.Comment, error)
	GetParentCommentsByPostID(ctx context.Context, postID uint, limit, skip int) ([]models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment inserts a new comment.
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	return nil
}

// GetCommentByID retrieves a comment by ID.
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("fetching comment %d: %w", id, err)
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a post, newest first.
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint, limit, skip int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id DESC").
		Limit(limit).Offset(skip).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// GetParentCommentsByPostID retrieves only top-level comments for a post.
func (r *PostgresCommentRepository) GetParentCommentsByPostID(ctx context.Context, postID uint, limit, skip int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("id DESC").
		Limit(limit).Offset(skip).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing parent comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// UpdateComment saves changes to an existing comment.
func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("updating comment %d: %w", comment.ID, err)
	}
	return nil
}

// DeleteComment removes a comment and any direct replies to it.
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting replies to comment %d: %w", id, err)
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return fmt.Errorf("deleting comment %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("comment %d: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}
