package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MediaRepository defines the interface for media metadata operations
type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) error
	GetMediaByID(ctx context.Context, id uint) (*models.Media, error)
	GetMediaByPostID(ctx context.Context, postID uint) ([]models.Media, error)
	DeleteMedia(ctx context.Context, id uint) error
	GetProfilePicture(ctx context.Context, userID uint) (*models.ProfilePicture, error)
	SaveProfilePicture(ctx context.Context, pic *models.ProfilePicture) error
	ListUserMediaKeys(ctx context.Context, userID uint) ([]string, error)
}

// PostgresMediaRepository implements MediaRepository for PostgreSQL
type PostgresMediaRepository struct {
	db *gorm.DB
}

// NewPostgresMediaRepository creates a new PostgresMediaRepository
func NewPostgresMediaRepository(db *gorm.DB) *PostgresMediaRepository {
	return &PostgresMediaRepository{db: db}
}

// CreateMedia inserts a media metadata row.
func (r *PostgresMediaRepository) CreateMedia(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("creating media row: %w", err)
	}
	return nil
}

// GetMediaByID retrieves a media row by ID.
func (r *PostgresMediaRepository) GetMediaByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("media %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("fetching media %d: %w", id, err)
	}
	return &media, nil
}

// GetMediaByPostID retrieves all media rows attached to a post.
func (r *PostgresMediaRepository) GetMediaByPostID(ctx context.Context, postID uint) ([]models.Media, error) {
	var media []models.Media
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&media).Error; err != nil {
		return nil, fmt.Errorf("listing media for post %d: %w", postID, err)
	}
	return media, nil
}

// DeleteMedia removes a media metadata row.
func (r *PostgresMediaRepository) DeleteMedia(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Media{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting media %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("media %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// GetProfilePicture retrieves the profile picture row for a user.
func (r *PostgresMediaRepository) GetProfilePicture(ctx context.Context, userID uint) (*models.ProfilePicture, error) {
	var pic models.ProfilePicture
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile picture for user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("fetching profile picture: %w", err)
	}
	return &pic, nil
}

// SaveProfilePicture inserts or replaces the user's profile picture row.
func (r *PostgresMediaRepository) SaveProfilePicture(ctx context.Context, pic *models.ProfilePicture) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"filename", "filepath", "uploaded_at"}),
	}).Create(pic).Error
	if err != nil {
		return fmt.Errorf("saving profile picture for user %d: %w", pic.UserID, err)
	}
	return nil
}

// ListUserMediaKeys returns the blob keys of everything the user owns: the
// profile picture plus all media attached to the user's posts. Used to drive
// blob cleanup when the account is deleted.
func (r *PostgresMediaRepository) ListUserMediaKeys(ctx context.Context, userID uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&models.Media{}).
		Joins("JOIN posts ON posts.id = media.post_id").
		Where("posts.user_id = ?", userID).
		Pluck("media.filename", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("listing media keys for user %d: %w", userID, err)
	}

	var picKeys []string
	err = r.db.WithContext(ctx).Model(&models.ProfilePicture{}).
		Where("user_id = ?", userID).
		Pluck("filename", &picKeys).Error
	if err != nil {
		return nil, fmt.Errorf("listing profile picture key for user %d: %w", userID, err)
	}

	return append(keys, picKeys...), nil
}
