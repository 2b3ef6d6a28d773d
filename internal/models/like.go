package models

import "time"

// LikeDirection selects whether a like is being added or removed.
type LikeDirection int

const (
	LikeDown LikeDirection = 0
	LikeUp   LikeDirection = 1
)

// Like records that a user liked a post. A user can hold at most one like
// per post, enforced by the composite unique index.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"uniqueIndex:idx_likes_post_user;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_likes_post_user;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeRequest defines the request body for the like toggle. Dir 1 adds a
// like, dir 0 removes one.
type LikeRequest struct {
	PostID uint          `json:"post_id" validate:"required"`
	Dir    LikeDirection `json:"dir" validate:"oneof=0 1"`
}
