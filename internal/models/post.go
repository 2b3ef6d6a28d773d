package models

import "time"

// Post is a user's post. The owning user id is set at creation and never
// changes afterwards.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Content   string    `json:"content"`
	Published bool      `json:"published" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`

	User     User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Media    []Media   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// CreatePostRequest defines the request body for creating or updating a post
type CreatePostRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=2000"`
	Published *bool  `json:"published,omitempty"`
}

// PostOut is the aggregate view of a post: the post itself, its author,
// the like count and the attached media.
type PostOut struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	Published bool       `json:"published"`
	UserID    uint       `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Author    Author     `json:"author"`
	LikeCount int64      `json:"like_count"`
	Media     []MediaOut `json:"media"`
}
