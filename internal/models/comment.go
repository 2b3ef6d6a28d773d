package models

import "time"

// Comment is a comment on a post. ParentID is set on replies; replies to
// replies are rejected, so the tree is at most one level deep.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	ParentID  *uint     `json:"parent_id,omitempty" gorm:"index"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// CreateCommentRequest defines the request body for creating or editing a comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentOut is a comment together with its author's public details.
type CommentOut struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	ParentID  *uint     `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    Author    `json:"author"`
}
