package models

import "time"

// User is a registered account. The password column holds a bcrypt hash and
// is never serialized.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"uniqueIndex;not null"`
	Password    string `json:"-" gorm:"not null"`
	DisplayName string `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`

	ProfilePicture *ProfilePicture `json:"profile_pic,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// CreateUserRequest defines the request body for registering a new user
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
}

// LoginRequest defines the request body for a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for updating the profile
type UpdateUserRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
}

// TokenResponse is returned on a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ID          uint   `json:"id"`
}

// Author is the public view of a user attached to posts and comments
type Author struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ProfilePic  *MediaOut `json:"profile_pic,omitempty"`
}
