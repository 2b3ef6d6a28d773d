package models

import "time"

// Media is an image attached to a post. Filename is the blob store key;
// Filepath is the derived public URL. The blob and this row are created and
// deleted together.
type Media struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PostID      uint      `json:"post_id" gorm:"index;not null"`
	Filename    string    `json:"filename" gorm:"not null"`
	Filepath    string    `json:"filepath" gorm:"not null"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// TableName pins the table name; the default pluralizer mangles "media".
func (Media) TableName() string {
	return "media"
}

// ProfilePicture is a user's profile image, at most one per user.
type ProfilePicture struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Filename   string    `json:"filename" gorm:"not null"`
	Filepath   string    `json:"filepath" gorm:"not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// MediaOut is the public view of a stored image.
type MediaOut struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
