package models

import (
	"time"
)

// Like marks that a user liked a post. The unique index keeps the
// (user, post) pair count at 0 or 1 even when two toggles race.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
