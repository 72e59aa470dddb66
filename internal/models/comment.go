package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to a Post and optionally replies to an earlier Comment on
// the same post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	EditedAt  *time.Time     `json:"edited_at"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (c *Comment) OwnerID() uint { return c.UserID }

func (c *Comment) DeletedTime() *time.Time { return deletedTime(c.DeletedAt) }

func (c *Comment) MarkDeleted(at time.Time) { c.DeletedAt = gorm.DeletedAt{Time: at, Valid: true} }

func (c *Comment) ApplyEdit(content string, at time.Time) {
	c.Content = content
	c.EditedAt = &at
}
