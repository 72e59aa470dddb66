package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post. DeletedAt is the only deletion marker.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	EditedAt  *time.Time     `json:"edited_at"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (p *Post) OwnerID() uint { return p.UserID }

func (p *Post) DeletedTime() *time.Time { return deletedTime(p.DeletedAt) }

func (p *Post) MarkDeleted(at time.Time) { p.DeletedAt = gorm.DeletedAt{Time: at, Valid: true} }

func (p *Post) ApplyEdit(content string, at time.Time) {
	p.Content = content
	p.EditedAt = &at
}

func deletedTime(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
