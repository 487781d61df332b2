package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	PostID    string    `gorm:"column:post_id;primaryKey;size:36" json:"post_id"`
	UserID    string    `gorm:"column:user_id;index;size:36;not null" json:"user_id"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	PostType  string    `gorm:"column:post_type;size:32" json:"post_type"`
	Images    []string  `gorm:"column:images;serializer:json" json:"images"`
	Tags      []string  `gorm:"column:tags;serializer:json" json:"tags"`
	Type      string    `gorm:"column:type;size:32" json:"type"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PostID == "" {
		p.PostID = uuid.NewString()
	}
	return nil
}
