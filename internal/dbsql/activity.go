package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a scheduled farm task.
type Activity struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"column:user_id;index;size:36;not null" json:"user_id"`
	Category    string     `gorm:"column:category;size:50" json:"category"`
	Title       string     `gorm:"column:title;size:100" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date"`
	Duration    *int       `gorm:"column:duration" json:"duration"` // minutes
	IsCompleted bool       `gorm:"column:is_completed" json:"is_completed"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
