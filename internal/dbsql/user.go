package dbsql

import "time"

// User is a participant profile. Rows are created by the hosted auth
// backend; this layer only reads and edits profile fields.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FullName     string    `gorm:"column:full_name;size:100" json:"full_name"`
	ProfileImage string    `gorm:"column:profile_image;size:512" json:"profile_image"`
	Location     string    `gorm:"column:location;size:255" json:"location"`
	IsVerified   bool      `gorm:"column:is_verified" json:"is_verified"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
