package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation links an unordered pair of participants. Uniqueness of the
// pair is not enforced by the schema.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	User1ID   string    `gorm:"column:user1_id;index;size:36;not null" json:"user1_id"`
	User2ID   string    `gorm:"column:user2_id;index;size:36;not null" json:"user2_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User1    *User     `gorm:"foreignKey:User1ID;references:ID" json:"user1,omitempty"`
	User2    *User     `gorm:"foreignKey:User2ID;references:ID" json:"user2,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID;references:ID" json:"messages,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether userID is one side of the pair.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}
