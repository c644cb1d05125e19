package models

import (
	"time"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// Message is a single chat message between a seeker and an owner about a
// property. Conversations are derived by grouping on (property, pair).
type Message struct {
	Base       `bson:",inline"`
	PropertyID utils.SixID `bson:"property" json:"property"`
	SenderID   utils.SixID `bson:"sender" json:"sender"`
	ReceiverID utils.SixID `bson:"receiver" json:"receiver"`
	Content    string      `bson:"content" json:"content"`
	IsRead     bool        `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time   `bson:"created_at" json:"createdAt"`
}
