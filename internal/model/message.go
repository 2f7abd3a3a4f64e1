package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat message between a customer and the chef.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"senderId" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Between reports whether the message belongs to the conversation of a and b.
func (m *Message) Between(a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// SendMessageRequest represents the request payload for posting a chat message.
type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
}

// UnreadResponse carries the number of unread messages.
type UnreadResponse struct {
	Unread int `json:"unread"`
}
