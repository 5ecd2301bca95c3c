package models

import "time"

// Message holds the structure for the message collection in mongo
type Message struct {
	ID      int64          `json:"_id" bson:"_id"`
	Details MessageDetails `json:"message" bson:"message"`
}

// MessageDetails holds the inner message structure. The author display
// fields (username, color, isAdmin) are denormalized at send time so a later
// role change never rewrites history.
type MessageDetails struct {
	UserID      int64     `json:"userId" bson:"userId"`
	RecipientID *int64    `json:"recipientId" bson:"recipientId"`
	Username    string    `json:"username" bson:"username"`
	Color       string    `json:"color" bson:"color"`
	IsAdmin     bool      `json:"isAdmin" bson:"isAdmin"`
	Content     string    `json:"content" bson:"content"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// MessageOut is the flat wire representation used by both the REST history
// endpoints and the websocket push frames
type MessageOut struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RecipientID *int64    `json:"recipient_id"`
	Username    string    `json:"username"`
	Color       string    `json:"color"`
	IsAdmin     bool      `json:"is_admin"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Out converts a stored message to its wire representation
func (m *Message) Out() MessageOut {
	return MessageOut{
		ID:          m.ID,
		UserID:      m.Details.UserID,
		RecipientID: m.Details.RecipientID,
		Username:    m.Details.Username,
		Color:       m.Details.Color,
		IsAdmin:     m.Details.IsAdmin,
		Content:     m.Details.Content,
		CreatedAt:   m.Details.CreatedAt,
	}
}

// SendMessageRequest is the body for the legacy POST /messages endpoint
type SendMessageRequest struct {
	Content string `json:"content"`
}
