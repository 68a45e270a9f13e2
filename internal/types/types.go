package types

import (
	"time"
)

type User struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Message is a single persisted chat message. SenderName is only
// populated on reads which join the sender's account.
type Message struct {
	Id         string    `json:"id"`
	SenderId   string    `json:"sender_id"`
	ReceiverId string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	SenderName string    `json:"sender_name,omitempty"`
}

// Conversation summarizes the most recent message exchanged with one peer.
type Conversation struct {
	OtherUserId     string    `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserEmail  string    `json:"other_user_email"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	LastSenderId    string    `json:"last_sender_id"`
}
