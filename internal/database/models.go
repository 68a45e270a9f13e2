package database

import "time"

type User struct {
	Id           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Message struct {
	Id         string
	SenderId   string
	ReceiverId string
	Content    string
	Timestamp  time.Time
	// SenderName is populated by reads which join the sender's account.
	SenderName string
}

type Conversation struct {
	OtherUserId     string
	OtherUserName   string
	OtherUserEmail  string
	LastMessage     string
	LastMessageTime time.Time
	LastSenderId    string
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}
