package server

import (
	"time"

	"github.com/npezzotti/go-direct-chat/internal/types"
)

// ClientMessage is the envelope for every client-to-server event. Exactly
// one of the event fields is expected to be set.
type ClientMessage struct {
	Join        *JoinConversation `json:"join_conversation,omitempty"`
	Send        *SendMessage      `json:"send_message,omitempty"`
	TypingStart *Typing           `json:"typing_start,omitempty"`
	TypingStop  *Typing           `json:"typing_stop,omitempty"`
}

type JoinConversation struct {
	OtherUserId string `json:"other_user_id"`
}

type SendMessage struct {
	ReceiverId string `json:"receiver_id"`
	Content    string `json:"content"`
}

type Typing struct {
	ReceiverId string `json:"receiver_id"`
}

// ServerMessage is the envelope for every server-to-client event.
type ServerMessage struct {
	Timestamp         time.Time      `json:"timestamp"`
	PreviousMessages  *HistoryEvent  `json:"previous_messages,omitempty"`
	Message           *types.Message `json:"new_message,omitempty"`
	UserTyping        *TypingEvent   `json:"user_typing,omitempty"`
	UserStoppedTyping *TypingEvent   `json:"user_stopped_typing,omitempty"`
	Error             *ErrorEvent    `json:"error,omitempty"`
}

type HistoryEvent struct {
	Messages []types.Message `json:"messages"`
}

type TypingEvent struct {
	UserId string `json:"user_id"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

func NewPreviousMessages(messages []types.Message) *ServerMessage {
	if messages == nil {
		messages = make([]types.Message, 0)
	}

	return &ServerMessage{
		Timestamp:        Now(),
		PreviousMessages: &HistoryEvent{Messages: messages},
	}
}

func NewMessageEvent(msg types.Message) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		Message:   &msg,
	}
}

func NewUserTyping(userId string) *ServerMessage {
	return &ServerMessage{
		Timestamp:  Now(),
		UserTyping: &TypingEvent{UserId: userId},
	}
}

func NewUserStoppedTyping(userId string) *ServerMessage {
	return &ServerMessage{
		Timestamp:         Now(),
		UserStoppedTyping: &TypingEvent{UserId: userId},
	}
}

func newErrorMessage(text string) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		Error:     &ErrorEvent{Message: text},
	}
}

func ErrInvalidMessage() *ServerMessage {
	return newErrorMessage("Invalid message format")
}

func ErrInvalidMessageData() *ServerMessage {
	return newErrorMessage("Invalid message data")
}

func ErrReceiverNotFound() *ServerMessage {
	return newErrorMessage("Receiver not found")
}

func ErrLoadMessages() *ServerMessage {
	return newErrorMessage("Failed to load messages")
}

func ErrSendMessage() *ServerMessage {
	return newErrorMessage("Failed to send message")
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
