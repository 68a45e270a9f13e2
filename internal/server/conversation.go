package server

const (
	userRoomPrefix         = "user:"
	conversationRoomPrefix = "conv:"
)

// ConversationId derives the canonical identifier for the conversation
// between two users. The result is identical regardless of argument order.
func ConversationId(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// conversationRoom is the subscription key for a two-party conversation.
// The prefix keeps conversation keys from ever colliding with user rooms.
func conversationRoom(a, b string) string {
	return conversationRoomPrefix + ConversationId(a, b)
}

// userRoom is the always-subscribed private room of a single user, used
// for direct signals such as typing notifications.
func userRoom(userId string) string {
	return userRoomPrefix + userId
}
