package database

type ChatRepository interface {
	Ping() error
	CreateUser(params CreateUserParams) (User, error)
	GetUserById(id string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetAllUsers() ([]User, error)
	CreateMessage(msg Message) error
	GetMessagesBetween(userId, otherUserId string, limit int) ([]Message, error)
	GetRecentConversations(userId string) ([]Conversation, error)
}
