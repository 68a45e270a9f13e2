package database

import (
	"time"

	"github.com/google/uuid"
)

func (db *PgChatRepository) CreateUser(params CreateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (id, name, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, name, email, created_at",
		uuid.NewString(),
		params.Name,
		params.Email,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.Email,
		&u.CreatedAt,
	)

	return u, err
}

func (db *PgChatRepository) GetUserById(id string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetUserByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM users "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetAllUsers() ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, email, created_at FROM users ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			break
		}

		users = append(users, u)
	}

	return users, err
}

func (db *PgChatRepository) CreateMessage(msg Message) error {
	_, err := db.conn.Exec(
		"INSERT INTO messages (id, sender_id, receiver_id, content, timestamp) "+
			"VALUES ($1, $2, $3, $4, $5)",
		msg.Id,
		msg.SenderId,
		msg.ReceiverId,
		msg.Content,
		msg.Timestamp,
	)

	return err
}

// GetMessagesBetween returns the messages exchanged between two users in
// either direction, oldest first, joined with the sender's display name.
func (db *PgChatRepository) GetMessagesBetween(userId, otherUserId string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT m.id, m.sender_id, m.receiver_id, m.content, m.timestamp, u.name AS sender_name "+
			"FROM messages m JOIN users u ON m.sender_id = u.id "+
			"WHERE (m.sender_id = $1 AND m.receiver_id = $2) "+
			"OR (m.sender_id = $2 AND m.receiver_id = $1) "+
			"ORDER BY m.timestamp ASC LIMIT $3",
		userId,
		otherUserId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.Id, &msg.SenderId, &msg.ReceiverId, &msg.Content, &msg.Timestamp, &msg.SenderName); err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}

// GetRecentConversations returns one row per peer the user has exchanged
// messages with, carrying the newest message of each pair, newest pair first.
func (db *PgChatRepository) GetRecentConversations(userId string) ([]Conversation, error) {
	query := `
		SELECT c.other_user_id, u.name, u.email, c.content, c.timestamp, c.sender_id
		FROM (
			SELECT DISTINCT ON (other_user_id) *
			FROM (
				SELECT
					CASE
						WHEN sender_id = $1 THEN receiver_id
						ELSE sender_id
					END AS other_user_id,
					content,
					timestamp,
					sender_id
				FROM messages
				WHERE sender_id = $1 OR receiver_id = $1
			) pairs
			ORDER BY other_user_id, timestamp DESC
		) c
		JOIN users u ON u.id = c.other_user_id
		ORDER BY c.timestamp DESC;
`

	rows, err := db.conn.Query(query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations = make([]Conversation, 0)
	for rows.Next() {
		var conv Conversation
		if err = rows.Scan(
			&conv.OtherUserId,
			&conv.OtherUserName,
			&conv.OtherUserEmail,
			&conv.LastMessage,
			&conv.LastMessageTime,
			&conv.LastSenderId,
		); err != nil {
			break
		}

		conversations = append(conversations, conv)
	}

	return conversations, err
}
