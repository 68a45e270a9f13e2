package server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npezzotti/go-direct-chat/internal/database"
	"github.com/npezzotti/go-direct-chat/internal/stats"
	"github.com/npezzotti/go-direct-chat/internal/types"
)

const (
	metricActiveConnections = "ActiveConnections"
	metricTotalMessages     = "TotalMessages"
	metricTypingEvents      = "TypingEvents"
)

// ChatServer coordinates the real-time subsystem: connection registry,
// room membership, the message delivery pipeline and typing signals.
type ChatServer struct {
	log          *log.Logger
	db           database.ChatRepository
	sessions     *SessionManager
	stats        stats.StatsProvider
	clients      map[*Client]struct{}
	clientsLock  sync.Mutex
	historyLimit int
	typingExpiry time.Duration
}

func NewChatServer(logger *log.Logger, db database.ChatRepository, su stats.StatsProvider, historyLimit int, typingExpiry time.Duration) (*ChatServer, error) {
	cs := &ChatServer{
		log:          logger,
		db:           db,
		sessions:     NewSessionManager(),
		stats:        su,
		clients:      make(map[*Client]struct{}),
		historyLimit: historyLimit,
		typingExpiry: typingExpiry,
	}

	su.RegisterMetric(metricActiveConnections)
	su.RegisterMetric(metricTotalMessages)
	su.RegisterMetric(metricTypingEvents)

	return cs, nil
}

// RegisterClient adds an authenticated connection and subscribes it to its
// own private room.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.sessions.Subscribe(userRoom(c.user.Id), c)
	cs.stats.Incr(metricActiveConnections)
	cs.log.Printf("user %s connected (session %s)", c.user.Id, c.sessionId)
}

// DeregisterClient discards all state held for a connection: registry
// entry, room subscriptions and typing marks. Peers still marked as being
// typed to receive a synthesized stop signal.
func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.clientsLock.Lock()
	_, ok := cs.clients[c]
	delete(cs.clients, c)
	cs.clientsLock.Unlock()

	if !ok {
		return
	}

	for _, peer := range c.clearAllTyping() {
		cs.sessions.Broadcast(userRoom(peer), NewUserStoppedTyping(c.user.Id))
	}

	cs.sessions.RemoveClient(c)
	cs.stats.Decr(metricActiveConnections)
	cs.log.Printf("user %s disconnected (session %s)", c.user.Id, c.sessionId)
}

// handleJoin subscribes the connection to the conversation room for the
// pair and replays stored history to the joining connection only. An
// unknown peer id yields an empty history, not an error.
func (cs *ChatServer) handleJoin(c *Client, otherUserId string) {
	if otherUserId == "" {
		c.queueMessage(ErrInvalidMessageData())
		return
	}

	cs.sessions.Subscribe(conversationRoom(c.user.Id, otherUserId), c)

	dbMessages, err := cs.db.GetMessagesBetween(c.user.Id, otherUserId, cs.historyLimit)
	if err != nil {
		cs.log.Println("GetMessagesBetween:", err)
		c.queueMessage(ErrLoadMessages())
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, m := range dbMessages {
		messages = append(messages, types.Message{
			Id:         m.Id,
			SenderId:   m.SenderId,
			ReceiverId: m.ReceiverId,
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			SenderName: m.SenderName,
		})
	}

	c.queueMessage(NewPreviousMessages(messages))
}

// handleSend validates, persists and fans out one chat message. The append
// to the store is the durability point: broadcast happens only after it
// succeeds, immediately, so room delivery order matches persisted order.
func (cs *ChatServer) handleSend(c *Client, receiverId, content string) {
	content = strings.TrimSpace(content)
	if receiverId == "" || content == "" {
		c.queueMessage(ErrInvalidMessageData())
		return
	}

	receiver, err := cs.db.GetUserById(receiverId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.queueMessage(ErrReceiverNotFound())
		} else {
			cs.log.Println("GetUserById:", err)
			c.queueMessage(ErrSendMessage())
		}
		return
	}

	msg := database.Message{
		Id:         uuid.NewString(),
		SenderId:   c.user.Id,
		ReceiverId: receiver.Id,
		Content:    content,
		Timestamp:  Now(),
	}

	if err := cs.db.CreateMessage(msg); err != nil {
		cs.log.Println("CreateMessage:", err)
		c.queueMessage(ErrSendMessage())
		return
	}

	cs.stats.Incr(metricTotalMessages)

	cs.sessions.Broadcast(conversationRoom(c.user.Id, receiver.Id), NewMessageEvent(types.Message{
		Id:         msg.Id,
		SenderId:   msg.SenderId,
		ReceiverId: msg.ReceiverId,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
		SenderName: c.user.Name,
	}))
}

// handleTypingStart relays a typing signal to the receiver's private room
// and arms the expiry which self-heals a lost stop event.
func (cs *ChatServer) handleTypingStart(c *Client, receiverId string) {
	if receiverId == "" {
		return
	}

	c.markTyping(receiverId, cs.typingExpiry, func() {
		cs.sessions.Broadcast(userRoom(receiverId), NewUserStoppedTyping(c.user.Id))
	})

	cs.stats.Incr(metricTypingEvents)
	cs.sessions.Broadcast(userRoom(receiverId), NewUserTyping(c.user.Id))
}

func (cs *ChatServer) handleTypingStop(c *Client, receiverId string) {
	if receiverId == "" {
		return
	}

	c.clearTyping(receiverId)
	cs.stats.Incr(metricTypingEvents)
	cs.sessions.Broadcast(userRoom(receiverId), NewUserStoppedTyping(c.user.Id))
}

// Shutdown signals every connection to stop and waits for their read
// pumps to finish cleanup, bounded by the context deadline.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.clientsLock.Lock()
	for c := range cs.clients {
		c.stopClient()
		if c.conn != nil {
			c.conn.Close()
		}
	}
	cs.clientsLock.Unlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cs.clientsLock.Lock()
			remaining := len(cs.clients)
			cs.clientsLock.Unlock()
			if remaining == 0 {
				return nil
			}
		}
	}
}
