package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-direct-chat/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket connection for an authenticated user.
type Client struct {
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *log.Logger
	user       types.User
	sessionId  string
	send       chan *ServerMessage
	stop       chan struct{}
	stopOnce   sync.Once

	typingMu sync.Mutex
	typingTo map[string]*time.Timer
}

func NewClient(user types.User, sessionId string, conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		user:       user,
		sessionId:  sessionId,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
		typingTo:   make(map[string]*time.Timer),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("session %s: write exiting", c.sessionId)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := serializeMessage(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Printf("session %s: read exiting", c.sessionId)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage())
			continue
		}

		switch {
		case msg.Join != nil:
			c.chatServer.handleJoin(c, msg.Join.OtherUserId)
		case msg.Send != nil:
			c.chatServer.handleSend(c, msg.Send.ReceiverId, msg.Send.Content)
		case msg.TypingStart != nil:
			c.chatServer.handleTypingStart(c, msg.TypingStart.ReceiverId)
		case msg.TypingStop != nil:
			c.chatServer.handleTypingStop(c, msg.TypingStop.ReceiverId)
		default:
			c.queueMessage(ErrInvalidMessage())
		}
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Printf("session %s: send channel full, dropping message", c.sessionId)
		return false
	}

	return true
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.chatServer.DeregisterClient(c)
	c.stopClient()
}

// markTyping records that this client is typing to peer and arms the
// expiry timer. A repeated start replaces the timer, postponing expiry.
func (c *Client) markTyping(peer string, expiry time.Duration, onExpire func()) {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	if t, ok := c.typingTo[peer]; ok && t != nil {
		t.Stop()
	}

	if expiry <= 0 {
		c.typingTo[peer] = nil
		return
	}

	var t *time.Timer
	t = time.AfterFunc(expiry, func() {
		if c.expireTyping(peer, t) {
			onExpire()
		}
	})
	c.typingTo[peer] = t
}

// expireTyping clears the typing mark for peer only if timer t still owns
// it. A fired timer whose mark was replaced by a newer start must not
// clear the replacement.
func (c *Client) expireTyping(peer string, t *time.Timer) bool {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	if cur, ok := c.typingTo[peer]; !ok || cur != t {
		return false
	}

	delete(c.typingTo, peer)
	return true
}

// clearTyping reports whether the client was marked as typing to peer and
// clears the mark.
func (c *Client) clearTyping(peer string) bool {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	t, ok := c.typingTo[peer]
	if !ok {
		return false
	}

	if t != nil {
		t.Stop()
	}
	delete(c.typingTo, peer)

	return true
}

// clearAllTyping clears every typing mark and returns the affected peers.
func (c *Client) clearAllTyping() []string {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	peers := make([]string, 0, len(c.typingTo))
	for peer, t := range c.typingTo {
		if t != nil {
			t.Stop()
		}
		peers = append(peers, peer)
	}
	c.typingTo = make(map[string]*time.Timer)

	return peers
}
