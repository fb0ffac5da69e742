package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/guesspot/internal/protocol"
)

// Client is a WebSocket client for the guessing game
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	receive   chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	name      string
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL, name string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		name:      name,
		send:      make(chan *protocol.Message, 64),
		receive:   make(chan *protocol.Message, 64),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes the WebSocket connection and announces the player name
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Info("connecting", "url", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	return c.Hello(c.name)
}

// Close tears down the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.connected = false
		c.mu.Unlock()
	})
	return err
}

// Receive returns the channel of incoming messages. The channel closes when
// the connection drops.
func (c *Client) Receive() <-chan *protocol.Message {
	return c.receive
}

// Name returns the player name this client announced
func (c *Client) Name() string {
	return c.name
}

func (c *Client) enqueue(msgType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Hello binds the connection to a player identity
func (c *Client) Hello(name string) error {
	return c.enqueue(protocol.TypeHello, protocol.HelloData{Name: name})
}

// Register joins the current round with the given stake
func (c *Client) Register(stake int64) error {
	return c.enqueue(protocol.TypeRegister, protocol.RegisterData{Stake: stake})
}

// Guess submits a guess for the current round
func (c *Client) Guess(value int) error {
	return c.enqueue(protocol.TypeGuess, protocol.GuessData{Value: value})
}

// Distribute asks the server to close the round and pay winners
func (c *Client) Distribute() error {
	return c.enqueue(protocol.TypeDistribute, nil)
}

// Withdraw asks for an emergency withdrawal (administrator only)
func (c *Client) Withdraw() error {
	return c.enqueue(protocol.TypeWithdraw, nil)
}

// State requests the current round state
func (c *Client) State() error {
	return c.enqueue(protocol.TypeState, nil)
}

func (c *Client) readPump() {
	defer func() {
		close(c.receive)
		_ = c.Close()
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if c.ctx.Err() == nil {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				_ = c.Close()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
