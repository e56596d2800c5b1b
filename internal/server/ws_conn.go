package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

var (
	errConnClosed = errors.New("connection closed")
	errSlowClient = errors.New("client is not keeping up")
)

// wsConn queues outgoing frames for one websocket so that the room goroutine
// never waits on the network. It implements room.Conn.
type wsConn struct {
	ws     *websocket.Conn
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newWSConn(ws *websocket.Conn, logger *slog.Logger) *wsConn {
	return &wsConn{
		ws:     ws,
		out:    make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	default:
		return errSlowClient
	}
}

// Close asks the writer to end the connection. It does not block.
func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// writeLoop runs until ctx ends or Close is called, then closes the socket.
func (c *wsConn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			c.ws.Close(websocket.StatusNormalClosure, "bye")
			return
		case b := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, b)
			cancel()
			if err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.Close()
				c.ws.CloseNow()
				return
			}
		}
	}
}
