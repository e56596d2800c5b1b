package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/sniperrun/internal/protocol"
	"github.com/playperu/sniperrun/internal/room"
)

const helloTimeout = 10 * time.Second

// handlePlay upgrades to the play websocket. The client opens with hello;
// the server answers welcome and streams state. join asks for a player slot
// and input carries device state.
func handlePlay(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm := roomFrom(r)

		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer ws.CloseNow()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		hello, err := readHello(ctx, ws)
		if err != nil {
			logger.Debug("bad hello", "room", rm.Code, "error", err)
			ws.Close(websocket.StatusPolicyViolation, "bad hello")
			return
		}

		conn := newWSConn(ws, logger)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			conn.writeLoop(ctx)
		}()
		defer func() {
			cancel()
			<-writerDone
		}()

		reply := make(chan room.ConnectResult, 1)
		if err := rm.Send(room.Connect{Conn: conn, Name: hello.Name, Reply: reply}); err != nil {
			conn.Close()
			return
		}
		var clientID string
		select {
		case res := <-reply:
			clientID = res.ClientID
		case <-rm.Done():
			return
		}
		defer rm.Send(room.Leave{ClientID: clientID})

		for {
			_, msg, err := ws.Read(ctx)
			if err != nil {
				logger.Debug("websocket read ended", "room", rm.Code, "client", clientID, "error", err)
				return
			}
			if err := dispatch(rm, clientID, msg); err != nil {
				logger.Debug("bad client message", "room", rm.Code, "client", clientID, "error", err)
				if b, err := protocol.Encode(protocol.MsgError, protocol.Error{Message: err.Error()}); err == nil {
					_ = conn.Send(b)
				}
			}
		}
	}
}

func readHello(ctx context.Context, ws *websocket.Conn) (protocol.Hello, error) {
	ctx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()

	_, msg, err := ws.Read(ctx)
	if err != nil {
		return protocol.Hello{}, fmt.Errorf("reading hello: %w", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, fmt.Errorf("expected %s, got %s", protocol.MsgHello, env.T)
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return protocol.Hello{}, err
	}
	if hello.V != protocol.Version {
		return protocol.Hello{}, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	return hello, nil
}

func dispatch(rm *room.Room, clientID string, msg []byte) error {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	switch env.T {
	case protocol.MsgJoin:
		return rm.Send(room.Join{ClientID: clientID})
	case protocol.MsgInput:
		in, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			return err
		}
		return rm.Send(room.Input{ClientID: clientID, Input: in})
	default:
		return fmt.Errorf("unexpected message type %q", env.T)
	}
}
