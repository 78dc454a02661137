package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mahaj/chat-client/pkg/model"
)

const (
	// Time allowed to write a message to the gateway.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the gateway.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// WSSource is a live gateway connection: it decodes inbound frames into
// the sink and carries the outbound send/typing path.
type WSSource struct {
	conn   *websocket.Conn
	sink   Sink
	self   string
	logger *slog.Logger

	writeMu sync.Mutex
}

// DialWS connects to the gateway websocket endpoint with the bearer token.
func DialWS(ctx context.Context, gatewayAddr, token, self string, sink Sink, logger *slog.Logger) (*WSSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	u := url.URL{Scheme: "ws", Host: gatewayAddr, Path: "/ws"}
	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial gateway: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	return &WSSource{conn: conn, sink: sink, self: self, logger: logger}, nil
}

// Run reads frames until the connection drops or ctx is cancelled. Frames
// are dispatched to the sink in arrival order on this goroutine, so the
// engine sees them exactly as the gateway delivered them.
func (s *WSSource) Run(ctx context.Context) error {
	go s.keepAlive(ctx)

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg model.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("gateway read: %w", err)
			}
			return nil
		}

		if !deliverable(s.self, msg) {
			s.logger.Debug("skipping frame not addressed to us", "sender", msg.Sender, "receiver", msg.Receiver)
			continue
		}
		s.sink.AppendIncoming(msg)
	}
}

func (s *WSSource) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *WSSource) writeJSON(msg model.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// Send writes a chat message to peer. The gateway assigns the message ID
// and authoritative timestamp; the local echo comes back as a frame.
func (s *WSSource) Send(peer, content string) error {
	return s.writeJSON(model.Message{
		Sender:    s.self,
		Receiver:  peer,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Type:      model.TypeChat,
	})
}

// SendTyping signals composing state to peer.
func (s *WSSource) SendTyping(peer string, isTyping bool) error {
	kind := model.TypeTyping
	if !isTyping {
		kind = model.TypeStopTyping
	}
	return s.writeJSON(model.Message{
		Sender:   s.self,
		Receiver: peer,
		Type:     kind,
	})
}

// Close sends a close frame and tears the connection down.
func (s *WSSource) Close() error {
	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	return s.conn.Close()
}
