package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahaj/chat-client/pkg/model"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []model.Message
}

func (r *recordingSink) AppendIncoming(msg model.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSink) snapshot() []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func TestDeliverable(t *testing.T) {
	tests := []struct {
		name string
		msg  model.Message
		want bool
	}{
		{"chat to self", model.Message{Sender: "bob", Receiver: "alice", Type: model.TypeChat}, true},
		{"own echo", model.Message{Sender: "alice", Receiver: "bob", Type: model.TypeChat}, true},
		{"chat between others", model.Message{Sender: "bob", Receiver: "carol", Type: model.TypeChat}, false},
		{"typing to self", model.Message{Sender: "bob", Receiver: "alice", Type: model.TypeTyping}, true},
		{"typing to other", model.Message{Sender: "bob", Receiver: "carol", Type: model.TypeStopTyping}, false},
		{"broadcast typing", model.Message{Sender: "bob", Type: model.TypeTyping}, true},
		{"presence", model.Message{Sender: "carol", Content: "ONLINE", Type: model.TypePresence}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deliverable("alice", tt.msg))
		})
	}
}

func TestWSSourceReadsAndFilters(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := []model.Message{
		{ID: 1, Sender: "bob", Receiver: "alice", Content: "hi", Type: model.TypeChat},
		{ID: 2, Sender: "bob", Receiver: "carol", Content: "psst", Type: model.TypeChat},
		{Sender: "bob", Receiver: "alice", Type: model.TypeTyping},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, f := range frames {
			require.NoError(t, conn.WriteJSON(f))
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		// Hold the connection open until the client closes.
		conn.ReadMessage()
	}))
	defer srv.Close()

	sink := &recordingSink{}
	addr := strings.TrimPrefix(srv.URL, "http://")
	src, err := DialWS(context.Background(), addr, "tok-123", "alice", sink, nil)
	require.NoError(t, err)
	defer src.Close()

	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("source did not finish reading")
	}

	got := sink.snapshot()
	require.Len(t, got, 2, "the frame between others is filtered out")
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, model.TypeTyping, got[1].Kind())
}

func TestWSSourceSend(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan model.Message, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for i := 0; i < 2; i++ {
			var msg model.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			received <- msg
		}
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	src, err := DialWS(context.Background(), addr, "tok-123", "alice", &recordingSink{}, nil)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Send("bob", "hello"))
	require.NoError(t, src.SendTyping("bob", true))

	msg := <-received
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "bob", msg.Receiver)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, model.TypeChat, msg.Kind())

	typing := <-received
	assert.Equal(t, model.TypeTyping, typing.Kind())
	assert.Empty(t, typing.Content)
}
