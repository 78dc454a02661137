package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahaj/chat-client/pkg/chatstate"
	"github.com/mahaj/chat-client/pkg/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["username"] != "alice" || creds["password"] != "s3cret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer srv.Close()

	token, err := Login(context.Background(), srv.URL, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = Login(context.Background(), srv.URL, "alice", "wrong")
	assert.ErrorIs(t, err, chatstate.ErrUnauthorized)
}

func TestFetchDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]model.User{
			{ID: 1, Username: "alice", Online: true},
			{ID: 2, Username: "bob"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	users, err := c.FetchDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.True(t, users[0].Online)
}

func TestFetchHistoryDecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/messages/bob", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "25", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode(model.HistoryPage{Content: []model.Message{
			{ID: 1, Sender: "bob", Receiver: "alice", Content: "hi", Timestamp: 100},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	msgs, err := c.FetchHistory(context.Background(), "bob", 2, 25)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("stale"))

	_, err := c.FetchDirectory(context.Background())
	assert.ErrorIs(t, err, chatstate.ErrUnauthorized)

	_, err = c.FetchHistory(context.Background(), "bob", 0, 50)
	assert.ErrorIs(t, err, chatstate.ErrUnauthorized)

	err = c.MarkRead(context.Background(), "bob")
	assert.ErrorIs(t, err, chatstate.ErrUnauthorized)
}

func TestServerErrorMapsToTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	_, err := c.FetchHistory(context.Background(), "bob", 0, 50)

	var te *chatstate.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fetch history", te.Op)
}

func TestMarkRead(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations/read", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	require.NoError(t, c.MarkRead(context.Background(), "bob"))
	assert.Equal(t, "bob", got["other_user_id"])
}

func TestDMChannelIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "dm:alice:bob", dmChannelID("alice", "bob"))
	assert.Equal(t, "dm:alice:bob", dmChannelID("bob", "alice"))
}
