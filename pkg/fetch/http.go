package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mahaj/chat-client/pkg/chatstate"
	"github.com/mahaj/chat-client/pkg/model"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token per request, so a renewed session
// is picked up without rebuilding the client.
type TokenSource interface {
	Token() string
}

// Client talks to the chat REST API. It implements the state engine's
// DirectoryFetcher and HistoryFetcher contracts and carries the outbound
// mark-read action.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Login exchanges credentials for a bearer token. It stands apart from
// Client because it runs before any session exists.
func Login(ctx context.Context, baseURL, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", chatstate.NewTransportError("login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", chatstate.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", chatstate.NewTransportError("login", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", chatstate.NewTransportError("login", err)
	}
	return out.Token, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return chatstate.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return chatstate.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return chatstate.NewTransportError(op, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return chatstate.NewTransportError(op, err)
	}
	return nil
}

// FetchDirectory returns every registered user.
func (c *Client) FetchDirectory(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "fetch directory", "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FetchHistory returns one page of the thread with peer, oldest first.
func (c *Client) FetchHistory(ctx context.Context, peer string, page, size int) ([]model.Message, error) {
	path := "/chat/messages/" + peer + "?page=" + strconv.Itoa(page) + "&size=" + strconv.Itoa(size)
	var out model.HistoryPage
	if err := c.get(ctx, "fetch history", path, &out); err != nil {
		return nil, err
	}
	return out.Content, nil
}

// MarkRead tells the API to reset the server-side unread counter for the
// thread with peer. The local counter is the engine's own business.
func (c *Client) MarkRead(ctx context.Context, peer string) error {
	payload, err := json.Marshal(map[string]string{"other_user_id": peer})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/conversations/read", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return chatstate.NewTransportError("mark read", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return chatstate.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return chatstate.NewTransportError("mark read", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}
