package fetch

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"github.com/mahaj/chat-client/pkg/chatstate"
	"github.com/mahaj/chat-client/pkg/model"
)

// CQLHistory reads conversation history straight from the ScyllaDB cluster
// backing the chat system, bypassing the REST API. Meant for headless and
// ops clients colocated with the store; interactive clients should prefer
// the HTTP fetcher.
type CQLHistory struct {
	session  *gocql.Session
	identity chatstate.Identity
}

// NewCQLHistory connects to the cluster and returns a fetcher bound to the
// signed-in user's side of each dm channel.
func NewCQLHistory(hosts []string, keyspace string, identity chatstate.Identity) (*CQLHistory, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        100 * time.Millisecond,
		Max:        1 * time.Second,
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, chatstate.NewTransportError("connect scylla", err)
	}
	return &CQLHistory{session: session, identity: identity}, nil
}

// dmChannelID builds the canonical dm channel key: participants sorted so
// both sides compute the same partition key.
func dmChannelID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "dm:" + a + ":" + b
}

// FetchHistory reads one page of the dm channel with peer and returns it
// oldest first. The messages table clusters newest first, so the page is
// taken from the head of the partition and re-sorted.
func (c *CQLHistory) FetchHistory(ctx context.Context, peer string, page, size int) ([]model.Message, error) {
	self, ok := c.identity.CurrentHandle()
	if !ok {
		return nil, chatstate.ErrUnauthorized
	}

	channelID := dmChannelID(self, peer)
	limit := (page + 1) * size

	iter := c.session.Query(
		`SELECT id, user_id, content, timestamp FROM messages WHERE channel_id = ? LIMIT ?`,
		channelID, limit,
	).WithContext(ctx).Iter()

	var (
		rows    []model.Message
		id      int64
		userID  string
		content string
		ts      time.Time
	)
	for iter.Scan(&id, &userID, &content, &ts) {
		receiver := peer
		if userID == peer {
			receiver = self
		}
		rows = append(rows, model.Message{
			ID:        id,
			Sender:    userID,
			Receiver:  receiver,
			Content:   content,
			Timestamp: ts.UnixMilli(),
			Delivered: true,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, chatstate.NewTransportError("fetch history", err)
	}

	// Drop the newer pages that precede the requested one.
	if skip := page * size; skip > 0 {
		if skip >= len(rows) {
			return nil, nil
		}
		rows = rows[skip:]
	}

	model.SortMessages(rows)
	return rows, nil
}

// Close releases the cluster session.
func (c *CQLHistory) Close() {
	c.session.Close()
}
