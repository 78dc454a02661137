package chatstate

import "github.com/mahaj/chat-client/pkg/model"

// conversations is the per-peer message cache plus unread counters, keyed
// by the other participant's handle. Threads persist for the session; there
// is no eviction.
type conversations struct {
	threads map[string][]model.Message
	unread  map[string]int
}

func newConversations() *conversations {
	return &conversations{
		threads: make(map[string][]model.Message),
		unread:  make(map[string]int),
	}
}

// replace swaps in a freshly fetched page and resets the unread counter.
func (c *conversations) replace(handle string, msgs []model.Message) {
	thread := make([]model.Message, len(msgs))
	copy(thread, msgs)
	c.threads[handle] = thread
	c.unread[handle] = 0
}

// append adds a real-time message at the tail. Real-time delivery is
// assumed to be in send order; late frames land at the tail regardless.
func (c *conversations) append(handle string, msg model.Message) {
	c.threads[handle] = append(c.threads[handle], msg)
}

func (c *conversations) bumpUnread(handle string) {
	c.unread[handle]++
}

func (c *conversations) clearUnread(handle string) {
	c.unread[handle] = 0
}

func (c *conversations) unreadCount(handle string) int {
	return c.unread[handle]
}

// latest returns the tail message, or the empty-read sentinel when no
// thread is cached. Consumers branch on .Read without nil checks, so the
// sentinel shape is load-bearing.
func (c *conversations) latest(handle string) model.Message {
	thread := c.threads[handle]
	if len(thread) == 0 {
		return model.Message{Content: "", Read: true}
	}
	return thread[len(thread)-1]
}

func (c *conversations) snapshot(handle string) []model.Message {
	thread := c.threads[handle]
	out := make([]model.Message, len(thread))
	copy(out, thread)
	return out
}
