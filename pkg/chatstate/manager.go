package chatstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mahaj/chat-client/pkg/model"
)

// Manager is the single writer over the directory, conversation cache,
// typing table and active-chat selector. Construct one per session at the
// composition root and hand it to whoever needs it; there is no package
// singleton.
//
// One mutex serializes every mutation step, so no reader ever observes a
// half-applied update. RefreshDirectory and LoadPage call their
// collaborator outside the lock and commit the result atomically under it.
type Manager struct {
	mu        sync.RWMutex
	identity  Identity
	dirFetch  DirectoryFetcher
	histFetch HistoryFetcher
	logger    *slog.Logger

	directory *directory
	convos    *conversations
	typing    *typingTable
	active    activeSelector

	lmu       sync.RWMutex
	listeners []Listener
}

func NewManager(identity Identity, dir DirectoryFetcher, hist HistoryFetcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		identity:  identity,
		dirFetch:  dir,
		histFetch: hist,
		logger:    logger,
		directory: newDirectory(),
		convos:    newConversations(),
		typing:    newTypingTable(),
	}
}

// Initialize restores the persisted active-chat selection, if any. The
// handle is not validated against the directory: a stale handle simply
// yields an empty conversation until the next refresh.
func (m *Manager) Initialize(persistedActive string) {
	if persistedActive == "" {
		return
	}
	m.SetActive(persistedActive)
}

// Subscribe registers a change listener invoked after every mutation.
func (m *Manager) Subscribe(l Listener) {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) emit(ev Event) {
	m.lmu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.lmu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// RefreshDirectory replaces the peer directory wholesale. On any failure —
// missing identity or collaborator error — the existing directory is left
// untouched.
func (m *Manager) RefreshDirectory(ctx context.Context) error {
	if _, ok := m.identity.CurrentHandle(); !ok {
		return ErrUnauthorized
	}

	users, err := m.dirFetch.FetchDirectory(ctx)
	if err != nil {
		return NewTransportError("refresh directory", err)
	}

	m.mu.Lock()
	m.directory.replace(users)
	m.mu.Unlock()

	m.emit(Event{Kind: EventDirectory})
	return nil
}

// LoadPage fetches one history page for handle and replaces the cached
// thread with it, resetting the unread counter. All-or-nothing: a failed
// fetch leaves the previous thread intact and is returned unchanged.
func (m *Manager) LoadPage(ctx context.Context, handle string, page, size int) error {
	if _, ok := m.identity.CurrentHandle(); !ok {
		return ErrUnauthorized
	}

	msgs, err := m.histFetch.FetchHistory(ctx, handle, page, size)
	if err != nil {
		return NewTransportError("load history page", err)
	}

	m.mu.Lock()
	m.convos.replace(handle, msgs)
	m.mu.Unlock()

	m.emit(Event{Kind: EventHistory, Handle: handle})
	return nil
}

// AppendIncoming routes one real-time frame into the state tables. CHAT
// frames are appended to the thread keyed by the non-self participant;
// TYPING/STOP_TYPING flip the typing table; PRESENCE flips the directory
// flag. A CHAT from peer P always clears typing[P].
func (m *Manager) AppendIncoming(msg model.Message) {
	switch msg.Kind() {
	case model.TypeTyping:
		m.SetTyping(msg.Sender, true)
		return
	case model.TypeStopTyping:
		m.SetTyping(msg.Sender, false)
		return
	case model.TypePresence:
		m.SetPresence(msg.Sender, model.PresenceStatus(msg.Content) == model.PresenceOnline)
		return
	}

	self, ok := m.identity.CurrentHandle()
	if !ok {
		// Likely a logout race; without an identity the thread key is
		// ambiguous, so the message is dropped rather than miskeyed.
		m.logger.Warn("dropping incoming message: no current identity",
			"sender", msg.Sender, "receiver", msg.Receiver)
		return
	}

	key := msg.Receiver
	if msg.Receiver == self {
		key = msg.Sender
	}

	m.mu.Lock()
	m.typing.set(msg.Sender, false)
	m.convos.append(key, msg)
	if msg.Sender != self && !m.active.is(key) {
		m.convos.bumpUnread(key)
	}
	m.mu.Unlock()

	m.emit(Event{Kind: EventMessage, Handle: key})
}

// SetTyping records whether handle is composing. Last write wins.
func (m *Manager) SetTyping(handle string, isTyping bool) {
	m.mu.Lock()
	m.typing.set(handle, isTyping)
	m.mu.Unlock()

	m.emit(Event{Kind: EventTyping, Handle: handle})
}

// SetPresence flips the online flag for handle. Presence can race ahead of
// a directory refresh, so an unknown handle gets a provisional placeholder
// entry (logged as an anomaly) instead of being rejected; the next refresh
// overwrites it.
func (m *Manager) SetPresence(handle string, online bool) {
	m.mu.Lock()
	if !m.directory.setPresence(handle, online) {
		m.logger.Warn("presence event for unknown peer, creating placeholder",
			"handle", handle, "online", online)
		m.directory.addPlaceholder(handle, online)
	}
	m.mu.Unlock()

	m.emit(Event{Kind: EventPresence, Handle: handle})
}

// SetActive focuses handle's conversation ("" clears the focus) and zeroes
// its unread counter, covering messages that accumulated before the switch.
func (m *Manager) SetActive(handle string) {
	m.mu.Lock()
	m.active.set(handle)
	if handle != "" {
		m.convos.clearUnread(handle)
	}
	m.mu.Unlock()

	m.emit(Event{Kind: EventActiveChat, Handle: handle})
}

// MarkRead zeroes the unread counter without changing focus, for callers
// that drive read state from scroll position rather than focus.
func (m *Manager) MarkRead(handle string) {
	m.mu.Lock()
	m.convos.clearUnread(handle)
	m.mu.Unlock()

	m.emit(Event{Kind: EventRead, Handle: handle})
}

// Users returns a directory snapshot sorted by handle.
func (m *Manager) Users() []model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.directory.snapshot()
}

// User looks up a single directory entry.
func (m *Manager) User(handle string) (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.directory.get(handle)
}

// Conversation returns a copy of the cached thread with handle.
func (m *Manager) Conversation(handle string) []model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.convos.snapshot(handle)
}

// Unread returns the unread count for handle, zero if none.
func (m *Manager) Unread(handle string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.convos.unreadCount(handle)
}

// IsTyping reports whether handle is currently composing.
func (m *Manager) IsTyping(handle string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.typing.get(handle)
}

// ActiveChat returns the focused handle, false when nothing is focused.
func (m *Manager) ActiveChat() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active.current()
}

// Latest returns the tail message of handle's thread, or the
// {Content:"", Read:true} sentinel when nothing is cached.
func (m *Manager) Latest(handle string) model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.convos.latest(handle)
}
