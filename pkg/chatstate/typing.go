package chatstate

// typingTable tracks which peers are currently composing. Last write wins;
// there is no timeout here — clearing is driven by an explicit stop signal
// or by a real message arriving from that peer. Rate-limiting of typing
// traffic is the gateway's job.
type typingTable struct {
	composing map[string]bool
}

func newTypingTable() *typingTable {
	return &typingTable{composing: make(map[string]bool)}
}

func (t *typingTable) set(handle string, isTyping bool) {
	if isTyping {
		t.composing[handle] = true
		return
	}
	delete(t.composing, handle)
}

func (t *typingTable) get(handle string) bool {
	return t.composing[handle]
}
