package chatstate

// activeSelector holds the single focused conversation, or nothing. While
// a handle is active its unread counter is pinned at zero: increments are
// suppressed at append time, not repaired afterwards.
type activeSelector struct {
	handle string
}

func (a *activeSelector) set(handle string) {
	a.handle = handle
}

func (a *activeSelector) current() (string, bool) {
	return a.handle, a.handle != ""
}

func (a *activeSelector) is(handle string) bool {
	return a.handle != "" && a.handle == handle
}
