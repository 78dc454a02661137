package chatstate

import (
	"context"

	"github.com/mahaj/chat-client/pkg/model"
)

// Identity is the read-only view of the signed-in user. The session layer
// owns the token lifecycle; the state engine only ever asks "who am I".
type Identity interface {
	// CurrentHandle returns the signed-in user's handle, false when the
	// session is gone (e.g. mid-logout).
	CurrentHandle() (string, bool)
}

// DirectoryFetcher retrieves the full set of known users.
type DirectoryFetcher interface {
	FetchDirectory(ctx context.Context) ([]model.User, error)
}

// HistoryFetcher retrieves one page of the conversation with peer, in
// conversation order. Callers wanting the whole thread pass a size that
// covers it.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, peer string, page, size int) ([]model.Message, error)
}
