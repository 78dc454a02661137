package chatstate

import (
	"sort"

	"github.com/mahaj/chat-client/pkg/model"
)

// directory is the known-peer table. Entries are only ever replaced
// wholesale by a refresh or flipped online/offline by presence events;
// nothing removes a single user.
type directory struct {
	users map[string]*model.User
}

func newDirectory() *directory {
	return &directory{users: make(map[string]*model.User)}
}

func (d *directory) replace(users []model.User) {
	next := make(map[string]*model.User, len(users))
	for i := range users {
		u := users[i]
		next[u.Username] = &u
	}
	d.users = next
}

// setPresence flips the online flag for handle. Returns false when the
// handle is unknown; the caller decides the placeholder policy.
func (d *directory) setPresence(handle string, online bool) bool {
	u, ok := d.users[handle]
	if !ok {
		return false
	}
	u.Online = online
	return true
}

// addPlaceholder records a handle seen only through out-of-order presence
// or typing traffic, to be overwritten by the next refresh.
func (d *directory) addPlaceholder(handle string, online bool) {
	d.users[handle] = &model.User{Username: handle, Online: online}
}

func (d *directory) get(handle string) (model.User, bool) {
	u, ok := d.users[handle]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

func (d *directory) snapshot() []model.User {
	out := make([]model.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
