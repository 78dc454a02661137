package model

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "ONLINE"
	PresenceOffline PresenceStatus = "OFFLINE"
)

// User is a directory entry. Username is the stable handle used as the
// conversation key everywhere; ID and FullName are display data.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Online   bool   `json:"isOnline"`
}
