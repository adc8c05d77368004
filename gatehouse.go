package gatehouse

// Role identifies the application-level role derived from the identity
// provider's realm roles. Exactly one role is selected per session.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAuctioneer Role = "auctioneer"
	RoleBidder     Role = "bidder"
	RoleSupport    Role = "support"
	RoleGuest      Role = "guest"
)

// User is the domain-facing identity record for a logged-in marketplace user,
// mapped from the backend API's raw user payload
type User struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Type      Role   `json:"userType"`
	Verified  bool   `json:"verified"`
}

// AuthState is the snapshot of a session that clients poll to decide whether
// the user is logged in: LoggedIn is true if and only if User is set, and
// IsLoading is true only while the session is still being restored from
// persisted credentials
type AuthState struct {
	LoggedIn  bool   `json:"loggedIn"`
	IsLoading bool   `json:"isLoading,omitempty"`
	User      *User  `json:"user,omitempty"`
	Error     string `json:"error,omitempty"`
}
