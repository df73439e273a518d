package lending

// Session identifies the acting user of an operation. It replaces any
// ambient "current user" state: callers construct one after authentication
// and pass it explicitly into every lifecycle operation.
type Session struct {
	UserID int64
	Role   Role
}

// NewSession creates a session for the given user.
func NewSession(user User) Session {
	return Session{UserID: user.ID, Role: user.Role}
}

// IsAdmin reports whether the session belongs to the system administrator.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
