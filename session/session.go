package session

// Role is the authenticated user's role as reported by the auth endpoint.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether the role is one the client understands.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Session holds the authenticated identity for the current client context.
// Persisted as one serialized record under a single storage key so partial
// state is structurally impossible.
type Session struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Complete reports whether all four identity fields are present.
func (s Session) Complete() bool {
	return s.Username != "" && s.Email != "" && s.Token != "" && s.Role.Valid()
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) IsCustomer() bool {
	return s.Role == RoleCustomer
}
