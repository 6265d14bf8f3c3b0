package models

// Role of an authenticated caller
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is known
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// TokenPayload is payload of the authorization token
type TokenPayload struct {
	UserID uint64 `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the caller is an administrator
func (p TokenPayload) IsAdmin() bool {
	return p.Role == RoleAdmin
}
