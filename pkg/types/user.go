package types

// UserRole represents the role of a portal user
type UserRole string

const (
	RoleFrontDesk    UserRole = "front_desk"
	RoleNurse        UserRole = "nurse"
	RolePhysician    UserRole = "physician"
	RoleAdmin        UserRole = "admin"
	RoleHousekeeping UserRole = "housekeeping"
)

// UserClaims represents the validated identity attached to a request. The
// username is recorded as the actor on admission history entries.
type UserClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// CanOverrideDischarge reports whether the role may finalize a discharge in
// spite of blocking reasons
func (c *UserClaims) CanOverrideDischarge() bool {
	return c.Role == RoleAdmin
}
