package model

import "time"

// Roles carried in the users.role column and in the JWT "role" claim.
const (
	RoleUser        = "user"
	RoleCompanyUser = "companyuser"
	RoleAdmin       = "admin"
)

// IsPrivileged reports whether a role may see other users' data
// (applicant details, all interviews, application summaries).
func IsPrivileged(role string) bool {
	return role == RoleCompanyUser || role == RoleAdmin
}

// NormalizeRole maps a self-declared registration role onto the allowed
// set. Admin can never be self-assigned; anything unknown becomes user.
func NormalizeRole(role string) string {
	if role == RoleCompanyUser {
		return RoleCompanyUser
	}
	return RoleUser
}

// User represents an account as stored in the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Name         – display name.
//	Role         – user, companyuser or admin.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the signed refresh JWT is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
