package model

import "time"

// Account roles carried in the JWT "role" claim.
const (
    RoleGuest = "GUEST"
    RoleAdmin = "ADMIN"
)

// User represents a row of the `users` table.  Handlers build their own
// response types, so no json tags are declared here.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleGuest or RoleAdmin.
//  IsActive     – whether the account may sign in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64
    Email        string
    PasswordHash string
    Role         string
    IsActive     bool
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// NormalizeRole maps free-form input onto a known role.  Anything other
// than ADMIN becomes GUEST.
func NormalizeRole(s string) string {
    switch s {
    case RoleAdmin, "admin", "Admin":
        return RoleAdmin
    default:
        return RoleGuest
    }
}
