package domain

import "time"

// Roles carried in JWT claims.
const (
	RoleAdmin   = "admin"
	RolePatient = "patient"
)

// User is an Admin (healthcare worker) account. Patients log in through
// their own table using the ABHA ID.
type User struct {
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Designation   string    `json:"designation,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) ToJSON() map[string]any {
	return map[string]any{
		"user_id":        u.UserID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"designation":    u.Designation,
		"contact_number": u.ContactNumber,
	}
}
