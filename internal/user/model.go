package user

import (
	"strings"
	"time"
)

// Profile is the backend's record of a signed-in guest.
type Profile struct {
	ClerkID   string     `json:"clerk_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	LastLogin *time.Time `json:"last_login"`
}

// DisplayName is the name shown in the navigation bar.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	return p.Email
}
