package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal profile view the messaging subsystem needs for
// conversation display. Rows are owned by the account service; this
// subsystem only reads them.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName returns the profile name, falling back to the email when
// the profile has none.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
