// Package profile manages user accounts: registration, authentication and
// lookup. Profiles act as requesters and verifiers in the verification
// lifecycle.
package profile

import (
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Profile is one registered user.
type Profile struct {
	ID           id.ProfileID
	Email        string
	Name         string
	Headline     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips credential material for responses.
func (p Profile) Public() Profile {
	p.PasswordHash = ""
	return p
}
