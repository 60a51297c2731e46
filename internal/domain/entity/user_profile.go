package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the aggregate root for the profile domain.
// Password holds an argon2id hash computed with Salt; the two fields are
// always written together so a stored hash never outlives its salt.
// Version backs the optimistic concurrency check on save.
type UserProfile struct {
	UUID      uuid.UUID
	Email     string
	Password  string
	Salt      string
	FirstName string
	LastName  string
	BirthDate time.Time
	PhotoURL  *string
	Version   int64
}

// ChangedCredentials carries a new password hash together with the salt it
// was derived from. A ChangedProfileData either has both or neither.
type ChangedCredentials struct {
	Password string
	Salt     string
}

// PhotoChange distinguishes "replace the photo" from "detach the photo".
// A nil URL clears the stored reference.
type PhotoChange struct {
	URL *string
}

// ChangedProfileData is a partial update. Nil fields mean "leave unchanged".
type ChangedProfileData struct {
	Email       *string
	Credentials *ChangedCredentials
	FirstName   *string
	LastName    *string
	BirthDate   *time.Time
	Photo       *PhotoChange
}

// Merge applies a partial update onto p and returns the result. It is pure:
// p is not modified, field merges do not interact, and absent fields keep
// their current value. The photo is the one field that supports an explicit
// clear (PhotoChange with a nil URL).
func (p UserProfile) Merge(data ChangedProfileData) UserProfile {
	out := p
	if data.Email != nil {
		out.Email = *data.Email
	}
	if data.Credentials != nil {
		out.Password = data.Credentials.Password
		out.Salt = data.Credentials.Salt
	}
	if data.FirstName != nil {
		out.FirstName = *data.FirstName
	}
	if data.LastName != nil {
		out.LastName = *data.LastName
	}
	if data.BirthDate != nil {
		out.BirthDate = *data.BirthDate
	}
	if data.Photo != nil {
		out.PhotoURL = data.Photo.URL
	}
	return out
}

// PublicProfile is the only profile representation returned to clients.
type PublicProfile struct {
	UUID      uuid.UUID `json:"uuid"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate string    `json:"birth_date"`
	PhotoURL  *string   `json:"photo_url"`
}

// PrivateProfile adds the credential fields. It feeds authentication flows
// and is never serialized to the network.
type PrivateProfile struct {
	UUID      uuid.UUID
	Email     string
	Password  string
	Salt      string
	FirstName string
	LastName  string
	BirthDate time.Time
	PhotoURL  *string
}

// BirthDateLayout is the wire format for birth dates.
const BirthDateLayout = "2006-01-02"

// Public projects the profile to its client-facing view, stripping the
// credential fields.
func (p UserProfile) Public() PublicProfile {
	return PublicProfile{
		UUID:      p.UUID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate.Format(BirthDateLayout),
		PhotoURL:  p.PhotoURL,
	}
}

// Private projects the profile for authentication use.
func (p UserProfile) Private() PrivateProfile {
	return PrivateProfile{
		UUID:      p.UUID,
		Email:     p.Email,
		Password:  p.Password,
		Salt:      p.Salt,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate,
		PhotoURL:  p.PhotoURL,
	}
}
