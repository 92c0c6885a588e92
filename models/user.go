package models

import (
	"time"
)

// Role values. Organizer emails are exclusive: an email linked to an
// organizer account can never be reused for any other role, and vice versa.
const (
	RoleOrganizer   = "organizer"
	RoleAuthor      = "author"
	RoleReviewer    = "reviewer"
	RoleParticipant = "participant"
)

// ValidRoles lists every role accepted at registration or OAuth login.
var ValidRoles = map[string]bool{
	RoleOrganizer:   true,
	RoleAuthor:      true,
	RoleReviewer:    true,
	RoleParticipant: true,
}

type User struct {
	UserID      uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"` // empty for OAuth-only accounts
	Role        string     `gorm:"column:role" json:"role"`
	Affiliation *string    `gorm:"column:affiliation" json:"affiliation,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Identities []UserIdentity `gorm:"foreignKey:UserID" json:"identities,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsOrganizer() bool {
	return u.Role == RoleOrganizer
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Identity providers.
const (
	ProviderGoogle = "google"
	ProviderORCID  = "orcid"
)

// UserIdentity links one external identity (a Google subject or an ORCID iD)
// to a user. One row per provider linkage; a user may carry several.
type UserIdentity struct {
	IdentityID uint       `gorm:"primaryKey;column:identity_id" json:"identity_id"`
	UserID     uint       `gorm:"column:user_id;index" json:"user_id"`
	Provider   string     `gorm:"column:provider" json:"provider"`
	Subject    string     `gorm:"column:subject" json:"subject"` // provider-side stable identifier
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserIdentity) TableName() string {
	return "user_identities"
}
