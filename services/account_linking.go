package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"conference-management-api/config"
	"conference-management-api/models"
)

var (
	ErrEmailReservedForOrganizer = errors.New("email is reserved for an organizer account")
	ErrEmailNotOrganizer         = errors.New("email is already used by a non-organizer account")
	ErrInvalidRole               = errors.New("invalid role")
)

// ExternalIdentity is the profile resolved from an OAuth provider.
type ExternalIdentity struct {
	Provider  string
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// ResolveRole applies the account-linking role rule. existingRole is empty
// when no account exists for the identity's email. The organizer role is
// exclusive in both directions; the other roles may share an email and
// switch freely between each other on login.
func ResolveRole(existingRole, requestedRole string) (string, error) {
	if !models.ValidRoles[requestedRole] {
		return "", ErrInvalidRole
	}
	if existingRole == "" {
		return requestedRole, nil
	}
	if existingRole == models.RoleOrganizer {
		if requestedRole != models.RoleOrganizer {
			return "", ErrEmailReservedForOrganizer
		}
		return models.RoleOrganizer, nil
	}
	if requestedRole == models.RoleOrganizer {
		return "", ErrEmailNotOrganizer
	}
	return requestedRole, nil
}

// AccountLinker maps external identities onto internal users.
type AccountLinker struct {
	db *gorm.DB
}

func NewAccountLinker(db *gorm.DB) *AccountLinker {
	if db == nil {
		db = config.DB
	}
	return &AccountLinker{db: db}
}

// Resolve finds or creates the user for an external identity. Lookup order:
// an already-linked identity row wins; otherwise the account with the same
// (lower-cased) email is linked; otherwise a new account is created with
// the requested role. Role conflicts follow ResolveRole.
func (l *AccountLinker) Resolve(ctx context.Context, ident ExternalIdentity, requestedRole string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	now := time.Now()

	var user *models.User
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var linked models.UserIdentity
		err := tx.Where("provider = ? AND subject = ?", ident.Provider, ident.Subject).
			First(&linked).Error
		switch {
		case err == nil:
			var existing models.User
			if err := tx.Where("user_id = ? AND delete_at IS NULL", linked.UserID).
				First(&existing).Error; err != nil {
				return err
			}
			user = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			var existing models.User
			err := tx.Where("email = ? AND delete_at IS NULL", email).First(&existing).Error
			switch {
			case err == nil:
				user = &existing
			case errors.Is(err, gorm.ErrRecordNotFound):
				user = nil
			default:
				return err
			}
		default:
			return err
		}

		existingRole := ""
		if user != nil {
			existingRole = user.Role
		}
		role, err := ResolveRole(existingRole, requestedRole)
		if err != nil {
			return err
		}

		if user == nil {
			user = &models.User{
				FirstName: ident.FirstName,
				LastName:  ident.LastName,
				Email:     email,
				Role:      role,
				CreateAt:  &now,
				UpdateAt:  &now,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		} else if user.Role != role {
			user.Role = role
			user.UpdateAt = &now
			if err := tx.Save(user).Error; err != nil {
				return err
			}
		}

		// Link the identity when this provider+subject is new for the user.
		var count int64
		if err := tx.Model(&models.UserIdentity{}).
			Where("provider = ? AND subject = ? AND user_id = ?", ident.Provider, ident.Subject, user.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			link := models.UserIdentity{
				UserID:   user.UserID,
				Provider: ident.Provider,
				Subject:  ident.Subject,
				CreateAt: &now,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
