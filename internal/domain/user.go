package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User. All wrap ErrValidation so the API
// layer maps them to a client error rather than a server fault.
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyEmail          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrEmptyUsername       = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	ErrPasswordTooLong     = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)
	ErrEmptyPassword       = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrInvalidTheme        = fmt.Errorf("%w: theme must be light or dark", ErrValidation)
	ErrUnknownTimezone     = fmt.Errorf("%w: unknown timezone", ErrValidation)
	ErrEmptyHashedPassword = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
)

// Theme is the UI theme preference.
type Theme string

// Possible theme values
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences holds the per-user settings the backend consumes: the reminder
// opt-in and the IANA timezone in which due times are interpreted.
type Preferences struct {
	Theme              Theme  `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	Timezone           string `json:"timezone"`
}

// User represents a registered user of the application.
type User struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Username       string      `json:"username"`
	Password       string      `json:"-"` // Plaintext, only populated transiently before hashing
	HashedPassword string      `json:"-"` // Never expose the hash in JSON
	Bio            string      `json:"bio,omitempty"`
	AvatarURL      string      `json:"avatar_url,omitempty"`
	Preferences    Preferences `json:"preferences"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewUser creates a new User with the given email, username and plaintext
// password, applying default preferences (light theme, notifications on,
// UTC). The caller is responsible for hashing the password before storage.
func NewUser(email, username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: password,
		Preferences: Preferences{
			Theme:              ThemeLight,
			EmailNotifications: true,
			Timezone:           "UTC",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 { // bcrypt's practical limit
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	switch u.Preferences.Theme {
	case ThemeLight, ThemeDark:
	default:
		return ErrInvalidTheme
	}
	if _, err := time.LoadLocation(u.Preferences.Timezone); err != nil {
		return ErrUnknownTimezone
	}
	return nil
}

// Location resolves the user's configured timezone.
// A user that validated successfully always resolves.
func (u *User) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(u.Preferences.Timezone)
	if err != nil {
		return nil, ErrUnknownTimezone
	}
	return loc, nil
}

// validEmailFormat performs basic validation of email format: a single @
// with a dotted domain part. Full RFC 5322 validation is the API layer's
// concern via its validator.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
