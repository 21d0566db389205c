package domain

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	emailMinLen = 5
	emailMaxLen = 120
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type UserStatus uint8

const (
	UserStatusActive UserStatus = iota + 1
	UserStatusSuspended
)

func (s UserStatus) String() string {
	switch s {
	case UserStatusActive:
		return "active"
	case UserStatusSuspended:
		return "suspended"
	}
	return fmt.Sprintf("UserStatus(%d)", uint8(s))
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch s {
	case "active":
		return UserStatusActive, nil
	case "suspended":
		return UserStatusSuspended, nil
	}
	return 0, Validationf("invalid user status: %q", s)
}

func (s UserStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *UserStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseUserStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s UserStatus) Value() (driver.Value, error) { return s.String(), nil }
func (s *UserStatus) Scan(src any) error         { return scanText(src, s.UnmarshalText) }

type User struct {
	ID              uuid.UUID  `json:"id"`
	Role            UserRole   `json:"role"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	DriverLicenseNo string     `json:"driver_license_no,omitempty"`
	Status          UserStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) Validate() error {
	if n := len(u.Email); n < emailMinLen || n > emailMaxLen {
		return Validationf("email length out of range")
	}
	if !emailPattern.MatchString(u.Email) {
		return Validationf("invalid email format")
	}
	if u.Role != UserRoleCustomer && u.Role != UserRoleAdmin {
		return Validationf("invalid role: %q", u.Role)
	}
	if u.Role == UserRoleCustomer && u.DriverLicenseNo == "" {
		return Validationf("customer must have driver_license_no")
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return nil
}
