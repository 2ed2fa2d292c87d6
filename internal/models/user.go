package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserRole string

const (
	RoleUser  UserRole = "User"
	RoleAdmin UserRole = "Admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	Base
	Email         string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	FirstName     string     `gorm:"column:first_name" json:"firstName"`
	LastName      string     `gorm:"column:last_name" json:"lastName"`
	Name          string     `gorm:"column:name" json:"name"`
	PasswordHash  string     `gorm:"column:password_hash;not null" json:"-"`
	EmailVerified *time.Time `gorm:"column:email_verified" json:"emailVerified"`
	Image         string     `gorm:"column:image" json:"image"`
	Role          UserRole   `gorm:"column:role;type:text;not null;default:'User'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HashPassword(password string, cost int) error {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// DisplayName prefers the stored name and falls back to first and last name.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SplitName returns first and last name, deriving them from Name when unset.
func (u *User) SplitName() (string, string) {
	if u.FirstName != "" || u.LastName != "" {
		return u.FirstName, u.LastName
	}
	parts := strings.Fields(u.Name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
