package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles supported by the platform.
const (
	RoleEntrepreneur = "entrepreneur"
	RoleInvestor     = "investor"
)

// User describes a platform account. Every user is either an entrepreneur
// raising capital or an investor deploying it.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Name   string `gorm:"not null" json:"name"`
	Avatar string `json:"avatar"`
	Role   string `gorm:"type:varchar(32);not null;index" json:"role"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Profile  *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ValidRole reports whether the supplied role is one the platform accepts.
func ValidRole(role string) bool {
	return role == RoleEntrepreneur || role == RoleInvestor
}
