package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role controls what a user may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub-admin"
	RoleUser     Role = "user"
)

// Status is the account lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// User represents an account on the platform.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	Status       Status    `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`

	// Plan entitlements. Zero means the plan default applies.
	MaxProfiles int            `json:"max_profiles,omitempty" gorm:"default:0"`
	MaxQRCodes  int            `json:"max_qr_codes,omitempty" gorm:"default:0"`
	Features    datatypes.JSON `json:"features,omitempty"`

	// Permissions narrows what a sub-admin may do; empty for other roles.
	Permissions datatypes.JSON `json:"permissions,omitempty"`

	// Invitation fields are set for pending accounts and cleared on acceptance.
	InvitationToken   *string    `json:"-" gorm:"size:64;index"`
	InvitationExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Profiles []Profile `json:"profiles,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
