package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a digital business card owned by a single user. Username is the
// public URL slug; the unique index covers soft-deleted rows too, so a slug can
// never be reused while a deleted profile still holds it.
type Profile struct {
	ID       uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Username string    `json:"username" gorm:"uniqueIndex;size:64;not null"`

	DisplayName string `json:"display_name" gorm:"size:255;not null"`
	Title       string `json:"title,omitempty" gorm:"size:255"`
	Company     string `json:"company,omitempty" gorm:"size:255"`
	Bio         string `json:"bio,omitempty" gorm:"size:1024"`

	Email   string `json:"email,omitempty" gorm:"size:255"`
	Phone   string `json:"phone,omitempty" gorm:"size:64"`
	Website string `json:"website,omitempty" gorm:"size:512"`

	LinkedIn  string `json:"linkedin,omitempty" gorm:"size:512"`
	Twitter   string `json:"twitter,omitempty" gorm:"size:512"`
	Instagram string `json:"instagram,omitempty" gorm:"size:512"`

	// Visibility flags gate contact fields on the public page.
	ShowEmail bool `json:"show_email" gorm:"default:false"`
	ShowPhone bool `json:"show_phone" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PublicView returns the fields visible on the public profile page,
// honoring the owner's visibility flags.
func (p *Profile) PublicView() map[string]interface{} {
	view := map[string]interface{}{
		"username":     p.Username,
		"display_name": p.DisplayName,
		"title":        p.Title,
		"company":      p.Company,
		"bio":          p.Bio,
		"website":      p.Website,
		"linkedin":     p.LinkedIn,
		"twitter":      p.Twitter,
		"instagram":    p.Instagram,
	}
	if p.ShowEmail {
		view["email"] = p.Email
	}
	if p.ShowPhone {
		view["phone"] = p.Phone
	}
	return view
}
