package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode maps an opaque short code to a profile. Scans is only ever changed
// through an atomic increment at the store; it is never written from a value
// read by the application.
type QRCode struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:32;not null"`
	ProfileID uuid.UUID `json:"profile_id" gorm:"type:char(36);not null;index"`
	Scans     uint64    `json:"scans" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Profile Profile `json:"-" gorm:"foreignKey:ProfileID"`
}

// BeforeCreate sets UUID before creating the record.
func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
