package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScanEvent records a single QR resolution. Rows are append-only and never
// updated; aggregates live on the QRCode counter.
type ScanEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	QRCodeID  uuid.UUID `json:"qr_code_id" gorm:"type:char(36);not null;index"`
	ProfileID uuid.UUID `json:"profile_id" gorm:"type:char(36);not null;index"`

	IP string `json:"ip,omitempty" gorm:"size:45"`

	// Geo fields are best effort; "Unknown" when the lookup fails or times out.
	Country   string  `json:"country" gorm:"size:64"`
	City      string  `json:"city" gorm:"size:128"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Device  string `json:"device" gorm:"size:32"`
	Browser string `json:"browser" gorm:"size:32"`
	OS      string `json:"os" gorm:"size:32"`

	// GeoRaw keeps the provider payload for fields the schema does not model.
	GeoRaw datatypes.JSON `json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
