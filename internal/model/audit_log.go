package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditAction is the taxonomy for audit log entries.
type AuditAction string

const (
	AuditUserCreated        AuditAction = "USER_CREATED"
	AuditUserDeleted        AuditAction = "USER_DELETED"
	AuditUserSuspended      AuditAction = "USER_SUSPENDED"
	AuditSubAdminCreated    AuditAction = "SUBADMIN_CREATED"
	AuditInvitationAccepted AuditAction = "INVITATION_ACCEPTED"
)

// AuditLog is an append-only record of privileged actions. Entries are facts:
// they reference actors by ID without foreign keys so deleting a user never
// touches history.
type AuditLog struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Action      AuditAction `json:"action" gorm:"type:varchar(64);not null;index"`
	Description string      `json:"description" gorm:"size:512"`

	ActorID *uuid.UUID `json:"actor_id,omitempty" gorm:"type:char(36);index"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
