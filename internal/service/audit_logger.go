package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taply/internal/model"
	"taply/internal/repository"
)

// AuditLogger appends entries to the audit log. Record never returns an
// error: audit writes must not fail the operation they are attached to, so
// failures are logged and swallowed.
type AuditLogger struct {
	repo repository.AuditRepository
	log  *logrus.Logger
}

// NewAuditLogger creates an audit logger.
func NewAuditLogger(repo repository.AuditRepository, log *logrus.Logger) *AuditLogger {
	return &AuditLogger{repo: repo, log: log}
}

// Record appends an audit entry. Safe to call on a nil logger.
func (l *AuditLogger) Record(ctx context.Context, action model.AuditAction, description string, actorID *uuid.UUID, metadata map[string]interface{}) {
	if l == nil || l.repo == nil {
		return
	}

	entry := &model.AuditLog{
		Action:      action,
		Description: description,
		ActorID:     actorID,
	}
	if metadata != nil {
		if payload, err := json.Marshal(metadata); err == nil {
			entry.Metadata = payload
		}
	}

	if err := l.repo.Create(ctx, entry); err != nil && l.log != nil {
		l.log.WithError(err).WithField("action", action).Warn("audit log write failed")
	}
}
