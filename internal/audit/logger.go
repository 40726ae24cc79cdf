package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

// Logger persists one audit event.
type Logger interface {
	Log(ctx context.Context, ev Event) error
}

// GormLogger writes events to the audit_logs table.
type GormLogger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormLogger {
	return &GormLogger{db: db}
}

func (l *GormLogger) Log(ctx context.Context, ev Event) error {
	row := models.AuditLog{
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Actor:    ev.Actor,
		Metadata: encodeMetadata(ev.Metadata),
	}
	return l.db.WithContext(ctx).Create(&row).Error
}

// ZapLogger is used when there is no database; events become log lines.
type ZapLogger struct {
	log *zap.Logger
}

func NewZapLogger(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log}
}

func (l *ZapLogger) Log(_ context.Context, ev Event) error {
	l.log.Info("audit",
		zap.String("action", ev.Action),
		zap.String("entity", ev.Entity),
		zap.String("entity_id", ev.EntityID),
		zap.String("actor", ev.Actor),
		zap.String("metadata", encodeMetadata(ev.Metadata)),
	)
	return nil
}

func encodeMetadata(metadata any) string {
	if metadata == nil {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}
