package sink

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLogModel is a row of the audit_logs table.
type AuditLogModel struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ActorID    string            `gorm:"column:actor_id;not null;index"`
	Action     string            `gorm:"column:action;not null"`
	EntityType string            `gorm:"column:entity_type;not null"`
	EntityID   string            `gorm:"column:entity_id;not null;index"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt  time.Time         `gorm:"column:created_at"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// GormAuditLog writes audit records into the audit_logs table.
type GormAuditLog struct {
	db *gorm.DB
}

func NewGormAuditLog(db *gorm.DB) GormAuditLog {
	return GormAuditLog{db: db}
}

// Migrate creates the audit_logs table.
func (l GormAuditLog) Migrate(ctx context.Context) error {
	return l.db.WithContext(ctx).AutoMigrate(&AuditLogModel{})
}

func (l GormAuditLog) Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]string) error {
	row := AuditLogModel{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   toJSONMap(metadata),
		CreatedAt:  time.Now().UTC(),
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

// ListForEntity returns the audit trail of one entity, oldest first.
func (l GormAuditLog) ListForEntity(ctx context.Context, entityType, entityID string) ([]AuditLogModel, error) {
	var rows []AuditLogModel

	err := l.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&rows).Error

	return rows, err
}

func toJSONMap(values map[string]string) datatypes.JSONMap {
	jsonMap := make(datatypes.JSONMap, len(values))
	for key, value := range values {
		jsonMap[key] = value
	}

	return jsonMap
}

var _ AuditSink = GormAuditLog{}
