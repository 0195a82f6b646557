package sink

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationModel is a row of the notifications table, the inbox of a member.
type NotificationModel struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	MemberID  string            `gorm:"column:member_id;not null;index"`
	Kind      string            `gorm:"column:kind;not null"`
	Payload   datatypes.JSONMap `gorm:"column:payload"`
	ReadAt    *time.Time        `gorm:"column:read_at"`
	CreatedAt time.Time         `gorm:"column:created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// GormNotificationStore keeps notifications in the notifications table.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) GormNotificationStore {
	return GormNotificationStore{db: db}
}

// Migrate creates the notifications table.
func (s GormNotificationStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&NotificationModel{})
}

func (s GormNotificationStore) Notify(ctx context.Context, kind Kind, memberID string, payload map[string]string) error {
	row := NotificationModel{
		ID:        uuid.New(),
		MemberID:  memberID,
		Kind:      string(kind),
		Payload:   toJSONMap(payload),
		CreatedAt: time.Now().UTC(),
	}

	return s.db.WithContext(ctx).Create(&row).Error
}

// ListForMember returns the notifications of a member, newest first.
func (s GormNotificationStore) ListForMember(ctx context.Context, memberID string) ([]NotificationModel, error) {
	var rows []NotificationModel

	err := s.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&rows).Error

	return rows, err
}

var _ Notifier = GormNotificationStore{}
