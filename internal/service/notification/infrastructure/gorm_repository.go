package infrastructure

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bazaar/internal/service/notification/domain"
)

// GormNotificationRepository 基于 gorm 的通知持久化实现，
// 同时兼任用户目录和设备令牌注册表的查询端。
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) SaveBatch(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	models := make([]NotificationModel, 0, len(notifications))
	for _, n := range notifications {
		models = append(models, toNotificationModel(n))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

func (r *GormNotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*domain.Notification, error) {
	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]*domain.Notification, 0, len(models))
	for i := range models {
		n, err := toDomainNotification(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *GormNotificationRepository) UpdateStatus(ctx context.Context, id string, recipientID int64, status domain.NotificationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("update notification status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func toNotificationModel(n *domain.Notification) NotificationModel {
	return NotificationModel{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Event:       n.Event,
		OrderID:     n.OrderID,
		Title:       n.Title,
		Message:     n.Message,
		Payload:     n.Payload,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toDomainNotification(m *NotificationModel) (*domain.Notification, error) {
	status, err := domain.ToNotificationStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", m.ID, err)
	}
	return &domain.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Event:       m.Event,
		OrderID:     m.OrderID,
		Title:       m.Title,
		Message:     m.Message,
		Payload:     m.Payload,
		Status:      status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// GormUserDirectory 按角色查用户，用于解析角色受众。
type GormUserDirectory struct {
	db *gorm.DB
}

func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) FindByRole(ctx context.Context, role string) ([]int64, error) {
	var ids []int64
	err := d.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("role = ?", role).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("find users by role %s: %w", role, err)
	}
	return ids, nil
}

// GormDeviceTokenRegistry 查询用户当前注册的推送令牌。
type GormDeviceTokenRegistry struct {
	db *gorm.DB
}

func NewGormDeviceTokenRegistry(db *gorm.DB) *GormDeviceTokenRegistry {
	return &GormDeviceTokenRegistry{db: db}
}

func (r *GormDeviceTokenRegistry) TokensFor(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&DeviceTokenModel{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("find device tokens for user %d: %w", userID, err)
	}
	return tokens, nil
}

var (
	_ domain.NotificationRepository = (*GormNotificationRepository)(nil)
	_ domain.UserDirectory          = (*GormUserDirectory)(nil)
	_ domain.DeviceTokenRegistry    = (*GormDeviceTokenRegistry)(nil)
)
