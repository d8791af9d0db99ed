package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus 是收件人对单条通知的处理状态。
type NotificationStatus string

const (
	StatusUnread    NotificationStatus = "UNREAD"
	StatusRead      NotificationStatus = "READ"
	StatusActed     NotificationStatus = "ACTED"
	StatusDismissed NotificationStatus = "DISMISSED"
	StatusArchived  NotificationStatus = "ARCHIVED"
)

// ToNotificationStatus 校验外部输入的状态字符串。
func ToNotificationStatus(s string) (NotificationStatus, error) {
	switch NotificationStatus(s) {
	case StatusUnread, StatusRead, StatusActed, StatusDismissed, StatusArchived:
		return NotificationStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Notification 是落库的一条收件人通知。一次事件会为每个
// 收件人生成一条独立记录，各自维护自己的状态。
type Notification struct {
	ID          string
	RecipientID int64
	Event       string
	OrderID     string
	Title       string
	Message     string
	Payload     string
	Status      NotificationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewNotification 为单个收件人生成一条未读通知。
func NewNotification(recipientID int64, event, orderID, title, message, payload string) *Notification {
	now := time.Now()
	return &Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Event:       event,
		OrderID:     orderID,
		Title:       title,
		Message:     message,
		Payload:     payload,
		Status:      StatusUnread,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
