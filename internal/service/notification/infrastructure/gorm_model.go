package infrastructure

import "time"

// NotificationModel 对应 notifications 表，一行是一个收件人
// 看到的一条通知。
type NotificationModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	RecipientID int64     `gorm:"index;not null"`
	Event       string    `gorm:"type:varchar(64);not null"`
	OrderID     string    `gorm:"type:varchar(36);index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Message     string    `gorm:"type:text"`
	Payload     string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(16);not null;default:UNREAD"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// DeviceTokenModel 对应 device_tokens 表，记录用户登录设备的推送令牌。
type DeviceTokenModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"index;not null"`
	Token     string `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time
}

func (DeviceTokenModel) TableName() string {
	return "device_tokens"
}

// UserModel 只取通知侧关心的字段，角色用于解析 "role:*" 受众。
type UserModel struct {
	ID   int64  `gorm:"primaryKey"`
	Role string `gorm:"type:varchar(16);index;not null"`
}

func (UserModel) TableName() string {
	return "users"
}
