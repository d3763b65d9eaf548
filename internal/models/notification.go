package models

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification: إشعار للمستخدم
// UserID = nil is a broadcast to all admin users.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    *uint            `gorm:"index" json:"user_id"`
	Title     string           `gorm:"size:100;not null" json:"title"`
	Message   string           `gorm:"size:255;not null" json:"message"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
	Link      string           `gorm:"size:255" json:"link"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
