package models

import "time"

// Activity: سجل حركات النظام
// Denormalized audit trail; written best-effort after the financial
// mutation commits, so a missing row never implies a missing transaction.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	BranchID  *uint     `json:"branch_id"`
	Action    string    `gorm:"size:50;index" json:"action"` // مثل "cash_box_deposit"
	Details   string    `gorm:"size:255" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
