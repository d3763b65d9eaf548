package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"      // إدارة المركز الرئيسي
	RoleAccountant UserRole = "accountant" // محاسب الفرع
	RoleSupervisor UserRole = "supervisor" // مشرف الفرع
	RoleCashier    UserRole = "cashier"    // كاشير
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     *uint
	Branch       *Branch
	Name         string   `gorm:"size:100;not null"`
	Username     string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
