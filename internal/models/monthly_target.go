package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTarget: هدف المبيعات الشهري للفرع
type MonthlyTarget struct {
	ID           uint            `gorm:"primaryKey"`
	BranchID     uint            `gorm:"not null;uniqueIndex:idx_targets_branch_period"`
	Branch       Branch
	Year         int             `gorm:"not null;uniqueIndex:idx_targets_branch_period"`
	Month        int             `gorm:"not null;uniqueIndex:idx_targets_branch_period"` // 1-12
	TargetAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Notes        string          `gorm:"size:255"`
	CreatedBy    uint            `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
