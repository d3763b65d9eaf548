package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchCashBox: صندوق نقدية واحد لكل فرع
// Balance must always equal the sum of signed transaction amounts applied
// to the branch since creation. Rows are never deleted.
type BranchCashBox struct {
	ID          uint            `gorm:"primaryKey"`
	BranchID    uint            `gorm:"uniqueIndex;not null"`
	Branch      Branch
	Balance     decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	LastUpdated time.Time       `gorm:"not null"`
	CreatedBy   uint            `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
