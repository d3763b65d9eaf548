package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailySalesStatus string

const (
	DailySalesStatusPending     DailySalesStatus = "pending"     // لم ترحّل بعد
	DailySalesStatusTransferred DailySalesStatus = "transferred" // رحّلت إلى الصندوق
)

// DailySales: تسجيل مبيعات الكاشير اليومية
type DailySales struct {
	ID                uint            `gorm:"primaryKey"`
	BranchID          uint            `gorm:"index;not null"`
	Branch            Branch
	CashierID         uint            `gorm:"index;not null"`
	Date              time.Time       `gorm:"index;not null"`
	TotalCashSales    decimal.Decimal `gorm:"type:decimal(14,2);default:0"` // مبيعات نقدية
	TotalNetworkSales decimal.Decimal `gorm:"type:decimal(14,2);default:0"` // مبيعات شبكة
	TotalSales        decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	Status            DailySalesStatus `gorm:"size:20;not null;default:'pending'"`
	Notes             string          `gorm:"size:255"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
