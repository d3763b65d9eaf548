package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"        // إيداع
	TransactionTypeWithdrawal   TransactionType = "withdrawal"     // سحب
	TransactionTypeTransferToHQ TransactionType = "transfer_to_hq" // تحويل للمركز الرئيسي
)

type TransactionSource string

const (
	SourceDailySales TransactionSource = "daily_sales" // مبيعات يومية
	SourceManual     TransactionSource = "manual"      // إدخال يدوي
	SourceTransfer   TransactionSource = "transfer"    // مرتبط بتحويل
)

// CashBoxTransaction: قيد دفتري غير قابل للتعديل
// Amount is always a positive magnitude; the sign applied to the balance
// comes from Type. Once created a row is never mutated.
type CashBoxTransaction struct {
	ID              uint              `gorm:"primaryKey"`
	BranchID        uint              `gorm:"index;not null"`
	Branch          Branch
	CashBoxID       uint              `gorm:"index;not null"`
	Amount          decimal.Decimal   `gorm:"type:decimal(14,2);not null"`
	Type            TransactionType   `gorm:"size:20;not null"`
	Source          TransactionSource `gorm:"size:20;not null"`
	CreatedBy       uint              `gorm:"not null"`
	Date            time.Time         `gorm:"index;not null"` // تاريخ العملية (يوم العمل)
	Notes           string            `gorm:"size:255"`
	ReferenceNumber string            `gorm:"size:50;index"` // الافتراضي TR-{id}
	CreatedAt       time.Time
}
