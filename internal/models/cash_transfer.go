package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"  // بانتظار التأكيد
	TransferStatusApproved TransferStatus = "approved" // مؤكد
	TransferStatusRejected TransferStatus = "rejected" // مرفوض
)

type TransferMethod string

const (
	TransferMethodBank    TransferMethod = "bank_transfer" // حوالة بنكية
	TransferMethodCourier TransferMethod = "courier"       // مندوب
	TransferMethodCash    TransferMethod = "cash_delivery" // تسليم نقدي
)

// CashTransferToHQ: طلب تحويل نقدية من الفرع إلى المركز الرئيسي
// The branch balance is debited at creation time (the physical cash has
// already left the branch); approval is an administrative acknowledgement.
// Status moves once from pending to approved or rejected and is terminal.
type CashTransferToHQ struct {
	ID              uint            `gorm:"primaryKey"`
	BranchID        uint            `gorm:"index;not null"`
	Branch          Branch
	CashBoxID       uint            `gorm:"index;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TransferMethod  TransferMethod  `gorm:"size:30;not null"`
	Date            time.Time       `gorm:"index;not null"`
	CreatedBy       uint            `gorm:"not null"`
	Notes           string          `gorm:"size:255"`
	ReferenceNumber string          `gorm:"size:50;index"` // الافتراضي HQ-{id}
	Status          TransferStatus  `gorm:"size:20;not null;default:'pending'"`
	ApprovedAt      *time.Time
	ApprovedBy      *uint
	RejectionReason string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
