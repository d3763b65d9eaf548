package cashbox

import (
	"errors"
	"fmt"
	"log"
	"time"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/sales"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProcessDailySalesToCashBox reconciles a daily-sales record into the
// branch cash box. Idempotent: a second call for the same record returns
// the already-posted deposit instead of posting twice.
func ProcessDailySalesToCashBox(dailySalesID uint) (*models.CashBoxTransaction, error) {
	record, err := sales.GetDailySalesByID(dailySalesID)
	if err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("DS-%d", dailySalesID)

	var existing models.CashBoxTransaction
	err = database.DB.
		Where("source = ? AND reference_number = ?", models.SourceDailySales, ref).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var trx *models.CashBoxTransaction
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// lazy cash box creation, attributed to the cashier
		var box models.BranchCashBox
		if err := tx.Where("branch_id = ?", record.BranchID).First(&box).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			box = models.BranchCashBox{
				BranchID:    record.BranchID,
				Balance:     decimal.Zero,
				LastUpdated: time.Now(),
				CreatedBy:   record.CashierID,
			}
			if err := tx.Create(&box).Error; err != nil {
				return err
			}
		}

		var txErr error
		trx, txErr = createTransactionTx(tx, TransactionInput{
			BranchID:        record.BranchID,
			Amount:          record.TotalCashSales,
			Type:            models.TransactionTypeDeposit,
			Source:          models.SourceDailySales,
			CreatedBy:       record.CashierID,
			Date:            record.Date,
			Notes:           fmt.Sprintf("إيداع مبيعات يومية #%d", record.ID),
			ReferenceNumber: ref,
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}

	// the status flip is the daily-sales subsystem's own record; a failure
	// here does not undo the posted deposit, the DS reference guard keeps a
	// retry from double-posting
	if err := sales.UpdateDailySalesStatus(record.ID, models.DailySalesStatusTransferred); err != nil {
		log.Printf("daily sales %d status update failed: %v", record.ID, err)
	}

	logActivity(record.CashierID, record.BranchID, "daily_sales_transferred",
		fmt.Sprintf("ترحيل مبيعات يومية #%d إلى الصندوق بمبلغ %s", record.ID, record.TotalCashSales.StringFixed(2)))

	return trx, nil
}
