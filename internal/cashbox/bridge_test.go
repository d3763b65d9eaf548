package cashbox_test

import (
	"testing"

	"butterbakery-backend/internal/cashbox"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDailySales(t *testing.T, branchID uint, cash, network string) models.DailySales {
	record := models.DailySales{
		BranchID:          branchID,
		CashierID:         7,
		TotalCashSales:    dec(cash),
		TotalNetworkSales: dec(network),
		TotalSales:        dec(cash).Add(dec(network)),
		Status:            models.DailySalesStatusPending,
	}
	require.NoError(t, database.DB.Create(&record).Error)
	return record
}

func TestProcessDailySales_CreatesCashBoxAndDeposit(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الحمراء")
	record := createDailySales(t, branch.ID, "500", "120")

	trx, err := cashbox.ProcessDailySalesToCashBox(record.ID)
	require.NoError(t, err)

	// lazily created cash box holds exactly the cash-sales total
	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "500", box.Balance)
	assert.Equal(t, uint(7), box.CreatedBy) // attributed to the cashier

	assert.Equal(t, models.TransactionTypeDeposit, trx.Type)
	assert.Equal(t, models.SourceDailySales, trx.Source)
	requireDec(t, "500", trx.Amount)
	assert.Equal(t, "DS-1", trx.ReferenceNumber)

	updated, err := sales.GetDailySalesByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DailySalesStatusTransferred, updated.Status)
}

func TestProcessDailySales_Idempotent(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع العزيزية")
	record := createDailySales(t, branch.ID, "500", "0")

	first, err := cashbox.ProcessDailySalesToCashBox(record.ID)
	require.NoError(t, err)

	second, err := cashbox.ProcessDailySalesToCashBox(record.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// one transaction, one balance delta
	var count int64
	database.DB.Model(&models.CashBoxTransaction{}).Where("branch_id = ?", branch.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "500", box.Balance)
}

func TestProcessDailySales_ExistingCashBox(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع المروج")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("200"), 1)
	require.NoError(t, err)

	record := createDailySales(t, branch.ID, "350.50", "80")

	_, err = cashbox.ProcessDailySalesToCashBox(record.ID)
	require.NoError(t, err)

	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "550.50", box.Balance)
}

func TestProcessDailySales_NotFound(t *testing.T) {
	setupTestDB(t)

	_, err := cashbox.ProcessDailySalesToCashBox(999)
	require.ErrorIs(t, err, sales.ErrDailySalesNotFound)
}
