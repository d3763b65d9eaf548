package cashbox_test

import (
	"strings"
	"testing"
	"time"

	"butterbakery-backend/internal/cashbox"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setupTestDB(t *testing.T) {
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	// keep the whole test on one connection so the in-memory schema survives
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	t.Cleanup(func() { sqlDB.Close() })
}

func createBranch(t *testing.T, name string) models.Branch {
	branch := models.Branch{Name: name, IsActive: true}
	require.NoError(t, database.DB.Create(&branch).Error)
	return branch
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func requireDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestCreateBranchCashBox_DuplicateRejected(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع العليا")

	box, err := cashbox.CreateBranchCashBox(branch.ID, dec("100"), 1)
	require.NoError(t, err)
	requireDec(t, "100", box.Balance)

	_, err = cashbox.CreateBranchCashBox(branch.ID, dec("999"), 1)
	require.ErrorIs(t, err, cashbox.ErrCashBoxExists)

	// the original box is untouched
	got, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "100", got.Balance)
}

func TestBalance_MatchesTransactionHistory(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الملز")
	_, err := cashbox.CreateBranchCashBox(branch.ID, decimal.Zero, 1)
	require.NoError(t, err)

	steps := []struct {
		amount string
		typ    models.TransactionType
	}{
		{"250.50", models.TransactionTypeDeposit},
		{"100", models.TransactionTypeDeposit},
		{"30.25", models.TransactionTypeWithdrawal},
		{"120", models.TransactionTypeTransferToHQ},
		{"75.75", models.TransactionTypeDeposit},
	}

	for _, s := range steps {
		_, err := cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
			BranchID:  branch.ID,
			Amount:    dec(s.amount),
			Type:      s.typ,
			Source:    models.SourceManual,
			CreatedBy: 1,
		})
		require.NoError(t, err)
	}

	// 250.50 + 100 - 30.25 - 120 + 75.75
	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "276.00", box.Balance)

	txs, err := cashbox.GetCashBoxTransactions(branch.ID)
	require.NoError(t, err)
	require.Len(t, txs, len(steps))

	sum := decimal.Zero
	for _, trx := range txs {
		switch trx.Type {
		case models.TransactionTypeDeposit:
			sum = sum.Add(trx.Amount)
		default:
			sum = sum.Sub(trx.Amount)
		}
	}
	require.True(t, box.Balance.Equal(sum), "balance %s must equal signed sum %s", box.Balance, sum)
}

func TestCreateTransaction_DefaultReferenceNumber(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع النسيم")
	_, err := cashbox.CreateBranchCashBox(branch.ID, decimal.Zero, 1)
	require.NoError(t, err)

	trx, err := cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
		BranchID:  branch.ID,
		Amount:    dec("50"),
		Type:      models.TransactionTypeDeposit,
		Source:    models.SourceManual,
		CreatedBy: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "TR-1", trx.ReferenceNumber)

	custom, err := cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
		BranchID:        branch.ID,
		Amount:          dec("20"),
		Type:            models.TransactionTypeDeposit,
		Source:          models.SourceManual,
		CreatedBy:       1,
		ReferenceNumber: "REF-XYZ",
	})
	require.NoError(t, err)
	assert.Equal(t, "REF-XYZ", custom.ReferenceNumber)
}

func TestCreateTransaction_NoCashBox(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع بدون صندوق")

	_, err := cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
		BranchID:  branch.ID,
		Amount:    dec("50"),
		Type:      models.TransactionTypeDeposit,
		Source:    models.SourceManual,
		CreatedBy: 1,
	})
	require.ErrorIs(t, err, cashbox.ErrCashBoxNotFound)

	// no orphan ledger entry was recorded
	var count int64
	database.DB.Model(&models.CashBoxTransaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateTransaction_UnsupportedType(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الروضة")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("500"), 1)
	require.NoError(t, err)

	_, err = cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
		BranchID:  branch.ID,
		Amount:    dec("50"),
		Type:      models.TransactionType("adjustment"),
		Source:    models.SourceManual,
		CreatedBy: 1,
	})
	require.ErrorIs(t, err, cashbox.ErrUnsupportedTransactionType)

	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "500", box.Balance)
}

func TestUpdateBalance_NotFound(t *testing.T) {
	setupTestDB(t)

	_, err := cashbox.UpdateBranchCashBoxBalance(42, dec("10"))
	require.ErrorIs(t, err, cashbox.ErrCashBoxNotFound)
}

func TestUpdateBalance_RefreshesLastUpdated(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع السلام")
	box, err := cashbox.CreateBranchCashBox(branch.ID, dec("100"), 1)
	require.NoError(t, err)
	before := box.LastUpdated

	time.Sleep(10 * time.Millisecond)

	updated, err := cashbox.UpdateBranchCashBoxBalance(branch.ID, dec("-40"))
	require.NoError(t, err)
	requireDec(t, "60", updated.Balance)
	assert.True(t, updated.LastUpdated.After(before))
}

func TestTransfer_CreateDebitsImmediately(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الخبر")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("1000"), 1)
	require.NoError(t, err)

	transfer, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID:       branch.ID,
		Amount:         dec("300"),
		TransferMethod: models.TransferMethodBank,
		CreatedBy:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusPending, transfer.Status)
	assert.Equal(t, "HQ-1", transfer.ReferenceNumber)

	// debited at creation, before any approval
	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "700", box.Balance)

	// the linked ledger entry carries the transfer reference
	txs, err := cashbox.GetCashBoxTransactions(branch.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionTypeTransferToHQ, txs[0].Type)
	assert.Equal(t, models.SourceTransfer, txs[0].Source)
	assert.Equal(t, transfer.ReferenceNumber, txs[0].ReferenceNumber)
}

func TestTransfer_Approve(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الدمام")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("1000"), 1)
	require.NoError(t, err)

	transfer, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID:       branch.ID,
		Amount:         dec("250"),
		TransferMethod: models.TransferMethodCourier,
		CreatedBy:      2,
	})
	require.NoError(t, err)

	approved, err := cashbox.ApproveCashTransferToHQ(transfer.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, uint(9), *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// approval is an acknowledgement only, no further balance change
	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "750", box.Balance)
}

func TestTransfer_ApproveNonPending(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع القصيم")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("400"), 1)
	require.NoError(t, err)

	transfer, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID:       branch.ID,
		Amount:         dec("100"),
		TransferMethod: models.TransferMethodBank,
		CreatedBy:      2,
	})
	require.NoError(t, err)

	_, err = cashbox.ApproveCashTransferToHQ(transfer.ID, 9)
	require.NoError(t, err)

	_, err = cashbox.ApproveCashTransferToHQ(transfer.ID, 9)
	require.ErrorIs(t, err, cashbox.ErrInvalidTransferState)

	_, err = cashbox.RejectCashTransferToHQ(transfer.ID, "متأخر", 9)
	require.ErrorIs(t, err, cashbox.ErrInvalidTransferState)
}

func TestTransfer_RejectCompensates(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الطائف")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("1000"), 1)
	require.NoError(t, err)

	transfer, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID:       branch.ID,
		Amount:         dec("300"),
		TransferMethod: models.TransferMethodBank,
		CreatedBy:      2,
	})
	require.NoError(t, err)

	box, err := cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "700", box.Balance)

	rejected, err := cashbox.RejectCashTransferToHQ(transfer.ID, "مبلغ خاطئ", 9)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusRejected, rejected.Status)
	assert.Equal(t, "مبلغ خاطئ", rejected.RejectionReason)

	// debit then compensating credit cancel out
	box, err = cashbox.GetBranchCashBox(branch.ID)
	require.NoError(t, err)
	requireDec(t, "1000", box.Balance)

	txs, err := cashbox.GetCashBoxTransactions(branch.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	var refund *models.CashBoxTransaction
	for i := range txs {
		if txs[i].Type == models.TransactionTypeDeposit {
			refund = &txs[i]
		}
	}
	require.NotNil(t, refund, "compensating deposit must exist")
	requireDec(t, "300", refund.Amount)
	assert.Equal(t, uint(1), refund.CreatedBy) // system user
	assert.True(t, strings.Contains(refund.Notes, "إعادة مبلغ تحويل مرفوض #"), "notes: %s", refund.Notes)
}

func TestGetCashTransfersByStatus(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع جدة")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("2000"), 1)
	require.NoError(t, err)

	first, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID: branch.ID, Amount: dec("100"),
		TransferMethod: models.TransferMethodBank, CreatedBy: 2,
	})
	require.NoError(t, err)
	second, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
		BranchID: branch.ID, Amount: dec("200"),
		TransferMethod: models.TransferMethodCourier, CreatedBy: 2,
	})
	require.NoError(t, err)

	_, err = cashbox.ApproveCashTransferToHQ(first.ID, 9)
	require.NoError(t, err)

	pending, err := cashbox.GetCashTransfersByStatus(models.TransferStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	approved, err := cashbox.GetCashTransfersByStatus(models.TransferStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)
}
