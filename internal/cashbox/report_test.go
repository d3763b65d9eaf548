package cashbox_test

import (
	"testing"
	"time"

	"butterbakery-backend/internal/cashbox"
	"butterbakery-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func postTx(t *testing.T, branchID uint, amount string, typ models.TransactionType, source models.TransactionSource, date string) {
	t.Helper()
	_, err := cashbox.CreateCashBoxTransaction(cashbox.TransactionInput{
		BranchID:  branchID,
		Amount:    dec(amount),
		Type:      typ,
		Source:    source,
		CreatedBy: 1,
		Date:      day(date),
	})
	require.NoError(t, err)
}

func TestGetBranchCashBoxBalance_ZeroWhenMissing(t *testing.T) {
	setupTestDB(t)

	balance, err := cashbox.GetBranchCashBoxBalance(77)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestCashBoxReport_Reconciles(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الياسمين")
	_, err := cashbox.CreateBranchCashBox(branch.ID, decimal.Zero, 1)
	require.NoError(t, err)

	postTx(t, branch.ID, "500", models.TransactionTypeDeposit, models.SourceDailySales, "2026-08-03")
	postTx(t, branch.ID, "200", models.TransactionTypeDeposit, models.SourceManual, "2026-08-05")
	postTx(t, branch.ID, "80", models.TransactionTypeDeposit, models.SourceTransfer, "2026-08-07")
	postTx(t, branch.ID, "150", models.TransactionTypeWithdrawal, models.SourceManual, "2026-08-10")
	postTx(t, branch.ID, "300", models.TransactionTypeTransferToHQ, models.SourceTransfer, "2026-08-12")

	report, err := cashbox.GetCashBoxReport(branch.ID, day("2026-08-01"), day("2026-08-31"))
	require.NoError(t, err)

	assert.Equal(t, 5, report.TransactionCount)
	requireDec(t, "780", report.TotalDeposits)
	requireDec(t, "150", report.TotalWithdrawals)
	requireDec(t, "300", report.TotalTransfers)
	requireDec(t, "500", report.Deposits.DailySales)
	requireDec(t, "200", report.Deposits.Manual)
	requireDec(t, "80", report.Deposits.Other)

	// net change reconciles with the per-type sums
	requireDec(t, "330", report.NetChange)
	require.True(t, report.NetChange.Equal(
		report.TotalDeposits.Sub(report.TotalWithdrawals).Sub(report.TotalTransfers)))

	requireDec(t, "330", report.CurrentBalance)
	// everything happened inside the window, so the estimate lands on zero
	requireDec(t, "0", report.EstimatedOpeningBalance)
}

func TestCashBoxReport_WindowIsInclusive(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع الربوة")
	_, err := cashbox.CreateBranchCashBox(branch.ID, decimal.Zero, 1)
	require.NoError(t, err)

	postTx(t, branch.ID, "100", models.TransactionTypeDeposit, models.SourceManual, "2026-07-31")
	postTx(t, branch.ID, "200", models.TransactionTypeDeposit, models.SourceManual, "2026-08-01")
	postTx(t, branch.ID, "400", models.TransactionTypeDeposit, models.SourceManual, "2026-08-31")
	postTx(t, branch.ID, "800", models.TransactionTypeDeposit, models.SourceManual, "2026-09-01")

	report, err := cashbox.GetCashBoxReport(branch.ID, day("2026-08-01"), day("2026-08-31"))
	require.NoError(t, err)

	// both window endpoints included, neighbors excluded
	assert.Equal(t, 2, report.TransactionCount)
	requireDec(t, "600", report.TotalDeposits)

	// the estimate folds post-window transactions into the "opening"
	// balance, that approximation is part of the contract
	requireDec(t, "1500", report.CurrentBalance)
	requireDec(t, "900", report.EstimatedOpeningBalance)
}

func TestTransfersReport_Buckets(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "فرع النخيل")
	_, err := cashbox.CreateBranchCashBox(branch.ID, dec("5000"), 1)
	require.NoError(t, err)

	mk := func(amount string, method models.TransferMethod) *models.CashTransferToHQ {
		transfer, err := cashbox.CreateCashTransferToHQ(cashbox.TransferInput{
			BranchID:       branch.ID,
			Amount:         dec(amount),
			TransferMethod: method,
			Date:           day("2026-08-15"),
			CreatedBy:      2,
		})
		require.NoError(t, err)
		return transfer
	}

	first := mk("100", models.TransferMethodBank)
	mk("200", models.TransferMethodBank)
	third := mk("300", models.TransferMethodCourier)

	_, err = cashbox.ApproveCashTransferToHQ(first.ID, 9)
	require.NoError(t, err)
	_, err = cashbox.RejectCashTransferToHQ(third.ID, "مبلغ خاطئ", 9)
	require.NoError(t, err)

	report, err := cashbox.GetCashTransfersReport(branch.ID, day("2026-08-01"), day("2026-08-31"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalCount)
	requireDec(t, "600", report.TotalAmount)

	require.Len(t, report.ByStatus, 3)
	assert.Equal(t, models.TransferStatusPending, report.ByStatus[0].Status)
	assert.Equal(t, 1, report.ByStatus[0].Count)
	requireDec(t, "200", report.ByStatus[0].Total)
	assert.Equal(t, models.TransferStatusApproved, report.ByStatus[1].Status)
	requireDec(t, "100", report.ByStatus[1].Total)
	assert.Equal(t, models.TransferStatusRejected, report.ByStatus[2].Status)
	requireDec(t, "300", report.ByStatus[2].Total)

	require.Len(t, report.ByMethod, 2)
	for _, bucket := range report.ByMethod {
		switch bucket.Method {
		case models.TransferMethodBank:
			assert.Equal(t, 2, bucket.Count)
			requireDec(t, "300", bucket.Total)
		case models.TransferMethodCourier:
			assert.Equal(t, 1, bucket.Count)
			requireDec(t, "300", bucket.Total)
		default:
			t.Fatalf("unexpected method bucket %s", bucket.Method)
		}
	}
}
