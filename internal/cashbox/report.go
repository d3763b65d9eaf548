package cashbox

import (
	"errors"
	"time"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/shopspring/decimal"
)

type DepositBreakdown struct {
	DailySales decimal.Decimal `json:"daily_sales"`
	Manual     decimal.Decimal `json:"manual"`
	Other      decimal.Decimal `json:"other"`
}

type CashBoxReport struct {
	BranchID         uint             `json:"branch_id"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	CurrentBalance   decimal.Decimal  `json:"current_balance"`
	// Estimated: derived from the current balance and the window sums, it
	// ignores transactions after the window. There is no balance snapshot
	// mechanism, so a true historical opening balance is not available.
	EstimatedOpeningBalance decimal.Decimal `json:"estimated_opening_balance"`
	TotalDeposits           decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals        decimal.Decimal `json:"total_withdrawals"`
	TotalTransfers          decimal.Decimal `json:"total_transfers"`
	NetChange               decimal.Decimal `json:"net_change"`
	Deposits                DepositBreakdown `json:"deposits"`
	TransactionCount        int              `json:"transaction_count"`
}

type TransferStatusBucket struct {
	Status models.TransferStatus `json:"status"`
	Count  int                   `json:"count"`
	Total  decimal.Decimal       `json:"total"`
}

type TransferMethodBucket struct {
	Method models.TransferMethod `json:"method"`
	Count  int                   `json:"count"`
	Total  decimal.Decimal       `json:"total"`
}

type CashTransfersReport struct {
	BranchID    uint                   `json:"branch_id"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	TotalCount  int                    `json:"total_count"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	ByStatus    []TransferStatusBucket `json:"by_status"`
	ByMethod    []TransferMethodBucket `json:"by_method"`
}

// GetBranchCashBoxBalance returns the current balance, or zero when the
// branch has no cash box yet.
func GetBranchCashBoxBalance(branchID uint) (decimal.Decimal, error) {
	box, err := GetBranchCashBox(branchID)
	if err != nil {
		if errors.Is(err, ErrCashBoxNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return box.Balance, nil
}

func GetCashBoxReport(branchID uint, start, end time.Time) (*CashBoxReport, error) {
	txs, err := GetCashBoxTransactionsByDate(branchID, start, end)
	if err != nil {
		return nil, err
	}

	current, err := GetBranchCashBoxBalance(branchID)
	if err != nil {
		return nil, err
	}

	report := &CashBoxReport{
		BranchID:         branchID,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		CurrentBalance:   current,
		TransactionCount: len(txs),
	}

	for _, trx := range txs {
		switch trx.Type {
		case models.TransactionTypeDeposit:
			report.TotalDeposits = report.TotalDeposits.Add(trx.Amount)
			switch trx.Source {
			case models.SourceDailySales:
				report.Deposits.DailySales = report.Deposits.DailySales.Add(trx.Amount)
			case models.SourceManual:
				report.Deposits.Manual = report.Deposits.Manual.Add(trx.Amount)
			default:
				report.Deposits.Other = report.Deposits.Other.Add(trx.Amount)
			}
		case models.TransactionTypeWithdrawal:
			report.TotalWithdrawals = report.TotalWithdrawals.Add(trx.Amount)
		case models.TransactionTypeTransferToHQ:
			report.TotalTransfers = report.TotalTransfers.Add(trx.Amount)
		}
	}

	report.NetChange = report.TotalDeposits.
		Sub(report.TotalWithdrawals).
		Sub(report.TotalTransfers)
	report.EstimatedOpeningBalance = current.
		Sub(report.TotalDeposits).
		Add(report.TotalWithdrawals).
		Add(report.TotalTransfers)

	return report, nil
}

func GetCashTransfersReport(branchID uint, start, end time.Time) (*CashTransfersReport, error) {
	var transfers []models.CashTransferToHQ
	if err := database.DB.
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, start, end).
		Order("date DESC, id DESC").Find(&transfers).Error; err != nil {
		return nil, err
	}

	report := &CashTransfersReport{
		BranchID:   branchID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		TotalCount: len(transfers),
	}

	statusTotals := map[models.TransferStatus]*TransferStatusBucket{}
	methodOrder := []models.TransferMethod{}
	methodTotals := map[models.TransferMethod]*TransferMethodBucket{}

	for _, t := range transfers {
		report.TotalAmount = report.TotalAmount.Add(t.Amount)

		sb, ok := statusTotals[t.Status]
		if !ok {
			sb = &TransferStatusBucket{Status: t.Status}
			statusTotals[t.Status] = sb
		}
		sb.Count++
		sb.Total = sb.Total.Add(t.Amount)

		mb, ok := methodTotals[t.TransferMethod]
		if !ok {
			mb = &TransferMethodBucket{Method: t.TransferMethod}
			methodTotals[t.TransferMethod] = mb
			methodOrder = append(methodOrder, t.TransferMethod)
		}
		mb.Count++
		mb.Total = mb.Total.Add(t.Amount)
	}

	// fixed status order for a stable response shape
	for _, status := range []models.TransferStatus{
		models.TransferStatusPending,
		models.TransferStatusApproved,
		models.TransferStatusRejected,
	} {
		if sb, ok := statusTotals[status]; ok {
			report.ByStatus = append(report.ByStatus, *sb)
		}
	}
	for _, method := range methodOrder {
		report.ByMethod = append(report.ByMethod, *methodTotals[method])
	}

	return report, nil
}
