package notifications

import (
	"fmt"
	"time"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Smart-alert sweep thresholds.
var (
	lowBalanceThreshold = decimal.NewFromInt(500)
	stalePendingAge     = 3 * 24 * time.Hour
)

// GenerateAlerts scans the ledger and produces broadcast alerts for
// conditions that need admin attention: low cash-box balances, transfer
// requests stuck in pending, and monthly targets that have been reached.
// Returns the number of alerts sent.
func GenerateAlerts() (int, error) {
	sent := 0

	var branches []models.Branch
	if err := database.DB.Where("is_active = ?", true).Find(&branches).Error; err != nil {
		return 0, err
	}

	for _, branch := range branches {
		var box models.BranchCashBox
		if err := database.DB.Where("branch_id = ?", branch.ID).First(&box).Error; err == nil {
			if box.Balance.LessThan(lowBalanceThreshold) {
				if err := Send(nil,
					"رصيد منخفض",
					fmt.Sprintf("رصيد صندوق فرع %s منخفض: %s", branch.Name, box.Balance.StringFixed(2)),
					models.NotificationWarning,
					fmt.Sprintf("/cash-box?branch_id=%d", branch.ID),
				); err == nil {
					sent++
				}
			}
		}

		var stale int64
		cutoff := time.Now().Add(-stalePendingAge)
		database.DB.Model(&models.CashTransferToHQ{}).
			Where("branch_id = ? AND status = ? AND created_at < ?", branch.ID, models.TransferStatusPending, cutoff).
			Count(&stale)
		if stale > 0 {
			if err := Send(nil,
				"تحويلات بانتظار التأكيد",
				fmt.Sprintf("فرع %s لديه %d تحويل بانتظار التأكيد منذ أكثر من ٣ أيام", branch.Name, stale),
				models.NotificationWarning,
				fmt.Sprintf("/cash-transfers?branch_id=%d&status=pending", branch.ID),
			); err == nil {
				sent++
			}
		}

		n, err := targetAchievedAlert(branch)
		if err == nil {
			sent += n
		}
	}

	return sent, nil
}

func targetAchievedAlert(branch models.Branch) (int, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var target models.MonthlyTarget
	if err := database.DB.
		Where("branch_id = ? AND year = ? AND month = ?", branch.ID, now.Year(), int(now.Month())).
		First(&target).Error; err != nil {
		return 0, nil // no target for this month
	}

	var sales []models.DailySales
	if err := database.DB.
		Where("branch_id = ? AND date >= ?", branch.ID, monthStart).
		Find(&sales).Error; err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalSales)
	}

	if target.TargetAmount.IsPositive() && total.GreaterThanOrEqual(target.TargetAmount) {
		if err := Send(nil,
			"تحقيق الهدف الشهري",
			fmt.Sprintf("فرع %s حقق هدف المبيعات الشهري (%s من %s)", branch.Name, total.StringFixed(2), target.TargetAmount.StringFixed(2)),
			models.NotificationSuccess,
			fmt.Sprintf("/targets?branch_id=%d", branch.ID),
		); err != nil {
			return 0, err
		}
		return 1, nil
	}

	return 0, nil
}
