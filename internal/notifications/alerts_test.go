package notifications_test

import (
	"testing"
	"time"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/notifications"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setupTestDB(t *testing.T) {
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	t.Cleanup(func() { sqlDB.Close() })
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestGenerateAlerts_LowBalance(t *testing.T) {
	setupTestDB(t)

	branch := models.Branch{Name: "فرع الشفا", IsActive: true}
	require.NoError(t, database.DB.Create(&branch).Error)
	box := models.BranchCashBox{BranchID: branch.ID, Balance: dec(120), LastUpdated: time.Now(), CreatedBy: 1}
	require.NoError(t, database.DB.Create(&box).Error)

	sent, err := notifications.GenerateAlerts()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var alerts []models.Notification
	require.NoError(t, database.DB.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Nil(t, alerts[0].UserID) // broadcast
	assert.Equal(t, models.NotificationWarning, alerts[0].Type)
	assert.Equal(t, "رصيد منخفض", alerts[0].Title)
}

func TestGenerateAlerts_HealthyBranchIsQuiet(t *testing.T) {
	setupTestDB(t)

	branch := models.Branch{Name: "فرع الورود", IsActive: true}
	require.NoError(t, database.DB.Create(&branch).Error)
	box := models.BranchCashBox{BranchID: branch.ID, Balance: dec(9000), LastUpdated: time.Now(), CreatedBy: 1}
	require.NoError(t, database.DB.Create(&box).Error)

	sent, err := notifications.GenerateAlerts()
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestGenerateAlerts_TargetAchieved(t *testing.T) {
	setupTestDB(t)

	branch := models.Branch{Name: "فرع الفيصلية", IsActive: true}
	require.NoError(t, database.DB.Create(&branch).Error)

	now := time.Now()
	target := models.MonthlyTarget{
		BranchID: branch.ID, Year: now.Year(), Month: int(now.Month()),
		TargetAmount: dec(1000), CreatedBy: 1,
	}
	require.NoError(t, database.DB.Create(&target).Error)

	record := models.DailySales{
		BranchID: branch.ID, CashierID: 7, Date: now,
		TotalCashSales: dec(800), TotalNetworkSales: dec(400), TotalSales: dec(1200),
		Status: models.DailySalesStatusTransferred,
	}
	require.NoError(t, database.DB.Create(&record).Error)

	sent, err := notifications.GenerateAlerts()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var alert models.Notification
	require.NoError(t, database.DB.First(&alert).Error)
	assert.Equal(t, models.NotificationSuccess, alert.Type)
	assert.Equal(t, "تحقيق الهدف الشهري", alert.Title)
}

func TestGenerateAlerts_StalePendingTransfers(t *testing.T) {
	setupTestDB(t)

	branch := models.Branch{Name: "فرع البديعة", IsActive: true}
	require.NoError(t, database.DB.Create(&branch).Error)
	box := models.BranchCashBox{BranchID: branch.ID, Balance: dec(5000), LastUpdated: time.Now(), CreatedBy: 1}
	require.NoError(t, database.DB.Create(&box).Error)

	transfer := models.CashTransferToHQ{
		BranchID: branch.ID, CashBoxID: box.ID, Amount: dec(500),
		TransferMethod: models.TransferMethodBank, Date: time.Now().AddDate(0, 0, -7),
		CreatedBy: 2, ReferenceNumber: "HQ-1", Status: models.TransferStatusPending,
	}
	require.NoError(t, database.DB.Create(&transfer).Error)
	// push created_at past the staleness cutoff
	old := time.Now().AddDate(0, 0, -7)
	require.NoError(t, database.DB.Model(&transfer).Update("created_at", old).Error)

	sent, err := notifications.GenerateAlerts()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var alert models.Notification
	require.NoError(t, database.DB.First(&alert).Error)
	assert.Equal(t, "تحويلات بانتظار التأكيد", alert.Title)
}
