package sales

import (
	"errors"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"gorm.io/gorm"
)

var ErrDailySalesNotFound = errors.New("daily sales record not found")

func GetDailySalesByID(id uint) (*models.DailySales, error) {
	var record models.DailySales
	if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDailySalesNotFound
		}
		return nil, err
	}
	return &record, nil
}

func UpdateDailySalesStatus(id uint, status models.DailySalesStatus) error {
	res := database.DB.Model(&models.DailySales{}).Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDailySalesNotFound
	}
	return nil
}
