package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
)

type UsageRepository struct {
	DB *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{DB: db}
}

func (r *UsageRepository) Create(log *model.AIUsageLog) error {
	return r.DB.Create(log).Error
}
