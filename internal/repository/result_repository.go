package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.Result) error {
	return r.DB.Create(result).Error
}

func (r *ResultRepository) FindBySubmissionID(submissionID string) (*model.Result, error) {
	var result model.Result
	err := r.DB.Where("submission_id = ?", submissionID).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) Update(result *model.Result) error {
	return r.DB.Save(result).Error
}
