package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create 依赖 (student_id, paper_id) 唯一索引，
// 并发重复提交时恰有一个成功，另一个收到 gorm.ErrDuplicatedKey
func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindByStudentAndPaper(studentID uint, paperID string) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Where("student_id = ? AND paper_id = ?", studentID, paperID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) Update(submission *model.Submission) error {
	return r.DB.Save(submission).Error
}

type SubmissionListRow struct {
	model.Submission
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

func (r *SubmissionRepository) ListByPaper(paperID string, page, limit int, studentName string) ([]SubmissionListRow, int64, error) {
	query := r.DB.Table("submissions s").
		Select("s.*, u.name as student_name, u.email as student_email").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.paper_id = ? AND s.deleted_at IS NULL", paperID)

	if studentName != "" {
		query = query.Where("u.name LIKE ?", "%"+studentName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SubmissionListRow
	offset := (page - 1) * limit
	err := query.Order("s.created_at desc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}
