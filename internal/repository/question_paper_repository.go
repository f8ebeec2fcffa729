package repository

import (
	"eduassess_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuestionPaperRepository struct {
	DB *gorm.DB
}

func NewQuestionPaperRepository(db *gorm.DB) *QuestionPaperRepository {
	return &QuestionPaperRepository{DB: db}
}

// CreateWithQuestions 试卷与题目一并落库
func (r *QuestionPaperRepository) CreateWithQuestions(paper *model.QuestionPaper) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(paper).Error; err != nil {
			return err
		}
		for i := range paper.Questions {
			paper.Questions[i].PaperID = paper.ID
			if err := tx.Create(&paper.Questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindPublishedByID 评分管线的读入口，draft 试卷对学生等同于不存在
func (r *QuestionPaperRepository) FindPublishedByID(id string) (*model.QuestionPaper, error) {
	var paper model.QuestionPaper
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc")
	}).Preload("Scheme").
		Where("id = ? AND status = ?", id, model.PaperPublished).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// FindByIDForTeacher 按归属教师过滤的读取，他人的试卷等同于不存在
func (r *QuestionPaperRepository) FindByIDForTeacher(id string, teacherID uint) (*model.QuestionPaper, error) {
	var paper model.QuestionPaper
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc")
	}).Preload("Scheme").
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *QuestionPaperRepository) FindByID(id string) (*model.QuestionPaper, error) {
	var paper model.QuestionPaper
	err := r.DB.First(&paper, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *QuestionPaperRepository) Update(paper *model.QuestionPaper) error {
	return r.DB.Save(paper).Error
}

func (r *QuestionPaperRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", id).Delete(&model.MarkingScheme{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuestionPaper{}, "id = ?", id).Error
	})
}

type PaperListRow struct {
	model.QuestionPaper
	QuestionCount   int `json:"questionCount"`
	SubmissionCount int `json:"submissionCount"`
}

func (r *QuestionPaperRepository) ListByTeacher(teacherID uint, page, limit int) ([]PaperListRow, int64, error) {
	var total int64
	if err := r.DB.Model(&model.QuestionPaper{}).Where("teacher_id = ?", teacherID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var papers []PaperListRow
	offset := (page - 1) * limit
	err := r.DB.Table("question_papers p").
		Select("p.*, "+
			"(SELECT COUNT(*) FROM questions q WHERE q.paper_id = p.id AND q.deleted_at IS NULL) as question_count, "+
			"(SELECT COUNT(*) FROM submissions s WHERE s.paper_id = p.id AND s.deleted_at IS NULL) as submission_count").
		Where("p.teacher_id = ? AND p.deleted_at IS NULL", teacherID).
		Order("p.created_at desc").
		Offset(offset).Limit(limit).
		Scan(&papers).Error
	return papers, total, err
}

func (r *QuestionPaperRepository) ReplaceQuestions(paperID string, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", paperID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].PaperID = paperID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceScheme 评分标准整体替换而非原地修改，
// 进行中的评分调用持有旧快照不受影响
func (r *QuestionPaperRepository) ReplaceScheme(paperID string, scheme *model.MarkingScheme) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("paper_id = ?", paperID).Delete(&model.MarkingScheme{}).Error; err != nil {
			return err
		}
		scheme.PaperID = paperID
		return tx.Create(scheme).Error
	})
}

func (r *QuestionPaperRepository) Publish(paperID string) error {
	now := time.Now()
	return r.DB.Model(&model.QuestionPaper{}).
		Where("id = ?", paperID).
		Updates(map[string]interface{}{
			"status":               model.PaperPublished,
			"published_at":         &now,
			"scheduled_publish_at": nil,
		}).Error
}

// ListScheduledDue 到期待发布的试卷，后台定时任务消费
func (r *QuestionPaperRepository) ListScheduledDue(now time.Time) ([]model.QuestionPaper, error) {
	var papers []model.QuestionPaper
	err := r.DB.Where("status = ? AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= ?",
		model.PaperDraft, now).Find(&papers).Error
	return papers, err
}
