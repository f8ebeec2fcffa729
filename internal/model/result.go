package model

import (
	"encoding/json"
	"time"
)

const (
	GradedByAI      = "ai"
	GradedByTeacher = "teacher"
)

// Result 一次提交的持久化评分结果，仅对作答学生与出卷教师可见
// swagger:model Result
type Result struct {
	UUIDBase
	SubmissionID     string          `gorm:"uniqueIndex;type:varchar(36)" json:"submissionId"`
	TotalScore       float64         `gorm:"default:0" json:"totalScore"`
	MaxScore         float64         `gorm:"default:0" json:"maxScore"`
	Percentage       float64         `gorm:"default:0" json:"percentage"`
	LetterGrade      string          `gorm:"size:5" json:"letterGrade"`
	QuestionFeedback json.RawMessage `gorm:"type:json" json:"questionFeedback"` // JSON: []QuestionFeedback
	OverallFeedback  string          `gorm:"type:text" json:"overallFeedback"`
	GradedBy         string          `gorm:"size:20;default:'ai'" json:"gradedBy"` // ai, teacher
	SchemeSource     string          `gorm:"size:20" json:"schemeSource"`          // 评分时使用的标准来源，空串表示直接评分
	GradedAt         time.Time       `json:"gradedAt"`
	ReviewedAt       *time.Time      `json:"reviewedAt,omitempty"` // 教师复核时间
}

func (Result) TableName() string {
	return "results"
}

type QuestionFeedback struct {
	QuestionID    string  `json:"questionId"`
	Score         float64 `json:"score"`
	MaxPoints     int     `json:"maxPoints"`
	IsCorrect     bool    `json:"isCorrect"`
	Feedback      string  `json:"feedback"`
	GradingMethod string  `json:"gradingMethod,omitempty"` // exact_match, partial_credit, rubric_based
}
