package model

import "encoding/json"

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Submission 一个学生对一份试卷的唯一一次作答。
// (student_id, paper_id) 上的唯一索引是"最多一次提交"不变量的最终保证，
// 应用层的查重只是为了给出更友好的冲突响应。
// swagger:model Submission
type Submission struct {
	UUIDBase
	PaperID       string          `gorm:"index:idx_student_paper,unique;type:varchar(36)" json:"paperId"`
	StudentID     uint            `gorm:"index:idx_student_paper,unique;type:bigint unsigned" json:"studentId"`
	Student       *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Answers       json.RawMessage `gorm:"type:json" json:"answers"` // JSON: []SubmissionAnswer
	TimeTaken     int             `gorm:"default:0" json:"timeTaken"` // Seconds
	OverTimeLimit bool            `gorm:"default:false" json:"overTimeLimit"` // 超时仅标记，不拒绝
	Status        string          `gorm:"size:20;default:'submitted'" json:"status"` // submitted, graded
	TotalScore    float64         `gorm:"default:0" json:"totalScore"`
	MaxScore      float64         `gorm:"default:0" json:"maxScore"`
	Percentage    float64         `gorm:"default:0" json:"percentage"`
}

func (Submission) TableName() string {
	return "submissions"
}

type SubmissionAnswer struct {
	QuestionID string `json:"questionId"`
	Response   string `json:"response"`
	TimeSpent  int    `json:"timeSpent,omitempty"` // Seconds
}
