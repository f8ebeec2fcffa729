package model

import "encoding/json"

const (
	SchemeSourceAI      = "ai"
	SchemeSourceTeacher = "teacher"
)

// MarkingScheme 评分标准。生成后视为不可变：教师修改会整体替换，
// 不影响正在进行中的评分调用（评分请求携带标准快照而非引用）。
// swagger:model MarkingScheme
type MarkingScheme struct {
	UUIDBase
	PaperID       string          `gorm:"uniqueIndex;type:varchar(36)" json:"paperId"`
	Criteria      json.RawMessage `gorm:"type:json" json:"criteria"` // JSON: []SchemeCriterion
	Instructions  string          `gorm:"type:text" json:"instructions"`
	SuggestedTime int             `gorm:"default:0" json:"suggestedTime"` // Minutes
	Source        string          `gorm:"size:20;default:'teacher'" json:"source"` // ai, teacher
}

func (MarkingScheme) TableName() string {
	return "marking_schemes"
}

type SchemeCriterion struct {
	QuestionID string   `json:"questionId"`
	MaxPoints  int      `json:"maxPoints"`
	KeyPoints  []string `json:"keyPoints,omitempty"`
	Rubric     string   `json:"rubric,omitempty"`
}
