package model

import (
	"encoding/json"
	"time"
)

type PaperStatus string

const (
	PaperDraft     PaperStatus = "draft"
	PaperPublished PaperStatus = "published"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionShortAnswer    = "short_answer"
	QuestionEssay          = "essay"
)

// QuestionPaper 教师拥有的试卷，学生只能看到 published 状态的试卷
// swagger:model QuestionPaper
type QuestionPaper struct {
	UUIDBase
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	TeacherID          uint           `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Teacher            *User          `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	TotalMarks         int            `gorm:"default:0" json:"totalMarks"` // 所有题目分值之和
	TimeLimit          int            `gorm:"default:0" json:"timeLimit"`  // Minutes
	Status             PaperStatus    `gorm:"size:20;default:'draft'" json:"status"`
	PublishedAt        *time.Time     `json:"publishedAt,omitempty"`
	ScheduledPublishAt *time.Time     `json:"scheduledPublishAt,omitempty"`
	Questions          []Question     `gorm:"foreignKey:PaperID" json:"questions,omitempty"`
	Scheme             *MarkingScheme `gorm:"foreignKey:PaperID" json:"scheme,omitempty"`
}

func (QuestionPaper) TableName() string {
	return "question_papers"
}

// swagger:model Question
type Question struct {
	UUIDBase
	PaperID      string          `gorm:"index;type:varchar(36)" json:"paperId"`
	QuestionType string          `gorm:"size:50;not null" json:"questionType"` // multiple_choice, short_answer, essay
	Content      string          `gorm:"type:text;not null" json:"content"`    // Stem
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"`   // JSON: []string，仅选择题
	Answer       string          `gorm:"type:text" json:"answer"`              // 标准答案，学生不可见
	Explanation  string          `gorm:"type:text" json:"explanation"`         // 解析，学生作答时不可见
	Points       int             `gorm:"default:0" json:"points"`
	Order        int             `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// FindQuestion 按题目ID在试卷内查找
func (p *QuestionPaper) FindQuestion(questionID string) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == questionID {
			return &p.Questions[i]
		}
	}
	return nil
}
