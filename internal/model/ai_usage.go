package model

type AIServiceType string

const (
	UsageContentAnalysis    AIServiceType = "content_analysis"
	UsageQuestionGeneration AIServiceType = "question_generation"
	UsageAutoGrading        AIServiceType = "auto_grading"
	UsageMarkingScheme      AIServiceType = "marking_scheme"
)

// AIUsageLog AI调用的用量记账，只做观测用途，写入失败不影响业务
// swagger:model AIUsageLog
type AIUsageLog struct {
	BaseModel
	UserID       uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	ServiceType  AIServiceType `gorm:"size:50;not null" json:"serviceType"`
	TokensUsed   int           `gorm:"default:0" json:"tokensUsed"`
	CostUSD      float64       `gorm:"default:0" json:"costUsd"`
	SubmissionID string        `gorm:"size:36" json:"submissionId,omitempty"`
	PaperID      string        `gorm:"size:36" json:"paperId,omitempty"`
	DurationMS   int64         `gorm:"default:0" json:"durationMs"`
}

func (AIUsageLog) TableName() string {
	return "ai_usage_logs"
}
