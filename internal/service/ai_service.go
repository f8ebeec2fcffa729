package service

import (
	"bytes"
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// AIService 外部AI服务的HTTP客户端：内容分析、出题、评分标准、评分。
// 每类调用带独立超时，超时即失败，不在请求内重试。
// 评分调用的上下文不继承HTTP请求上下文：客户端断开不应中止评分。
type AIService struct {
	config config.AIConfig
	usage  UsageRecorder
	client *http.Client
}

func NewAIService(cfg config.AIConfig, usage UsageRecorder) *AIService {
	if usage == nil {
		usage = NopUsageRecorder{}
	}
	return &AIService{config: cfg, usage: usage, client: &http.Client{}}
}

type ContentAnalysisRequest struct {
	FileContent string `json:"file_content"`
	FileType    string `json:"file_type"`
	ResourceID  string `json:"resource_id"`
}

type ContentAnalysis struct {
	Success              bool    `json:"success"`
	ContentType          string  `json:"content_type"`
	WordCount            int     `json:"word_count"`
	Language             string  `json:"language"`
	SuitableForQuestions bool    `json:"suitable_for_questions"`
	EducationalScore     int     `json:"educational_score"`
	Message              string  `json:"message"`
	TokensUsed           int     `json:"tokens_used"`
	CostUSD              float64 `json:"cost_usd"`
}

type QuestionGenerationRequest struct {
	Content         string   `json:"content"`
	QuestionCount   int      `json:"question_count"`
	DifficultyLevel string   `json:"difficulty_level"`
	QuestionTypes   []string `json:"question_types"`
}

type GeneratedQuestion struct {
	QuestionType string   `json:"question_type"`
	Content      string   `json:"content"`
	Options      []string `json:"options,omitempty"`
	Answer       string   `json:"answer"`
	Explanation  string   `json:"explanation"`
	Points       int      `json:"points"`
}

type GeneratedQuestions struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Questions  []GeneratedQuestion `json:"questions"`
	TokensUsed int                 `json:"tokens_used"`
	CostUSD    float64             `json:"cost_usd"`
}

type GeneratedScheme struct {
	Success       bool                    `json:"success"`
	Message       string                  `json:"message"`
	Criteria      []model.SchemeCriterion `json:"criteria"`
	Instructions  string                  `json:"instructions"`
	SuggestedTime int                     `json:"suggested_time"`
	TokensUsed    int                     `json:"tokens_used"`
	CostUSD       float64                 `json:"cost_usd"`
}

type GradingQuestion struct {
	QuestionID    string `json:"question_id"`
	QuestionType  string `json:"question_type"`
	Content       string `json:"content"`
	CorrectAnswer string `json:"correct_answer"`
	MaxPoints     int    `json:"max_points"`
}

type GradingAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"time_spent,omitempty"`
}

type SchemePayload struct {
	Criteria     json.RawMessage `json:"criteria"`
	Instructions string          `json:"instructions"`
	Source       string          `json:"source"`
}

type GradingRequest struct {
	Questions       []GradingQuestion `json:"questions"`
	StudentAnswers  []GradingAnswer   `json:"student_answers"`
	SubmissionID    string            `json:"submission_id"`
	QuestionPaperID string            `json:"question_paper_id"`
	StudentID       string            `json:"student_id"`
	MarkingScheme   *SchemePayload    `json:"marking_scheme,omitempty"`
}

type QuestionGrading struct {
	QuestionID    string  `json:"question_id"`
	Score         float64 `json:"score"`
	MaxPoints     int     `json:"max_points"`
	IsCorrect     bool    `json:"is_correct"`
	Feedback      string  `json:"feedback"`
	GradingMethod string  `json:"grading_method"` // exact_match, partial_credit, rubric_based
}

type GradingResult struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message"`
	TotalScore       float64           `json:"total_score"`
	MaxScore         float64           `json:"max_score"`
	Percentage       float64           `json:"percentage"`
	LetterGrade      string            `json:"letter_grade"`
	DetailedFeedback []QuestionGrading `json:"detailed_feedback"`
	OverallFeedback  string            `json:"overall_feedback"`
	GradingTimeMS    int64             `json:"grading_time_ms"`
	TokensUsed       int               `json:"tokens_used"`
	CostUSD          float64           `json:"cost_usd"`
}

// AnalyzeContent 判断资料是否适合出题
func (s *AIService) AnalyzeContent(userID uint, req *ContentAnalysisRequest) (*ContentAnalysis, error) {
	var result ContentAnalysis
	if err := s.post("/analyze-content", s.config.AnalysisTimeout, req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", util.ErrUpstreamFailed, result.Message)
	}

	go s.usage.Record(UsageEvent{
		UserID:      userID,
		ServiceType: model.UsageContentAnalysis,
		TokensUsed:  result.TokensUsed,
		CostUSD:     result.CostUSD,
	})

	return &result, nil
}

// GenerateQuestions 由资料内容生成题目集
func (s *AIService) GenerateQuestions(userID uint, req *QuestionGenerationRequest) (*GeneratedQuestions, error) {
	var result GeneratedQuestions
	if err := s.post("/generate-questions", s.config.GenerateTimeout, req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", util.ErrUpstreamFailed, result.Message)
	}

	go s.usage.Record(UsageEvent{
		UserID:      userID,
		ServiceType: model.UsageQuestionGeneration,
		TokensUsed:  result.TokensUsed,
		CostUSD:     result.CostUSD,
	})

	return &result, nil
}

// GenerateMarkingScheme 按题目集生成评分标准
func (s *AIService) GenerateMarkingScheme(userID uint, paperID string, questions []model.Question) (*GeneratedScheme, error) {
	payload := map[string]interface{}{
		"question_paper_id": paperID,
		"questions":         gradingQuestions(questions),
	}

	var result GeneratedScheme
	if err := s.post("/create-marking-scheme", s.config.SchemeTimeout, payload, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", util.ErrUpstreamFailed, result.Message)
	}

	go s.usage.Record(UsageEvent{
		UserID:      userID,
		ServiceType: model.UsageMarkingScheme,
		TokensUsed:  result.TokensUsed,
		CostUSD:     result.CostUSD,
		PaperID:     paperID,
	})

	return &result, nil
}

// GradeDirect 无评分标准的直接评分，正确性由题目和答案推断
func (s *AIService) GradeDirect(userID uint, req *GradingRequest) (*GradingResult, error) {
	req.MarkingScheme = nil
	return s.grade(userID, req)
}

// GradeWithScheme 按评分标准评分。标准以快照随请求发送，
// 调用期间教师替换标准不影响本次评分。
func (s *AIService) GradeWithScheme(userID uint, req *GradingRequest, scheme *model.MarkingScheme) (*GradingResult, error) {
	req.MarkingScheme = &SchemePayload{
		Criteria:     scheme.Criteria,
		Instructions: scheme.Instructions,
		Source:       scheme.Source,
	}
	return s.grade(userID, req)
}

func (s *AIService) grade(userID uint, req *GradingRequest) (*GradingResult, error) {
	var result GradingResult
	if err := s.post("/grade-submission", s.config.GradingTimeout, req, &result); err != nil {
		return nil, err
	}

	// success=false 与传输失败同等对待：评分没有完成
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", util.ErrUpstreamFailed, result.Message)
	}

	go s.usage.Record(UsageEvent{
		UserID:       userID,
		ServiceType:  model.UsageAutoGrading,
		TokensUsed:   result.TokensUsed,
		CostUSD:      result.CostUSD,
		SubmissionID: req.SubmissionID,
		PaperID:      req.QuestionPaperID,
		Duration:     time.Duration(result.GradingTimeMS) * time.Millisecond,
	})

	return &result, nil
}

func (s *AIService) post(path string, timeout time.Duration, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: AI API error (status %d): %s", util.ErrUpstreamFailed, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: malformed AI response: %v", util.ErrUpstreamFailed, err)
	}

	return nil
}

func gradingQuestions(questions []model.Question) []GradingQuestion {
	out := make([]GradingQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, GradingQuestion{
			QuestionID:    q.ID,
			QuestionType:  q.QuestionType,
			Content:       q.Content,
			CorrectAnswer: q.Answer,
			MaxPoints:     q.Points,
		})
	}
	return out
}

// FormatStudentID 评分请求里学生标识走字符串，和外部服务的约定一致
func FormatStudentID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
