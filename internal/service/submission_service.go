package service

import (
	"context"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"eduassess_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 提交管线对协作者只要求这几个窄接口，仓储实现直接满足，
// 测试里换成假实现即可脱离数据库
type PaperReader interface {
	FindPublishedByID(id string) (*model.QuestionPaper, error)
	FindByID(id string) (*model.QuestionPaper, error)
}

type SubmissionStore interface {
	Create(submission *model.Submission) error
	FindByID(id string) (*model.Submission, error)
	FindByStudentAndPaper(studentID uint, paperID string) (*model.Submission, error)
	Update(submission *model.Submission) error
}

type ResultStore interface {
	Create(result *model.Result) error
	FindBySubmissionID(submissionID string) (*model.Result, error)
	Update(result *model.Result) error
}

type Grader interface {
	GradeDirect(userID uint, req *GradingRequest) (*GradingResult, error)
	GradeWithScheme(userID uint, req *GradingRequest, scheme *model.MarkingScheme) (*GradingResult, error)
}

// SubmissionService 提交生命周期：absent → submitted → graded。
// 不支持回退，也不支持同请求内重复评分。
type SubmissionService struct {
	Papers      PaperReader
	Submissions SubmissionStore
	Results     ResultStore
	Grader      Grader
	Redis       *redis.Client
}

func NewSubmissionService(papers PaperReader, submissions SubmissionStore, results ResultStore, grader Grader, rdb *redis.Client) *SubmissionService {
	return &SubmissionService{
		Papers:      papers,
		Submissions: submissions,
		Results:     results,
		Grader:      grader,
		Redis:       rdb,
	}
}

type SubmitReq struct {
	Answers   []model.SubmissionAnswer `json:"answers" binding:"required"`
	TimeTaken int                      `json:"timeTaken"`
}

type AutoGradingStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type SubmitOutcome struct {
	SubmissionID string            `json:"submissionId"`
	Status       string            `json:"status"`
	AutoGrading  AutoGradingStatus `json:"autoGrading"`
	Result       *model.Result     `json:"result,omitempty"`
}

// Submit 校验并持久化提交，随后同步做一次尽力而为的自动评分。
// 评分失败绝不让提交本身失败：学生的作答先落库，评分可以事后补。
func (s *SubmissionService) Submit(studentID uint, paperID string, req *SubmitReq) (*SubmitOutcome, error) {
	paper, err := s.Papers.FindPublishedByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// draft 试卷尚不是可见的考核，按不存在处理
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}

	if len(req.Answers) == 0 {
		return nil, util.ErrEmptyAnswers
	}
	if req.TimeTaken < 0 {
		return nil, util.ErrNegativeTime
	}
	for _, a := range req.Answers {
		if paper.FindQuestion(a.QuestionID) == nil {
			// 未知题目整卷拒绝，不做部分接受
			return nil, &util.UnknownQuestionError{QuestionID: a.QuestionID}
		}
	}

	if len(req.Answers) < len(paper.Questions) {
		// 部分作答允许提交，只记录
		logger.Log.Info("partial submission",
			zap.String("paperId", paperID),
			zap.Uint("studentId", studentID),
			zap.Int("answered", len(req.Answers)),
			zap.Int("questions", len(paper.Questions)))
	}

	overLimit := false
	if paper.TimeLimit > 0 && req.TimeTaken > paper.TimeLimit*60 {
		overLimit = true
		logger.Log.Info("submission over time limit",
			zap.String("paperId", paperID),
			zap.Uint("studentId", studentID),
			zap.Int("timeTaken", req.TimeTaken))
	}

	// 快路径查重，给出友好的冲突响应
	if existing, err := s.Submissions.FindByStudentAndPaper(studentID, paperID); err == nil {
		return nil, &util.SubmissionConflictError{SubmissionID: existing.ID, Status: existing.Status}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		PaperID:       paperID,
		StudentID:     studentID,
		Answers:       answersJSON,
		TimeTaken:     req.TimeTaken,
		OverTimeLimit: overLimit,
		Status:        model.SubmissionSubmitted,
		MaxScore:      float64(paper.TotalMarks),
	}
	if err := s.Submissions.Create(submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发重复提交，唯一索引兜底，恰好一个胜出
			if existing, err2 := s.Submissions.FindByStudentAndPaper(studentID, paperID); err2 == nil {
				return nil, &util.SubmissionConflictError{SubmissionID: existing.ID, Status: existing.Status}
			}
			// 重复已由唯一索引确认，回读失败也按冲突返回，不升级成内部错误
			return nil, &util.SubmissionConflictError{}
		}
		return nil, err
	}

	result, gradeErr := s.grade(studentID, paper, submission, req.Answers)
	if gradeErr != nil {
		logger.Log.Warn("auto grading failed, submission kept pending",
			zap.String("submissionId", submission.ID),
			zap.Error(gradeErr))
		monitoring.GradingCounter.WithLabelValues("pending").Inc()
		return &SubmitOutcome{
			SubmissionID: submission.ID,
			Status:       submission.Status,
			AutoGrading: AutoGradingStatus{
				Success: false,
				Message: "automatic grading unavailable, manual grading pending: " + gradeErr.Error(),
			},
		}, nil
	}

	monitoring.GradingCounter.WithLabelValues("graded").Inc()
	return &SubmitOutcome{
		SubmissionID: submission.ID,
		Status:       submission.Status,
		AutoGrading:  AutoGradingStatus{Success: true},
		Result:       result,
	}, nil
}

// grade 评分并落结果。提交先于评分持久化，结果先于状态更新持久化，
// "已提交未评分"始终是一个可恢复的中间态。
func (s *SubmissionService) grade(studentID uint, paper *model.QuestionPaper, submission *model.Submission, answers []model.SubmissionAnswer) (*model.Result, error) {
	gradingAnswers := make([]GradingAnswer, 0, len(answers))
	for _, a := range answers {
		gradingAnswers = append(gradingAnswers, GradingAnswer{
			QuestionID: a.QuestionID,
			Answer:     a.Response,
			TimeSpent:  a.TimeSpent,
		})
	}

	req := &GradingRequest{
		Questions:       gradingQuestions(paper.Questions),
		StudentAnswers:  gradingAnswers,
		SubmissionID:    submission.ID,
		QuestionPaperID: paper.ID,
		StudentID:       FormatStudentID(studentID),
	}

	start := time.Now()
	var res *GradingResult
	var err error
	if paper.Scheme != nil {
		res, err = s.Grader.GradeWithScheme(studentID, req, paper.Scheme)
	} else {
		res, err = s.Grader.GradeDirect(studentID, req)
	}
	monitoring.GradingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	percentage := res.Percentage
	if percentage == 0 && res.MaxScore > 0 {
		percentage = math.Round(res.TotalScore / res.MaxScore * 100)
	}
	letter := res.LetterGrade
	if letter == "" {
		letter = LetterGrade(percentage)
	}

	// 落库前转成对外的反馈结构，读取端不感知AI侧的线上格式
	feedbackItems := make([]model.QuestionFeedback, 0, len(res.DetailedFeedback))
	for _, f := range res.DetailedFeedback {
		feedbackItems = append(feedbackItems, model.QuestionFeedback{
			QuestionID:    f.QuestionID,
			Score:         f.Score,
			MaxPoints:     f.MaxPoints,
			IsCorrect:     f.IsCorrect,
			Feedback:      f.Feedback,
			GradingMethod: f.GradingMethod,
		})
	}
	feedback, err := json.Marshal(feedbackItems)
	if err != nil {
		return nil, err
	}

	schemeSource := ""
	if paper.Scheme != nil {
		schemeSource = paper.Scheme.Source
	}

	result := &model.Result{
		SubmissionID:     submission.ID,
		TotalScore:       res.TotalScore,
		MaxScore:         res.MaxScore,
		Percentage:       percentage,
		LetterGrade:      letter,
		QuestionFeedback: feedback,
		OverallFeedback:  res.OverallFeedback,
		GradedBy:         model.GradedByAI,
		SchemeSource:     schemeSource,
		GradedAt:         time.Now(),
	}
	if err := s.Results.Create(result); err != nil {
		return nil, err
	}

	submission.Status = model.SubmissionGraded
	submission.TotalScore = res.TotalScore
	submission.MaxScore = res.MaxScore
	submission.Percentage = percentage
	if err := s.Submissions.Update(submission); err != nil {
		return nil, err
	}

	return result, nil
}

type TakingQuestion struct {
	ID           string          `json:"id"`
	Order        int             `json:"order"`
	Content      string          `json:"content"`
	QuestionType string          `json:"questionType"`
	Points       int             `json:"points"`
	Options      json.RawMessage `json:"options,omitempty"`
}

type PaperForTaking struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	TimeLimit     int              `json:"timeLimit"`
	TotalMarks    int              `json:"totalMarks"`
	QuestionCount int              `json:"questionCount"`
	Questions     []TakingQuestion `json:"questions"`
}

// GetForTaking 学生取卷：剥掉答案与解析，已提交过的直接返回冲突
func (s *SubmissionService) GetForTaking(studentID uint, paperID string) (*PaperForTaking, error) {
	if existing, err := s.Submissions.FindByStudentAndPaper(studentID, paperID); err == nil {
		return nil, &util.SubmissionConflictError{SubmissionID: existing.ID, Status: existing.Status}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ctx := context.Background()
	if s.Redis != nil {
		if data, err := s.Redis.Get(ctx, takingCacheKey(paperID)).Result(); err == nil {
			var cached PaperForTaking
			if json.Unmarshal([]byte(data), &cached) == nil {
				return &cached, nil
			}
		}
	}

	paper, err := s.Papers.FindPublishedByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}

	view := &PaperForTaking{
		ID:            paper.ID,
		Title:         paper.Title,
		Description:   paper.Description,
		TimeLimit:     paper.TimeLimit,
		TotalMarks:    paper.TotalMarks,
		QuestionCount: len(paper.Questions),
	}
	for _, q := range paper.Questions {
		view.Questions = append(view.Questions, TakingQuestion{
			ID:           q.ID,
			Order:        q.Order,
			Content:      q.Content,
			QuestionType: q.QuestionType,
			Points:       q.Points,
			Options:      q.Options,
		})
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(view); err == nil {
			s.Redis.Set(ctx, takingCacheKey(paperID), payload, 5*time.Minute)
		}
	}

	return view, nil
}

type ResultView struct {
	SubmissionID     string                   `json:"submissionId"`
	PaperID          string                   `json:"paperId"`
	Status           string                   `json:"status"`
	TotalScore       float64                  `json:"totalScore"`
	MaxScore         float64                  `json:"maxScore"`
	Percentage       float64                  `json:"percentage"`
	LetterGrade      string                   `json:"letterGrade"`
	QuestionFeedback []model.QuestionFeedback `json:"questionFeedback"`
	OverallFeedback  string                   `json:"overallFeedback"`
	GradedBy         string                   `json:"gradedBy"`
	SchemeSource     string                   `json:"schemeSource,omitempty"`
	GradedAt         time.Time                `json:"gradedAt"`
	ReviewedAt       *time.Time               `json:"reviewedAt,omitempty"`
}

// GetResult 角色加归属双重校验的成绩读取。
// 学生视角隐藏教师侧细节（逐题评分方式、标准来源）。
func (s *SubmissionService) GetResult(claims *util.Claims, submissionID string) (*ResultView, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	switch claims.Role {
	case model.Student:
		if submission.StudentID != claims.UserID {
			return nil, util.ErrPermissionDenied
		}
	case model.Teacher:
		paper, err := s.Papers.FindByID(submission.PaperID)
		if err != nil {
			return nil, util.ErrPermissionDenied
		}
		if paper.TeacherID != claims.UserID {
			return nil, util.ErrPermissionDenied
		}
	default:
		return nil, util.ErrPermissionDenied
	}

	result, err := s.Results.FindBySubmissionID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResultNotReady
		}
		return nil, err
	}

	var feedback []model.QuestionFeedback
	if len(result.QuestionFeedback) > 0 {
		if err := json.Unmarshal(result.QuestionFeedback, &feedback); err != nil {
			return nil, err
		}
	}

	view := &ResultView{
		SubmissionID:     submission.ID,
		PaperID:          submission.PaperID,
		Status:           submission.Status,
		TotalScore:       result.TotalScore,
		MaxScore:         result.MaxScore,
		Percentage:       result.Percentage,
		LetterGrade:      result.LetterGrade,
		QuestionFeedback: feedback,
		OverallFeedback:  result.OverallFeedback,
		GradedBy:         result.GradedBy,
		SchemeSource:     result.SchemeSource,
		GradedAt:         result.GradedAt,
		ReviewedAt:       result.ReviewedAt,
	}

	if claims.Role == model.Student {
		view.SchemeSource = ""
		for i := range view.QuestionFeedback {
			view.QuestionFeedback[i].GradingMethod = ""
		}
	}

	return view, nil
}

type ReviewReq struct {
	TotalScore       *float64                  `json:"totalScore"`
	OverallFeedback  *string                   `json:"overallFeedback"`
	QuestionFeedback *[]model.QuestionFeedback `json:"questionFeedback"`
}

// ReviewResult 教师复核：修正自动评分，或对评分失败的提交人工给分
func (s *SubmissionService) ReviewResult(teacherID uint, submissionID string, req *ReviewReq) (*model.Result, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	paper, err := s.Papers.FindByID(submission.PaperID)
	if err != nil {
		return nil, util.ErrPermissionDenied
	}
	if paper.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	result, err := s.Results.FindBySubmissionID(submissionID)
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 自动评分没有完成过，人工评分创建结果
		created = true
		result = &model.Result{
			SubmissionID: submissionID,
			MaxScore:     float64(paper.TotalMarks),
			GradedAt:     now,
		}
	}

	if req.TotalScore != nil {
		result.TotalScore = *req.TotalScore
	}
	if req.OverallFeedback != nil {
		result.OverallFeedback = *req.OverallFeedback
	}
	if req.QuestionFeedback != nil {
		feedback, err := json.Marshal(*req.QuestionFeedback)
		if err != nil {
			return nil, err
		}
		result.QuestionFeedback = feedback
	}

	if result.MaxScore > 0 {
		result.Percentage = math.Round(result.TotalScore / result.MaxScore * 100)
	}
	result.LetterGrade = LetterGrade(result.Percentage)
	result.GradedBy = model.GradedByTeacher
	result.ReviewedAt = &now

	if created {
		if err := s.Results.Create(result); err != nil {
			return nil, err
		}
	} else {
		if err := s.Results.Update(result); err != nil {
			return nil, err
		}
	}

	submission.Status = model.SubmissionGraded
	submission.TotalScore = result.TotalScore
	submission.MaxScore = result.MaxScore
	submission.Percentage = result.Percentage
	if err := s.Submissions.Update(submission); err != nil {
		return nil, err
	}

	return result, nil
}

// LetterGrade 百分比到等级的兜底换算，AI评分未给出等级时使用
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 63:
		return "D"
	case percentage >= 60:
		return "D-"
	default:
		return "F"
	}
}

func takingCacheKey(paperID string) string {
	return "paper:taking:" + paperID
}
