package service

import (
	"context"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionPaperService struct {
	Repo        *repository.QuestionPaperRepository
	Submissions *repository.SubmissionRepository
	AI          *AIService
	Redis       *redis.Client
}

func NewQuestionPaperService(repo *repository.QuestionPaperRepository, submissions *repository.SubmissionRepository, ai *AIService, rdb *redis.Client) *QuestionPaperService {
	return &QuestionPaperService{Repo: repo, Submissions: submissions, AI: ai, Redis: rdb}
}

type QuestionReq struct {
	QuestionType string          `json:"questionType" binding:"required"`
	Content      string          `json:"content" binding:"required"`
	Options      json.RawMessage `json:"options"`
	Answer       string          `json:"answer"`
	Explanation  string          `json:"explanation"`
	Points       int             `json:"points"`
	Order        int             `json:"order"`
}

type PaperReq struct {
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	TimeLimit          *int           `json:"timeLimit"`
	ScheduledPublishAt *time.Time     `json:"scheduledPublishAt"`
	Questions          *[]QuestionReq `json:"questions"`
}

func buildQuestions(reqs []QuestionReq) []model.Question {
	questions := make([]model.Question, 0, len(reqs))
	for i, q := range reqs {
		order := q.Order
		if order == 0 {
			order = i + 1
		}
		questions = append(questions, model.Question{
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Options:      q.Options,
			Answer:       q.Answer,
			Explanation:  q.Explanation,
			Points:       q.Points,
			Order:        order,
		})
	}
	return questions
}

// TotalMarks 总分恒等于题目分值之和，建卷/改卷时重算
func TotalMarks(questions []model.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func (s *QuestionPaperService) CreatePaper(teacherID uint, req PaperReq) (*model.QuestionPaper, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	paper := &model.QuestionPaper{
		Title:     *req.Title,
		TeacherID: teacherID,
		Status:    model.PaperDraft,
	}
	if req.Description != nil {
		paper.Description = *req.Description
	}
	if req.TimeLimit != nil {
		paper.TimeLimit = *req.TimeLimit
	}
	if req.ScheduledPublishAt != nil {
		paper.ScheduledPublishAt = req.ScheduledPublishAt
	}
	if req.Questions != nil {
		paper.Questions = buildQuestions(*req.Questions)
	}
	paper.TotalMarks = TotalMarks(paper.Questions)

	if err := s.Repo.CreateWithQuestions(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// UpdatePaper 仅 draft 可改。published 试卷可能有进行中的作答，
// 题目集必须保持稳定。
func (s *QuestionPaperService) UpdatePaper(teacherID uint, paperID string, req PaperReq) (*model.QuestionPaper, error) {
	paper, err := s.getOwned(teacherID, paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status != model.PaperDraft {
		return nil, util.ErrPaperNotDraft
	}

	if req.Title != nil {
		paper.Title = *req.Title
	}
	if req.Description != nil {
		paper.Description = *req.Description
	}
	if req.TimeLimit != nil {
		paper.TimeLimit = *req.TimeLimit
	}
	if req.ScheduledPublishAt != nil {
		paper.ScheduledPublishAt = req.ScheduledPublishAt
	}

	if req.Questions != nil {
		questions := buildQuestions(*req.Questions)
		if err := s.Repo.ReplaceQuestions(paperID, questions); err != nil {
			return nil, err
		}
		paper.Questions = questions
		paper.TotalMarks = TotalMarks(questions)
	}

	if err := s.Repo.Update(paper); err != nil {
		return nil, err
	}
	s.invalidateTakingCache(paperID)
	return paper, nil
}

func (s *QuestionPaperService) DeletePaper(teacherID uint, paperID string) error {
	paper, err := s.getOwned(teacherID, paperID)
	if err != nil {
		return err
	}
	if paper.Status != model.PaperDraft {
		return util.ErrPaperNotDraft
	}
	return s.Repo.Delete(paperID)
}

func (s *QuestionPaperService) PublishPaper(teacherID uint, paperID string) (*model.QuestionPaper, error) {
	paper, err := s.getOwned(teacherID, paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status == model.PaperPublished {
		return paper, nil
	}
	if len(paper.Questions) == 0 {
		return nil, errors.New("cannot publish a paper without questions")
	}

	if err := s.Repo.Publish(paperID); err != nil {
		return nil, err
	}
	s.invalidateTakingCache(paperID)
	return s.Repo.FindByIDForTeacher(paperID, teacherID)
}

func (s *QuestionPaperService) GetPaper(teacherID uint, paperID string) (*model.QuestionPaper, error) {
	return s.getOwned(teacherID, paperID)
}

func (s *QuestionPaperService) ListPapers(teacherID uint, page, limit int) ([]repository.PaperListRow, int64, error) {
	return s.Repo.ListByTeacher(teacherID, page, limit)
}

// GenerateFromContent 内容分析加AI出题，产出一份 draft 试卷
func (s *QuestionPaperService) GenerateFromContent(teacherID uint, title string, req *QuestionGenerationRequest) (*model.QuestionPaper, error) {
	generated, err := s.AI.GenerateQuestions(teacherID, req)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(generated.Questions))
	for i, g := range generated.Questions {
		var options json.RawMessage
		if len(g.Options) > 0 {
			options, _ = json.Marshal(g.Options)
		}
		questions = append(questions, model.Question{
			QuestionType: g.QuestionType,
			Content:      g.Content,
			Options:      options,
			Answer:       g.Answer,
			Explanation:  g.Explanation,
			Points:       g.Points,
			Order:        i + 1,
		})
	}

	paper := &model.QuestionPaper{
		Title:      title,
		TeacherID:  teacherID,
		Status:     model.PaperDraft,
		Questions:  questions,
		TotalMarks: TotalMarks(questions),
	}
	if err := s.Repo.CreateWithQuestions(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// GenerateScheme AI生成评分标准，整体替换旧标准，来源标记为 ai
func (s *QuestionPaperService) GenerateScheme(teacherID uint, paperID string) (*model.MarkingScheme, error) {
	paper, err := s.getOwned(teacherID, paperID)
	if err != nil {
		return nil, err
	}

	generated, err := s.AI.GenerateMarkingScheme(teacherID, paperID, paper.Questions)
	if err != nil {
		return nil, err
	}

	criteria, err := json.Marshal(generated.Criteria)
	if err != nil {
		return nil, err
	}

	scheme := &model.MarkingScheme{
		Criteria:      criteria,
		Instructions:  generated.Instructions,
		SuggestedTime: generated.SuggestedTime,
		Source:        model.SchemeSourceAI,
	}
	if err := s.Repo.ReplaceScheme(paperID, scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

type SchemeReq struct {
	Criteria      []model.SchemeCriterion `json:"criteria" binding:"required"`
	Instructions  string                  `json:"instructions"`
	SuggestedTime int                     `json:"suggestedTime"`
}

// AuthorScheme 教师手写评分标准，来源标记为 teacher
func (s *QuestionPaperService) AuthorScheme(teacherID uint, paperID string, req SchemeReq) (*model.MarkingScheme, error) {
	if _, err := s.getOwned(teacherID, paperID); err != nil {
		return nil, err
	}

	criteria, err := json.Marshal(req.Criteria)
	if err != nil {
		return nil, err
	}

	scheme := &model.MarkingScheme{
		Criteria:      criteria,
		Instructions:  req.Instructions,
		SuggestedTime: req.SuggestedTime,
		Source:        model.SchemeSourceTeacher,
	}
	if err := s.Repo.ReplaceScheme(paperID, scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

func (s *QuestionPaperService) ListSubmissions(teacherID uint, paperID string, page, limit int, studentName string) ([]repository.SubmissionListRow, int64, error) {
	if _, err := s.getOwned(teacherID, paperID); err != nil {
		return nil, 0, err
	}
	return s.Submissions.ListByPaper(paperID, page, limit, studentName)
}

// ProcessScheduledPublishes 后台定时任务：发布到期的排期试卷
func (s *QuestionPaperService) ProcessScheduledPublishes() error {
	papers, err := s.Repo.ListScheduledDue(time.Now())
	if err != nil {
		return err
	}
	for _, paper := range papers {
		if err := s.Repo.Publish(paper.ID); err != nil {
			logger.Log.Error("scheduled publish failed",
				zap.String("paperId", paper.ID),
				zap.Error(err))
			continue
		}
		s.invalidateTakingCache(paper.ID)
		logger.Log.Info("paper published on schedule", zap.String("paperId", paper.ID))
	}
	return nil
}

func (s *QuestionPaperService) getOwned(teacherID uint, paperID string) (*model.QuestionPaper, error) {
	paper, err := s.Repo.FindByIDForTeacher(paperID, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 归属过滤后的查询：他人的试卷按不存在处理，不泄露存在性
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	return paper, nil
}

func (s *QuestionPaperService) invalidateTakingCache(paperID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), takingCacheKey(paperID))
}
