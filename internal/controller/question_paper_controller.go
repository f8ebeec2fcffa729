package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionPaperController struct {
	Service    *service.QuestionPaperService
	Submission *service.SubmissionService
	AI         *service.AIService
}

func NewQuestionPaperController(svc *service.QuestionPaperService, submission *service.SubmissionService, ai *service.AIService) *QuestionPaperController {
	return &QuestionPaperController{Service: svc, Submission: submission, AI: ai}
}

// @Summary 创建试卷
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.PaperReq true "试卷信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/papers [post]
func (c *QuestionPaperController) CreatePaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req service.PaperReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	paper, err := c.Service.CreatePaper(user.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, paper)
}

// @Summary 获取试卷列表
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/papers [get]
func (c *QuestionPaperController) ListPapers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	papers, total, err := c.Service.ListPapers(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": papers, "total": total})
}

// @Summary 获取试卷详情（含答案，仅归属教师）
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id} [get]
func (c *QuestionPaperController) GetPaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	paper, err := c.Service.GetPaper(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, paper)
}

// @Summary 更新试卷（仅 draft）
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body service.PaperReq true "试卷信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id} [put]
func (c *QuestionPaperController) UpdatePaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req service.PaperReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	paper, err := c.Service.UpdatePaper(user.UserID, ctx.Param("id"), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, paper)
}

// @Summary 删除试卷（仅 draft）
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id} [delete]
func (c *QuestionPaperController) DeletePaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	if err := c.Service.DeletePaper(user.UserID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": ctx.Param("id")})
}

// @Summary 发布试卷
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id}/publish [post]
func (c *QuestionPaperController) PublishPaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	paper, err := c.Service.PublishPaper(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, paper)
}

type AnalyzeContentReq struct {
	FileContent string `json:"fileContent" binding:"required"`
	FileType    string `json:"fileType" binding:"required"`
	ResourceID  string `json:"resourceId"`
}

// @Summary 分析资料内容是否适合出题
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body AnalyzeContentReq true "资料内容"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/analyze-content [post]
func (c *QuestionPaperController) AnalyzeContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req AnalyzeContentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	analysis, err := c.AI.AnalyzeContent(user.UserID, &service.ContentAnalysisRequest{
		FileContent: req.FileContent,
		FileType:    req.FileType,
		ResourceID:  req.ResourceID,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, analysis)
}

type GeneratePaperReq struct {
	Title           string   `json:"title" binding:"required"`
	Content         string   `json:"content" binding:"required"`
	QuestionCount   int      `json:"questionCount"`
	DifficultyLevel string   `json:"difficultyLevel"`
	QuestionTypes   []string `json:"questionTypes"`
}

// @Summary AI出题并生成 draft 试卷
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GeneratePaperReq true "生成参数"
// @Success 201 {object} util.Response
// @Router /api/teacher/papers/generate [post]
func (c *QuestionPaperController) GeneratePaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req GeneratePaperReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.QuestionCount == 0 {
		req.QuestionCount = 10
	}
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = "medium"
	}
	if len(req.QuestionTypes) == 0 {
		req.QuestionTypes = []string{"multiple_choice", "short_answer"}
	}

	paper, err := c.Service.GenerateFromContent(user.UserID, req.Title, &service.QuestionGenerationRequest{
		Content:         req.Content,
		QuestionCount:   req.QuestionCount,
		DifficultyLevel: req.DifficultyLevel,
		QuestionTypes:   req.QuestionTypes,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, paper)
}

// @Summary AI生成评分标准
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id}/scheme/generate [post]
func (c *QuestionPaperController) GenerateScheme(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	scheme, err := c.Service.GenerateScheme(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, scheme)
}

// @Summary 教师手写评分标准
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body service.SchemeReq true "评分标准"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id}/scheme [put]
func (c *QuestionPaperController) AuthorScheme(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req service.SchemeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	scheme, err := c.Service.AuthorScheme(user.UserID, ctx.Param("id"), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, scheme)
}

// @Summary 获取试卷答题情况列表
// @Tags 试卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param name query string false "学生姓名"
// @Success 200 {object} util.Response
// @Router /api/teacher/papers/{id}/submissions [get]
func (c *QuestionPaperController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	rows, total, err := c.Service.ListSubmissions(user.UserID, ctx.Param("id"), page, limit, ctx.Query("name"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": rows, "total": total})
}

// @Summary 教师复核/人工评分
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Param body body service.ReviewReq true "复核内容"
// @Success 200 {object} util.Response
// @Router /api/teacher/submissions/{id}/review [post]
func (c *QuestionPaperController) ReviewResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req service.ReviewReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Submission.ReviewResult(user.UserID, ctx.Param("id"), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
