package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

// @Summary 学生取卷作答（不含答案与解析）
// @Tags 提交模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/papers/{id}/take [get]
func (c *SubmissionController) GetPaperForTaking(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	paper, err := c.Service.GetForTaking(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, paper)
}

// @Summary 提交作答并触发自动评分
// @Tags 提交模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body service.SubmitReq true "作答内容"
// @Success 201 {object} util.Response
// @Router /api/papers/{id}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 结构合法且非重复的提交总是成功返回，
	// 评分是否完成由 autoGrading 字段区分
	outcome, err := c.Service.Submit(user.UserID, ctx.Param("id"), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, outcome)
}

// @Summary 查询评分结果（学生本人或归属教师）
// @Tags 提交模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id}/result [get]
func (c *SubmissionController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	result, err := c.Service.GetResult(user, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
