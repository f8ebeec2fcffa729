package controller

import (
	"eduassess_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把 service 层的错误分类映射到HTTP状态码。
// 授权类失败必须带准确状态码返回，绝不用200包错误。
func respondServiceError(ctx *gin.Context, err error) {
	var conflict *util.SubmissionConflictError
	var unknownQuestion *util.UnknownQuestionError

	switch {
	case errors.As(err, &conflict):
		util.Conflict(ctx, "quiz already completed", gin.H{
			"submissionId": conflict.SubmissionID,
			"status":       conflict.Status,
		})
	case errors.As(err, &unknownQuestion):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrEmptyAnswers),
		errors.Is(err, util.ErrNegativeTime),
		errors.Is(err, util.ErrInvalidRole):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrPaperNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrResultNotReady),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrPaperNotDraft):
		util.Conflict(ctx, err.Error(), nil)
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error(), nil)
	case errors.Is(err, util.ErrUpstreamFailed):
		util.Error(ctx, 502, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
