package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrPaperNotFound      = errors.New("question paper not found")
	ErrPaperNotDraft      = errors.New("question paper already published")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrResultNotReady     = errors.New("result not available, grading pending")
	ErrEmptyAnswers       = errors.New("answers must not be empty")
	ErrNegativeTime       = errors.New("time taken must not be negative")
	ErrUpstreamFailed     = errors.New("upstream AI service unavailable")
)

// UnknownQuestionError 提交中出现试卷里不存在的题目ID，整体拒绝
type UnknownQuestionError struct {
	QuestionID string
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question id %q in submission", e.QuestionID)
}

// SubmissionConflictError 同一学生对同一试卷重复提交。
// 携带已有提交的ID和状态，客户端应跳转到成绩页。
type SubmissionConflictError struct {
	SubmissionID string
	Status       string
}

func (e *SubmissionConflictError) Error() string {
	return fmt.Sprintf("submission already exists (id=%s, status=%s)", e.SubmissionID, e.Status)
}
