package service

import (
	"eduassess_backend/internal/model"
	"testing"
)

func TestTotalMarks(t *testing.T) {
	questions := []model.Question{
		{Points: 10},
		{Points: 5},
		{Points: 0},
		{Points: 15},
	}
	if got := TotalMarks(questions); got != 30 {
		t.Errorf("TotalMarks = %d, want 30", got)
	}
	if got := TotalMarks(nil); got != 0 {
		t.Errorf("TotalMarks(nil) = %d, want 0", got)
	}
}

func TestBuildQuestionsDefaultsOrder(t *testing.T) {
	reqs := []QuestionReq{
		{QuestionType: model.QuestionMultipleChoice, Content: "a", Points: 5},
		{QuestionType: model.QuestionShortAnswer, Content: "b", Points: 5, Order: 7},
		{QuestionType: model.QuestionEssay, Content: "c", Points: 10},
	}
	questions := buildQuestions(reqs)
	if len(questions) != 3 {
		t.Fatalf("len = %d", len(questions))
	}
	// 未指定序号时按出现顺序补齐，指定了则保留
	if questions[0].Order != 1 || questions[1].Order != 7 || questions[2].Order != 3 {
		t.Errorf("orders = %d/%d/%d, want 1/7/3",
			questions[0].Order, questions[1].Order, questions[2].Order)
	}
	if questions[2].QuestionType != model.QuestionEssay {
		t.Errorf("type = %s", questions[2].QuestionType)
	}
}
