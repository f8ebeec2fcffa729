package service

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordingUsage struct {
	events chan UsageEvent
}

func newRecordingUsage() *recordingUsage {
	return &recordingUsage{events: make(chan UsageEvent, 4)}
}

func (r *recordingUsage) Record(event UsageEvent) {
	r.events <- event
}

func (r *recordingUsage) wait(t *testing.T) UsageEvent {
	t.Helper()
	select {
	case e := <-r.events:
		return e
	case <-time.After(time.Second):
		t.Fatal("usage event not recorded")
		return UsageEvent{}
	}
}

func aiTestConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		AnalysisTimeout: 2 * time.Second,
		GenerateTimeout: 2 * time.Second,
		SchemeTimeout:   2 * time.Second,
		GradingTimeout:  2 * time.Second,
	}
}

func TestGradeDirect(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotReq GradingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(GradingResult{
			Success:     true,
			TotalScore:  8,
			MaxScore:    10,
			Percentage:  80,
			LetterGrade: "B-",
			DetailedFeedback: []QuestionGrading{
				{QuestionID: "q1", Score: 8, MaxPoints: 10, GradingMethod: "partial_credit"},
			},
			TokensUsed: 120,
			CostUSD:    0.002,
		})
	}))
	defer server.Close()

	usage := newRecordingUsage()
	svc := NewAIService(aiTestConfig(server.URL), usage)

	req := &GradingRequest{
		Questions:       []GradingQuestion{{QuestionID: "q1", MaxPoints: 10}},
		StudentAnswers:  []GradingAnswer{{QuestionID: "q1", Answer: "x"}},
		SubmissionID:    "sub-1",
		QuestionPaperID: "paper-1",
		StudentID:       "1",
	}
	res, err := svc.GradeDirect(7, req)
	if err != nil {
		t.Fatalf("GradeDirect: %v", err)
	}
	if gotPath != "/grade-submission" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotReq.MarkingScheme != nil {
		t.Error("direct grading must not send a marking scheme")
	}
	if res.TotalScore != 8 || res.LetterGrade != "B-" {
		t.Errorf("result = %v/%s", res.TotalScore, res.LetterGrade)
	}

	event := usage.wait(t)
	if event.UserID != 7 || event.ServiceType != model.UsageAutoGrading || event.TokensUsed != 120 {
		t.Errorf("usage event = %+v", event)
	}
	if event.SubmissionID != "sub-1" || event.PaperID != "paper-1" {
		t.Errorf("usage linkage = %s/%s", event.SubmissionID, event.PaperID)
	}
}

func TestGradeWithSchemeSendsSnapshot(t *testing.T) {
	var gotReq GradingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(GradingResult{Success: true, TotalScore: 5, MaxScore: 10})
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), newRecordingUsage())

	criteria, _ := json.Marshal([]model.SchemeCriterion{{QuestionID: "q1", MaxPoints: 10}})
	scheme := &model.MarkingScheme{
		Criteria:     criteria,
		Instructions: "按要点给分",
		Source:       model.SchemeSourceTeacher,
	}
	_, err := svc.GradeWithScheme(7, &GradingRequest{SubmissionID: "sub-1"}, scheme)
	if err != nil {
		t.Fatalf("GradeWithScheme: %v", err)
	}
	if gotReq.MarkingScheme == nil {
		t.Fatal("marking scheme missing from request")
	}
	if gotReq.MarkingScheme.Source != model.SchemeSourceTeacher {
		t.Errorf("scheme source = %s", gotReq.MarkingScheme.Source)
	}
	if gotReq.MarkingScheme.Instructions != "按要点给分" {
		t.Errorf("instructions = %s", gotReq.MarkingScheme.Instructions)
	}
}

func TestGradeUpstreamFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(GradingResult{Success: false, Message: "model overloaded"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			svc := NewAIService(aiTestConfig(server.URL), newRecordingUsage())
			_, err := svc.GradeDirect(1, &GradingRequest{})
			if !errors.Is(err, util.ErrUpstreamFailed) {
				t.Errorf("err = %v, want ErrUpstreamFailed", err)
			}
		})
	}
}

func TestAnalyzeContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-content" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ContentAnalysis{
			Success:              true,
			ContentType:          "lecture_notes",
			WordCount:            1200,
			SuitableForQuestions: true,
			EducationalScore:     8,
			TokensUsed:           40,
		})
	}))
	defer server.Close()

	usage := newRecordingUsage()
	svc := NewAIService(aiTestConfig(server.URL), usage)

	res, err := svc.AnalyzeContent(3, &ContentAnalysisRequest{FileContent: "指针是……", FileType: "txt"})
	if err != nil {
		t.Fatalf("AnalyzeContent: %v", err)
	}
	if !res.SuitableForQuestions || res.WordCount != 1200 {
		t.Errorf("analysis = %+v", res)
	}
	if event := usage.wait(t); event.ServiceType != model.UsageContentAnalysis {
		t.Errorf("usage service type = %s", event.ServiceType)
	}
}

func TestGenerateQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req QuestionGenerationRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.QuestionCount != 5 || req.DifficultyLevel != "medium" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(GeneratedQuestions{
			Success: true,
			Questions: []GeneratedQuestion{
				{QuestionType: model.QuestionMultipleChoice, Content: "1+1=?", Options: []string{"1", "2"}, Answer: "2", Points: 5},
			},
		})
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), newRecordingUsage())
	res, err := svc.GenerateQuestions(3, &QuestionGenerationRequest{
		Content:         "教材内容",
		QuestionCount:   5,
		DifficultyLevel: "medium",
		QuestionTypes:   []string{model.QuestionMultipleChoice},
	})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(res.Questions) != 1 || res.Questions[0].Answer != "2" {
		t.Errorf("questions = %+v", res.Questions)
	}
}

func TestFormatStudentID(t *testing.T) {
	if got := FormatStudentID(42); got != "42" {
		t.Errorf("FormatStudentID(42) = %s", got)
	}
}
