package service

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUsageServicePostsToEndpoint(t *testing.T) {
	received := make(chan map[string]interface{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer server.Close()

	svc := NewUsageService(nil, config.UsageConfig{Endpoint: server.URL, Timeout: 2 * time.Second})
	svc.Record(UsageEvent{
		UserID:       7,
		ServiceType:  model.UsageAutoGrading,
		TokensUsed:   150,
		CostUSD:      0.003,
		SubmissionID: "sub-1",
		PaperID:      "paper-1",
		Duration:     1200 * time.Millisecond,
	})

	select {
	case payload := <-received:
		if payload["service_type"] != string(model.UsageAutoGrading) {
			t.Errorf("service_type = %v", payload["service_type"])
		}
		if payload["tokens_used"].(float64) != 150 {
			t.Errorf("tokens_used = %v", payload["tokens_used"])
		}
		if payload["duration_ms"].(float64) != 1200 {
			t.Errorf("duration_ms = %v", payload["duration_ms"])
		}
	case <-time.After(time.Second):
		t.Fatal("usage event never posted")
	}
}

func TestUsageServiceDropsInvalidEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid event must not reach the endpoint")
	}))
	defer server.Close()

	svc := NewUsageService(nil, config.UsageConfig{Endpoint: server.URL, Timeout: time.Second})

	// 无主体或零用量都是非法记录
	svc.Record(UsageEvent{UserID: 0, TokensUsed: 10})
	svc.Record(UsageEvent{UserID: 1, TokensUsed: 0})
	svc.Record(UsageEvent{UserID: 1, TokensUsed: -5})
}

func TestUsageServiceSwallowsEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewUsageService(nil, config.UsageConfig{Endpoint: server.URL, Timeout: time.Second})

	// 不应 panic，也没有错误可传播
	svc.Record(UsageEvent{UserID: 1, ServiceType: model.UsageContentAnalysis, TokensUsed: 10})
}
