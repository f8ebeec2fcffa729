package service

import (
	"bytes"
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/pkg/logger"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type UsageEvent struct {
	UserID       uint
	ServiceType  model.AIServiceType
	TokensUsed   int
	CostUSD      float64
	SubmissionID string
	PaperID      string
	Duration     time.Duration
}

// UsageRecorder 所有AI调用点只依赖这个抽象做用量记账，
// 测试里可以换成空实现或记录用的假实现
type UsageRecorder interface {
	Record(event UsageEvent)
}

// UsageService 用量记账。配置了 endpoint 时上报外部记账服务，
// 否则落本地数据库。记账失败只打日志，绝不向调用方传播。
type UsageService struct {
	Repo     *repository.UsageRepository
	Endpoint string
	Timeout  time.Duration
	client   *http.Client
}

func NewUsageService(repo *repository.UsageRepository, cfg config.UsageConfig) *UsageService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsageService{
		Repo:     repo,
		Endpoint: cfg.Endpoint,
		Timeout:  timeout,
		client:   &http.Client{},
	}
}

func (s *UsageService) Record(e UsageEvent) {
	// 非法记录静默丢弃
	if e.UserID == 0 || e.TokensUsed <= 0 {
		return
	}

	if s.Endpoint != "" {
		s.post(e)
		return
	}

	if s.Repo == nil {
		return
	}

	log := &model.AIUsageLog{
		UserID:       e.UserID,
		ServiceType:  e.ServiceType,
		TokensUsed:   e.TokensUsed,
		CostUSD:      e.CostUSD,
		SubmissionID: e.SubmissionID,
		PaperID:      e.PaperID,
		DurationMS:   e.Duration.Milliseconds(),
	}
	if err := s.Repo.Create(log); err != nil {
		logger.Log.Warn("usage record write failed",
			zap.Uint("userId", e.UserID),
			zap.String("serviceType", string(e.ServiceType)),
			zap.Error(err))
	}
}

func (s *UsageService) post(e UsageEvent) {
	body, err := json.Marshal(map[string]interface{}{
		"user_id":       e.UserID,
		"service_type":  string(e.ServiceType),
		"tokens_used":   e.TokensUsed,
		"cost_usd":      e.CostUSD,
		"submission_id": e.SubmissionID,
		"paper_id":      e.PaperID,
		"duration_ms":   e.Duration.Milliseconds(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewBuffer(body))
	if err != nil {
		logger.Log.Warn("usage record request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Warn("usage record post failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Log.Warn("usage record rejected", zap.Int("status", resp.StatusCode))
	}
}

// NopUsageRecorder 不需要记账时的空实现
type NopUsageRecorder struct{}

func (NopUsageRecorder) Record(UsageEvent) {}
