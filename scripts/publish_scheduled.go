// 手动触发到期试卷发布脚本
//
// 该功能已集成到主应用的后台定时任务中（每分钟自动执行一次）。
// 此脚本仅用于手动触发，例如服务停机期间积压了到期的排期试卷。
//
// 用法: go run scripts/publish_scheduled.go

package main

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/pkg/database"
	"eduassess_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	paperRepo := repository.NewQuestionPaperRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	paperService := service.NewQuestionPaperService(paperRepo, submissionRepo, nil, nil)

	if err := paperService.ProcessScheduledPublishes(); err != nil {
		log.Fatalf("发布失败: %v", err)
	}

	log.Println("到期试卷发布完成")
}
