package database

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // 唯一索引冲突需要映射为 gorm.ErrDuplicatedKey
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate 建表并确保 (student_id, paper_id) 唯一索引存在。
// 该索引是"同一学生同一试卷最多一次提交"的最终保证。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.QuestionPaper{},
		&model.Question{},
		&model.MarkingScheme{},
		&model.Submission{},
		&model.Result{},
		&model.AIUsageLog{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
