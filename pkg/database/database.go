package database

import (
	"fmt"
	"log"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
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
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Group{},
		&model.GroupMember{},
		&model.Question{},
		&model.Quiz{},
		&model.QuizSlot{},
		&model.QuizOverride{},
		&model.QuizAttempt{},
		&model.AttemptStep{},
		&model.QuizGrade{},
		&model.RegradeMark{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
