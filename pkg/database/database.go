package database

import (
	"fmt"
	"institute_admin_backend/internal/config"
	"institute_admin_backend/internal/model"
	"log"

	"golang.org/x/crypto/bcrypt"
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
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Assessment{},
		&model.Question{},
		&model.StudentAssessment{},
		&model.ResultDetail{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// First-boot admin account so the authoring API is reachable
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin := &model.User{
			Name:     "Administrator",
			Email:    "admin@institute.local",
			Password: string(hashed),
			Role:     model.Admin,
		}
		db.Create(admin)
		log.Println("Seeded default admin account (admin@institute.local), change the password immediately")
	}

	return db, nil
}
