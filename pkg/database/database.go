package database

import (
	"fmt"
	"log"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/model"

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

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := SeedDefaults(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 建表；测试里会对 sqlite 内存库复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Department{},
		&model.YearLevel{},
		&model.Section{},
		&model.SectionJoinCode{},
		&model.Student{},
		&model.Teacher{},
		&model.HandledSection{},
		&model.SimpleAdmin{},
		&model.Notification{},
		&model.LevelDefinition{},
		&model.AchievementDefinition{},
		&model.LevelProgress{},
		&model.AchievementProgress{},
		&model.SectionLevelSchedule{},
	)
}

// SeedDefaults 空库时插入默认学系、年级、关卡和成就目录
func SeedDefaults(db *gorm.DB) error {
	var deptCount int64
	db.Model(&model.Department{}).Count(&deptCount)
	if deptCount == 0 {
		for _, name := range []string{"CS", "IT"} {
			if err := db.Create(&model.Department{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	var yearCount int64
	db.Model(&model.YearLevel{}).Count(&yearCount)
	if yearCount == 0 {
		for y := 1; y <= 4; y++ {
			if err := db.Create(&model.YearLevel{Year: y}).Error; err != nil {
				return err
			}
		}
	}

	var levelCount int64
	db.Model(&model.LevelDefinition{}).Count(&levelCount)
	if levelCount == 0 {
		names := []string{"Tutorial", "Level1", "Level2", "Level3", "Level4", "Level5"}
		for _, name := range names {
			lvl := &model.LevelDefinition{
				Name:      name,
				Unlocked:  name == "Tutorial",
				SortOrder: model.DeriveSortOrder(name),
			}
			if err := db.Create(lvl).Error; err != nil {
				return err
			}
		}
	}

	var achCount int64
	db.Model(&model.AchievementDefinition{}).Count(&achCount)
	if achCount == 0 {
		defaults := []model.AchievementDefinition{
			{Code: "ach_001", Title: "First Steps", Description: "Finish the tutorial level.", IsActive: true},
			{Code: "ach_002", Title: "Speed Runner", Description: "Clear any level with 90 seconds or more remaining.", IsActive: true},
			{Code: "ach_003", Title: "Completionist", Description: "Clear every level at least once.", IsActive: true},
		}
		for _, a := range defaults {
			if err := db.Create(&a).Error; err != nil {
				return err
			}
		}
	}

	var adminCount int64
	db.Model(&model.SimpleAdmin{}).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := db.Create(&model.SimpleAdmin{Username: "admin", Password: string(hash)}).Error; err != nil {
			return err
		}
		log.Println("Seeded default admin account (change the password!)")
	}

	return nil
}
