// 手动触发进度补行同步脚本
//
// 同步在主应用里由目录变更/学生注册自动触发，此脚本用于手动补偿，
// 例如批量导入学生之后，或怀疑进度表缺行时。
//
// 用法: go run scripts/sync_progress.go

package main

import (
	"log"
	"os"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/service"
	"thinkjava_backend/pkg/database"
	"thinkjava_backend/pkg/logger"

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

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sync := service.NewSyncService(
		repository.NewStudentRepository(db),
		repository.NewLevelDefinitionRepository(db),
		repository.NewAchievementDefinitionRepository(db),
		repository.NewProgressRepository(db),
		db,
	)

	if err := sync.SyncAll(); err != nil {
		log.Fatalf("同步失败: %v", err)
	}
	log.Println("进度补行同步完成")
}
