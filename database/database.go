package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"expensebook/config"
	"expensebook/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 打开数据库连接并完成表迁移和初始数据
// 返回显式的连接句柄，由调用方负责传递和关闭
func Init(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
			cfg.Database.Charset,
		)
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		if err := ensureDirForSQLite(cfg.Database.Path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Expense{},
	); err != nil {
		return nil, err
	}

	// 初始化默认消费类别（仅当表为空时）
	if err := seedDefaultCategories(db); err != nil {
		return nil, err
	}

	log.Println("数据库初始化成功")
	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedDefaultCategories 初始化默认消费类别，表非空时跳过
func seedDefaultCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// 默认类别及颜色（与前端 CSS 保持一致）
	defaults := []models.Category{
		{Name: "餐饮", Color: "#ef4444"}, // 红色
		{Name: "交通", Color: "#3b82f6"}, // 蓝色
		{Name: "购物", Color: "#a855f7"}, // 紫色
		{Name: "娱乐", Color: "#ec4899"}, // 粉色
		{Name: "医疗", Color: "#10b981"}, // 绿色
		{Name: "教育", Color: "#f59e0b"}, // 橙色
		{Name: "住房", Color: "#14b8a6"}, // 青色
		{Name: "其他", Color: "#64748b"}, // 灰色
	}
	return db.Create(&defaults).Error
}

// ensureDirForSQLite 为 sqlite 数据库文件创建父目录
func ensureDirForSQLite(path string) error {
	// 内存数据库无需目录
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据库目录 %q 失败: %w", dir, err)
	}
	return nil
}
