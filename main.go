package main

import (
	"flag"
	"log"
	"strings"

	"expensebook/config"
	"expensebook/database"
	"expensebook/router"
)

// @title 记账本 API
// @version 1.0
// @description 一个简单的个人记账服务，支持消费记录管理、类别管理、月度汇总和数据导出
// @host localhost:8080
// @BasePath /

var (
	configFile  string
	port        string
	showVersion bool
	seedCount   int
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
	flag.IntVar(&seedCount, "seed", 0, "生成指定条数的演示数据后退出")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("记账本 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		// 自动添加冒号前缀
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	// 打印配置信息
	config.PrintConfig()

	// 初始化数据库
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	defer database.Close(db)

	// 生成演示数据后退出
	if seedCount > 0 {
		if err := database.Seed(db, seedCount); err != nil {
			log.Fatalf("生成演示数据失败: %v", err)
		}
		return
	}

	// 设置路由
	r := router.SetupRouter(cfg, db)

	// 启动服务器
	log.Printf("==========================================")
	log.Printf("  💰 记账本已启动")
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
