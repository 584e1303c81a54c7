package router

import (
	"net/http"
	"time"

	"expensebook/api"
	"expensebook/config"
	_ "expensebook/docs"
	"expensebook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		expenseHandler := api.NewExpenseHandler(db)
		categoryHandler := api.NewCategoryHandler(db)
		summaryHandler := api.NewSummaryHandler(db)
		exportHandler := api.NewExportHandler(db)

		// 写接口限流
		writeLimit := middleware.WriteRateLimit(60, time.Minute)

		// 消费记录
		expenses := v1.Group("/expenses")
		{
			expenses.GET("", expenseHandler.List)
			expenses.GET("/:id", expenseHandler.Get)
			expenses.POST("", writeLimit, expenseHandler.Create)
			expenses.PUT("/:id", writeLimit, expenseHandler.Update)
			expenses.DELETE("/:id", writeLimit, expenseHandler.Delete)
		}

		// 消费类别
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", writeLimit, categoryHandler.Create)
			categories.DELETE("/:id", writeLimit, categoryHandler.Delete)
		}

		// 月度汇总
		v1.GET("/summary", summaryHandler.GetSummary)

		// 导出
		v1.GET("/export/excel", exportHandler.ExportExcel)
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
