package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/workouts-backend-go/internal/config"
	"github.com/jengzang/workouts-backend-go/internal/handler"
	"github.com/jengzang/workouts-backend-go/internal/middleware"
)

// Handlers groups the handler set wired into the router.
type Handlers struct {
	Workouts  *handler.WorkoutHandler
	Imports   *handler.ImportHandler
	Sports    *handler.SportHandler
	Equipment *handler.EquipmentHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(100, time.Minute))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Workouts Backend API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		// 运动记录接口
		workouts := api.Group("/workouts")
		{
			workouts.POST("", h.Workouts.CreateWorkout)
			workouts.GET("", h.Workouts.ListWorkouts)
			workouts.GET("/:uuid", h.Workouts.GetWorkout)
			workouts.GET("/:uuid/segments", h.Workouts.GetWorkoutSegments)
			workouts.POST("/:uuid/refresh", h.Workouts.RefreshWorkout)
			workouts.DELETE("/:uuid", h.Workouts.DeleteWorkout)
		}

		// 批量导入接口
		imports := api.Group("/imports")
		{
			imports.POST("", h.Imports.ImportArchive)
			imports.GET("/:id", h.Imports.GetImportTask)
		}

		// 运动类型接口
		api.GET("/sports", h.Sports.ListSports)

		// 装备接口
		api.POST("/equipment", h.Equipment.CreateEquipment)
	}

	return r
}
