package main

import (
	"log"

	"github.com/jengzang/workouts-backend-go/internal/api"
	"github.com/jengzang/workouts-backend-go/internal/config"
	"github.com/jengzang/workouts-backend-go/internal/database"
	"github.com/jengzang/workouts-backend-go/internal/elevation"
	"github.com/jengzang/workouts-backend-go/internal/handler"
	"github.com/jengzang/workouts-backend-go/internal/mapimage"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/internal/service"
	"github.com/jengzang/workouts-backend-go/internal/storage"
	"github.com/jengzang/workouts-backend-go/internal/weather"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	// 初始化存储和外部服务
	store := storage.NewStore(cfg.StorageRoot)
	weatherProvider := weather.New(cfg.WeatherProvider, cfg.WeatherAPIKey, cfg.RetryCount, cfg.RetryDelay)
	elevationProvider := elevation.New(cfg.ElevationURL, cfg.RetryCount, cfg.RetryDelay)
	renderer := mapimage.NewStaticMapRenderer()

	// 初始化仓库层
	workoutRepo := repository.NewWorkoutRepository(db)
	sportRepo := repository.NewSportRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	taskRepo := repository.NewImportTaskRepository(db)

	// 初始化服务层
	workoutService := service.NewWorkoutService(
		workoutRepo, sportRepo, store, weatherProvider, elevationProvider, renderer, cfg,
	)
	importService := service.NewImportService(
		workoutService, taskRepo, equipmentRepo, store, service.GoRunner{}, cfg,
	)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Workouts:  handler.NewWorkoutHandler(workoutService, cfg.MaxFileSize),
		Imports:   handler.NewImportHandler(importService, cfg.MaxArchiveSize),
		Sports:    handler.NewSportHandler(sportRepo),
		Equipment: handler.NewEquipmentHandler(equipmentRepo),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
