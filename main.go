package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-voting-backend/cache"
	"school-voting-backend/database"
	"school-voting-backend/handlers"
	"school-voting-backend/routes"

	"github.com/joho/godotenv"
)

func main() {
	// 加载.env文件（不存在则忽略）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到.env文件，使用环境变量")
	}

	// 初始化数据库连接
	if err := database.InitDB(); err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("数据库连接初始化成功")

	// 初始化Redis连接（失败时自动降级为模拟模式）
	if err := cache.InitRedis(); err != nil {
		log.Printf("警告: Redis初始化失败: %v", err)
	}

	// 初始化候选人图片存储
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "public/uploads/candidates"
	}
	if err := handlers.InitUploadStore(uploadDir); err != nil {
		log.Fatalf("无法初始化上传目录: %v", err)
	}

	// 设置路由
	router := routes.SetupRouter()
	log.Println("路由设置完成")

	// 启动服务器
	srv := routes.StartServer(router)
	log.Println("服务器启动成功")

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 不接受新请求并等待现有请求完成
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器强制关闭: %v", err)
	}

	// 关闭数据库和Redis连接
	database.CloseDB()
	cache.CloseRedis()

	log.Println("服务器优雅关闭")
}
