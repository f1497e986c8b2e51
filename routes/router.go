package routes

import (
	"log"
	"net/http"
	"os"
	"time"

	"school-voting-backend/auth"
	"school-voting-backend/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// SetupRouter 设置和配置Gin路由
//
// 没有后台定时任务：状态对账由列表和仪表盘请求内联触发，
// 仪表盘前端按固定间隔轮询。
func SetupRouter() *gin.Engine {
	router := gin.Default()

	// 配置CORS中间件
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // 生产环境中应限制为前端域名
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 初始化限流器
	handlers.InitRateLimiters()

	// 候选人图片静态目录
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "public/uploads/candidates"
	}
	router.Static("/uploads/candidates", uploadDir)

	// 定义API路由
	api := router.Group("/api")
	{
		// 健康检查端点
		api.GET("/health", handlers.HealthCheck)
		api.GET("/status", handlers.SystemStatus)

		// 账号端点
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handlers.Register)
			authGroup.POST("/login", handlers.Login)
			authGroup.POST("/logout", handlers.Logout)
			authGroup.GET("/me", auth.RequireAuth(), handlers.Me)
		}

		// 投票活动管理端点（需要登录，写操作需要管理员）
		sessions := api.Group("/voting/sessions")
		{
			sessions.GET("", auth.RequireAuth(), handlers.GetSessions)
			sessions.POST("", auth.RequireAdmin(), handlers.CreateSession)
			sessions.PATCH("/:id", auth.RequireAdmin(), handlers.UpdateSessionStatus)
			sessions.DELETE("/:id", auth.RequireAdmin(), handlers.DeleteSession)
			sessions.GET("/:id/votes", auth.RequireAuth(), handlers.GetSessionVotes)
		}

		// 公开投票端点
		vote := api.Group("/vote")
		{
			vote.GET("/:slug", handlers.GetSessionBySlug)
			vote.POST("/:slug", handlers.VoteRateLimitMiddleware(), handlers.SubmitVote)
		}

		// 仪表盘统计
		api.GET("/dashboard/stats", auth.RequireAuth(), handlers.DashboardStats)

		// 候选人图片上传
		api.POST("/upload", auth.RequireAdmin(), handlers.UploadCandidateImage)
	}

	return router
}

// StartServer 启动HTTP服务器
func StartServer(router *gin.Engine) *Server {
	// 从环境变量获取端口，默认为8090
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8090" // 默认端口
	}

	addr := ":" + port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		log.Printf("服务器启动在 %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	return srv
}
