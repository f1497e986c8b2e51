package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"testing"
	"time"

	"school-voting-backend/auth"
	"school-voting-backend/database"
	"school-voting-backend/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestEnvironment sets up the Gin router and in-memory SQLite database for testing.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	testing.Init()
	gin.SetMode(gin.TestMode)

	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		// Silence GORM logger for tests unless needed
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	// Assign the test database to the global DB variable
	database.DB = db

	// Migrate the schema
	err = database.DB.AutoMigrate(&models.User{}, &models.VotingSession{}, &models.Vote{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Candidate images go to a per-test temp dir
	if err := InitUploadStore(t.TempDir()); err != nil {
		log.Fatalf("Failed to init upload store: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := database.DB.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	// Setup Router
	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	// Setup Routes (same as in routes/router.go)
	api := router.Group("/api")
	{
		api.GET("/health", HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", Register)
			authGroup.POST("/login", Login)
			authGroup.POST("/logout", Logout)
			authGroup.GET("/me", auth.RequireAuth(), Me)
		}

		sessions := api.Group("/voting/sessions")
		{
			sessions.GET("", auth.RequireAuth(), GetSessions)
			sessions.POST("", auth.RequireAdmin(), CreateSession)
			sessions.PATCH("/:id", auth.RequireAdmin(), UpdateSessionStatus)
			sessions.DELETE("/:id", auth.RequireAdmin(), DeleteSession)
			sessions.GET("/:id/votes", auth.RequireAuth(), GetSessionVotes)
		}

		vote := api.Group("/vote")
		{
			vote.GET("/:slug", GetSessionBySlug)
			vote.POST("/:slug", VoteRateLimitMiddleware(), SubmitVote)
		}

		api.GET("/dashboard/stats", auth.RequireAuth(), DashboardStats)
		api.POST("/upload", auth.RequireAdmin(), UploadCandidateImage)
	}

	return router, db
}

// ClearTables removes all rows between tests.
func ClearTables(db *gorm.DB) {
	// Order matters due to foreign key constraints
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Vote{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.VotingSession{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{})
}

// createTestUser inserts a user with the given role and returns a
// session cookie for it.
func createTestUser(t *testing.T, db *gorm.DB, email, role string) (*models.User, *http.Cookie) {
	t.Helper()

	hash, err := database.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{Name: "Test User", Email: email, Password: hash, Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	token, err := auth.IssueToken(&user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	return &user, &http.Cookie{Name: auth.CookieName, Value: token}
}

func adminCookie(t *testing.T, db *gorm.DB) *http.Cookie {
	t.Helper()
	_, cookie := createTestUser(t, db, "admin@test.local", models.RoleAdmin)
	return cookie
}

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	return datatypes.JSON(data)
}

// createTestSession inserts a session directly, bypassing the handler.
func createTestSession(t *testing.T, db *gorm.DB, slug string, status models.SessionStatus, start, end time.Time, options []string) models.VotingSession {
	t.Helper()

	session := models.VotingSession{
		Title:       "Test Session " + slug,
		Description: "test",
		Slug:        slug,
		Status:      status,
		Options:     mustJSON(t, options),
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   1,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session
}
