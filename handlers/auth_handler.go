package handlers

import (
	"errors"
	"log"
	"net/http"

	"school-voting-backend/auth"
	"school-voting-backend/database"
	"school-voting-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterInput defines the expected input for user registration.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles POST /api/auth/register. The very first user
// becomes admin so a fresh deployment can bootstrap itself.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if _, err := database.GetUserByEmail(input.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		return
	}

	count, err := database.CountUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		return
	}
	role := models.RoleVoter
	if count == 0 {
		role = models.RoleAdmin
	}

	hash, err := database.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Role:     role,
	}
	if err := database.CreateUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		return
	}

	setSessionCookie(c, &user)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
		"message": "Registration successful",
	})
}

// LoginInput defines the expected input for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email and password are required"})
		return
	}

	user, err := database.AuthenticateUser(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to log in"})
		}
		return
	}

	setSessionCookie(c, user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
		"message": "Login successful",
	})
}

// Logout handles POST /api/auth/logout.
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me handles GET /api/auth/me (requires auth middleware).
func Me(c *gin.Context) {
	claims := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"userId":     claims.UserID,
			"email":      claims.Email,
			"name":       claims.Name,
			"role":       claims.Role,
			"isLoggedIn": true,
		},
	})
}

func setSessionCookie(c *gin.Context, user *models.User) {
	token, err := auth.IssueToken(user)
	if err != nil {
		log.Printf("签发会话令牌失败: %v", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(auth.TokenTTL.Seconds()), "/", "", false, true)
}
