package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"school-voting-backend/auth"
	"school-voting-backend/cache"
	"school-voting-backend/database"
	"school-voting-backend/models"
	"school-voting-backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 上传文件存储，由main注入（测试中注入临时目录）
var uploadStore *storage.FileStore

// InitUploadStore 初始化候选人图片存储
func InitUploadStore(dir string) error {
	store, err := storage.NewFileStore(dir)
	if err != nil {
		return err
	}
	uploadStore = store
	return nil
}

// CandidateInput is one detailed candidate entry in a create request.
type CandidateInput struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl"`
}

// CreateSessionInput defines the expected input for creating a voting
// session. Either options or candidates must carry at least two
// entries; when candidates are given, options are derived from their
// names.
type CreateSessionInput struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Slug        string           `json:"slug" binding:"required"`
	StartDate   time.Time        `json:"startDate" binding:"required"`
	EndDate     time.Time        `json:"endDate" binding:"required"`
	Options     []string         `json:"options"`
	Candidates  []CandidateInput `json:"candidates"`
}

// CreateSession handles POST /api/voting/sessions (admin only).
func CreateSession(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "All fields are required"})
		return
	}

	hasCandidates := len(input.Candidates) >= 2
	hasOptions := len(input.Options) >= 2

	if !hasCandidates && !hasOptions {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "At least 2 candidates or options are required",
		})
		return
	}

	if hasCandidates {
		for _, candidate := range input.Candidates {
			if candidate.Name == "" || candidate.Class == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "Candidate name and class are required",
				})
				return
			}
		}
	}

	if !input.StartDate.Before(input.EndDate) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "End date must be after start date",
		})
		return
	}

	exists, err := database.SlugExists(input.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create voting session"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "URL slug already exists. Please choose a different one.",
		})
		return
	}

	// Canonical options list: candidate names in detailed mode.
	labels := input.Options
	if hasCandidates {
		labels = make([]string, len(input.Candidates))
		for i, candidate := range input.Candidates {
			labels[i] = candidate.Name
		}
	}

	optionsJSON, err := json.Marshal(labels)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create voting session"})
		return
	}

	session := models.VotingSession{
		Title:       input.Title,
		Description: input.Description,
		Slug:        input.Slug,
		Status:      models.StatusPending,
		Options:     optionsJSON,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedBy:   auth.CurrentUser(c).UserID,
	}

	if hasCandidates {
		candidatesJSON, err := json.Marshal(input.Candidates)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create voting session"})
			return
		}
		session.Candidates = candidatesJSON
	}

	if err := database.CreateVotingSession(&session); err != nil {
		log.Printf("创建投票活动失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create voting session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    session,
		"message": "Voting session created successfully",
	})
}

// GetSessions handles GET /api/voting/sessions: reconcile statuses
// against the current time, then list everything.
func GetSessions(c *gin.Context) {
	if _, err := database.ReconcileStatuses(time.Now()); err != nil {
		log.Printf("状态对账失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch sessions"})
		return
	}

	sessions, err := database.GetAllVotingSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sessions})
}

// UpdateStatusInput is the PATCH body for a manual status override.
type UpdateStatusInput struct {
	Status models.SessionStatus `json:"status"`
}

// UpdateSessionStatus handles PATCH /api/voting/sessions/:id.
// The override is unconditional; the next reconciliation pass
// re-evaluates the time gates.
func UpdateSessionStatus(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil || !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid status. Must be: pending, active, or completed",
		})
		return
	}

	session, err := database.SetSessionStatus(sessionID, input.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Voting session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update voting session"})
		}
		return
	}

	cache.InvalidateSession(session.Slug)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
		"message": "Voting session status updated successfully",
	})
}

// GetSessionVotes handles GET /api/voting/sessions/:id/votes for the
// admin results view.
func GetSessionVotes(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if _, err := database.GetVotingSessionByID(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Voting session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch votes"})
		}
		return
	}

	votes, err := database.GetVotesBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"votes": votes,
			"count": len(votes),
		},
	})
}

// DeleteSession handles DELETE /api/voting/sessions/:id with cascade
// cleanup. The steps are deliberately independent, not one
// transaction: image cleanup is best-effort and a missing file never
// aborts the deletion; vote rows go before the session row.
func DeleteSession(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := database.GetVotingSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Voting session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete voting session"})
		}
		return
	}

	voteCount, err := database.GetVoteCountBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete voting session"})
		return
	}

	deletedImages := cleanupCandidateImages(session)

	if _, err := database.DeleteVotesBySession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete voting session"})
		return
	}

	rows, err := database.DeleteVotingSession(sessionID)
	if err != nil || rows == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete voting session"})
		return
	}

	cache.InvalidateSession(session.Slug)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voting session deleted successfully",
		"data": gin.H{
			"deletedSessionId": sessionID,
			"deletedVotes":     voteCount,
			"deletedImages":    deletedImages,
		},
	})
}

// cleanupCandidateImages removes managed candidate photos from disk.
// Individual failures are logged and skipped.
func cleanupCandidateImages(session *models.VotingSession) []string {
	deletedImages := []string{}

	candidates, err := session.CandidateList()
	if err != nil {
		log.Printf("解析候选人列表失败，跳过图片清理: %v", err)
		return deletedImages
	}

	for _, candidate := range candidates {
		filename, managed := storage.FilenameFromURL(candidate.PhotoURL)
		if !managed {
			continue
		}
		if err := uploadStore.Delete(filename); err != nil {
			log.Printf("删除候选人图片失败 %s: %v", filename, err)
			continue
		}
		deletedImages = append(deletedImages, filename)
	}

	return deletedImages
}

func sessionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid session ID"})
		return 0, false
	}
	return uint(id), true
}
