package handlers

import (
	"errors"
	"net/http"
	"time"

	"school-voting-backend/cache"
	"school-voting-backend/database"
	"school-voting-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PublicSession is the payload exposed to unauthenticated voters.
// The full record (status, creator, bookkeeping) stays internal; the
// status gate only surfaces a rejection reason.
type PublicSession struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Slug        string             `json:"slug"`
	Candidates  []models.Candidate `json:"candidates,omitempty"`
	Options     []string           `json:"options"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
}

// GetSessionBySlug handles GET /api/vote/:slug (public).
func GetSessionBySlug(c *gin.Context) {
	slug := c.Param("slug")

	if data, ok := cache.GetCachedSessionPayload(slug); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	session, err := database.GetVotingSessionBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Voting session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch voting session"})
		}
		return
	}

	if session.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   closedReason(session.Status),
			"status":  session.Status,
		})
		return
	}

	options, err := session.OptionLabels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch voting session"})
		return
	}
	candidates, err := session.CandidateList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch voting session"})
		return
	}

	payload := gin.H{
		"success": true,
		"data": PublicSession{
			ID:          session.ID,
			Title:       session.Title,
			Description: session.Description,
			Slug:        session.Slug,
			Candidates:  candidates,
			Options:     options,
			StartDate:   session.StartDate,
			EndDate:     session.EndDate,
		},
	}

	cache.CacheSessionPayload(slug, payload)
	c.JSON(http.StatusOK, payload)
}

// SubmitVoteInput defines the expected input for a public vote.
// Voter name and email are recorded for audit only.
type SubmitVoteInput struct {
	Candidate  string `json:"candidate" binding:"required"`
	VoterName  string `json:"voterName" binding:"required"`
	VoterEmail string `json:"voterEmail" binding:"required"`
}

// SubmitVote handles POST /api/vote/:slug (public, no authentication).
//
// Kiosk voting: repeated submissions from the same voter all succeed.
// There is deliberately no duplicate check here.
func SubmitVote(c *gin.Context) {
	slug := c.Param("slug")

	var input SubmitVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Candidate, voter name, and email are required",
		})
		return
	}

	// The submit path always reads the store directly; the payload
	// cache is for the public GET only.
	session, err := database.GetVotingSessionBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Voting session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to submit vote"})
		}
		return
	}

	if session.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   closedReason(session.Status),
			"status":  session.Status,
		})
		return
	}

	if !session.AllowsCandidate(input.Candidate) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid candidate selection"})
		return
	}

	vote := models.Vote{
		SessionID:  session.ID,
		UserID:     nil, // anonymous public submission
		VoterName:  input.VoterName,
		VoterEmail: input.VoterEmail,
		Candidate:  input.Candidate,
	}

	if err := database.CreateVote(&vote); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to submit vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
		"message": "Vote submitted successfully",
	})
}

func closedReason(status models.SessionStatus) string {
	switch status {
	case models.StatusPending:
		return "Voting has not started yet"
	case models.StatusCompleted:
		return "Voting has ended"
	default:
		return "Voting session is not available"
	}
}
