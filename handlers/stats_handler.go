package handlers

import (
	"log"
	"net/http"
	"time"

	"school-voting-backend/database"

	"github.com/gin-gonic/gin"
)

// DashboardStats handles GET /api/dashboard/stats. The dashboard
// client polls this while its tab is visible, so statuses are
// reconciled against the current time before counting.
func DashboardStats(c *gin.Context) {
	if _, err := database.ReconcileStatuses(time.Now()); err != nil {
		log.Printf("状态对账失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch dashboard stats"})
		return
	}

	stats, err := database.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
