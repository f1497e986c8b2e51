package database

import (
	"time"

	"school-voting-backend/models"
)

// DashboardStats 仪表盘统计数据
type DashboardStats struct {
	TotalSessions     int64 `json:"totalSessions"`
	ActiveSessions    int64 `json:"activeSessions"`
	PendingSessions   int64 `json:"pendingSessions"`
	CompletedSessions int64 `json:"completedSessions"`
	TotalVotes        int64 `json:"totalVotes"`
}

// CreateVotingSession 创建投票活动
func CreateVotingSession(session *models.VotingSession) error {
	return DB.Create(session).Error
}

// GetAllVotingSessions 获取全部投票活动
func GetAllVotingSessions() ([]models.VotingSession, error) {
	var sessions []models.VotingSession
	err := DB.Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

// GetVotingSessionByID 根据ID获取投票活动
func GetVotingSessionByID(id uint) (*models.VotingSession, error) {
	var session models.VotingSession
	if err := DB.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetVotingSessionBySlug 根据slug获取投票活动
func GetVotingSessionBySlug(slug string) (*models.VotingSession, error) {
	var session models.VotingSession
	if err := DB.Where("slug = ?", slug).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// SlugExists 检查slug是否已被占用
func SlugExists(slug string) (bool, error) {
	var count int64
	err := DB.Model(&models.VotingSession{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ReconcileStatuses brings session statuses in line with the clock.
// Two passes, in order: pending sessions whose start date has passed
// become active, then active sessions whose end date has passed become
// completed. The second pass re-reads statuses, so a session whose
// start and end are both behind now moves pending->active->completed
// within a single call and counts two transitions. Completed sessions
// are never touched.
//
// now is injected by the caller; there is no background invocation.
// Concurrent calls race benignly: both attempt the same idempotent
// overwrite.
func ReconcileStatuses(now time.Time) (int, error) {
	updated := 0

	var pending []models.VotingSession
	if err := DB.Where("status = ?", models.StatusPending).Find(&pending).Error; err != nil {
		return updated, err
	}
	for i := range pending {
		if !pending[i].StartDate.After(now) {
			if err := DB.Model(&pending[i]).Update("status", models.StatusActive).Error; err != nil {
				return updated, err
			}
			updated++
		}
	}

	var active []models.VotingSession
	if err := DB.Where("status = ?", models.StatusActive).Find(&active).Error; err != nil {
		return updated, err
	}
	for i := range active {
		if !active[i].EndDate.After(now) {
			if err := DB.Model(&active[i]).Update("status", models.StatusCompleted).Error; err != nil {
				return updated, err
			}
			updated++
		}
	}

	return updated, nil
}

// SetSessionStatus 管理员直接覆盖投票活动状态
//
// No forward-only validation: an admin may move a completed session
// back to active. The next reconciliation pass re-evaluates the time
// gates.
func SetSessionStatus(id uint, status models.SessionStatus) (*models.VotingSession, error) {
	var session models.VotingSession
	if err := DB.First(&session, id).Error; err != nil {
		return nil, err
	}
	if err := DB.Model(&session).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteVotingSession 删除投票活动行
func DeleteVotingSession(id uint) (int64, error) {
	result := DB.Delete(&models.VotingSession{}, id)
	return result.RowsAffected, result.Error
}

// DeleteVotesBySession 删除某活动的全部选票
func DeleteVotesBySession(sessionID uint) (int64, error) {
	result := DB.Where("session_id = ?", sessionID).Delete(&models.Vote{})
	return result.RowsAffected, result.Error
}

// CreateVote 写入一条选票
func CreateVote(vote *models.Vote) error {
	return DB.Create(vote).Error
}

// GetVotesBySession 获取某活动的全部选票
func GetVotesBySession(sessionID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := DB.Where("session_id = ?", sessionID).Find(&votes).Error
	return votes, err
}

// GetVoteCountBySession 获取某活动的选票数
func GetVoteCountBySession(sessionID uint) (int64, error) {
	var count int64
	err := DB.Model(&models.Vote{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// HasUserVoted 检查某用户是否已在该活动中投过票
//
// Kiosk voting: the public submission path deliberately does NOT call
// this. Kept for admin-side reporting.
func HasUserVoted(sessionID, userID uint) (bool, error) {
	var count int64
	err := DB.Model(&models.Vote{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}

// HasEmailVoted 检查某邮箱是否已在该活动中投过票
//
// Same caveat as HasUserVoted: not part of the public submission path.
func HasEmailVoted(sessionID uint, email string) (bool, error) {
	var count int64
	err := DB.Model(&models.Vote{}).
		Where("session_id = ? AND voter_email = ?", sessionID, email).
		Count(&count).Error
	return count > 0, err
}

// GetDashboardStats 计算仪表盘统计数据
//
// Pure read: callers wanting time-accurate numbers run
// ReconcileStatuses first.
func GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := DB.Model(&models.VotingSession{}).Count(&stats.TotalSessions).Error; err != nil {
		return nil, err
	}

	byStatus := func(status models.SessionStatus, dst *int64) error {
		return DB.Model(&models.VotingSession{}).Where("status = ?", status).Count(dst).Error
	}
	if err := byStatus(models.StatusActive, &stats.ActiveSessions); err != nil {
		return nil, err
	}
	if err := byStatus(models.StatusPending, &stats.PendingSessions); err != nil {
		return nil, err
	}
	if err := byStatus(models.StatusCompleted, &stats.CompletedSessions); err != nil {
		return nil, err
	}

	if err := DB.Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
