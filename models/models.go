package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SessionStatus 投票活动状态
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"   // 未开始
	StatusActive    SessionStatus = "active"    // 进行中
	StatusCompleted SessionStatus = "completed" // 已结束
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s SessionStatus) bool {
	return s == StatusPending || s == StatusActive || s == StatusCompleted
}

// User roles
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// User holds credentials and a role; only admins may mutate sessions.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role      string    `gorm:"size:16;not null;default:voter" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Candidate is a detailed option entry: a plain option is just a label,
// a candidate carries name/class/description/photo.
type Candidate struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// VotingSession is a time-bounded poll reachable by its public slug.
// Options always holds the canonical label list; Candidates is set only
// when the session was created in detailed candidate mode, and Options
// is then derived from the candidate names.
type VotingSession struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Slug        string         `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	Status      SessionStatus  `gorm:"size:16;not null;default:pending;index" json:"status"`
	Options     datatypes.JSON `gorm:"not null" json:"options"`
	Candidates  datatypes.JSON `json:"candidates,omitempty"`
	StartDate   time.Time      `gorm:"not null" json:"startDate"`
	EndDate     time.Time      `gorm:"not null" json:"endDate"`
	CreatedBy   uint           `gorm:"not null;index" json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// OptionLabels decodes the canonical option label list.
func (s *VotingSession) OptionLabels() ([]string, error) {
	var labels []string
	if len(s.Options) == 0 {
		return labels, nil
	}
	err := json.Unmarshal(s.Options, &labels)
	return labels, err
}

// CandidateList decodes the detailed candidate list, nil when the
// session uses plain options.
func (s *VotingSession) CandidateList() ([]Candidate, error) {
	if len(s.Candidates) == 0 {
		return nil, nil
	}
	var candidates []Candidate
	err := json.Unmarshal(s.Candidates, &candidates)
	return candidates, err
}

// AllowsCandidate reports whether label is a valid choice for this
// session. Matching is an exact, case-sensitive string comparison
// against candidate names when candidates are present, otherwise
// against the option labels.
func (s *VotingSession) AllowsCandidate(label string) bool {
	if candidates, err := s.CandidateList(); err == nil && len(candidates) > 0 {
		for _, c := range candidates {
			if c.Name == label {
				return true
			}
		}
		return false
	}
	labels, err := s.OptionLabels()
	if err != nil {
		return false
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// Vote is a single ballot. Votes are insert-only: they are never
// updated and only removed en masse when their session is deleted.
// UserID stays nil for anonymous public submissions; voter name and
// email are recorded for audit, not uniqueness.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"not null;index" json:"sessionId"`
	UserID     *uint     `gorm:"index" json:"userId"`
	VoterName  string    `json:"voterName"`
	VoterEmail string    `gorm:"index" json:"voterEmail"`
	Candidate  string    `gorm:"not null" json:"candidate"`
	CreatedAt  time.Time `json:"createdAt"`
}
