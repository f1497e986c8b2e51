package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func jsonField(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return datatypes.JSON(data)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusCompleted))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestAllowsCandidateOptionsMode(t *testing.T) {
	session := VotingSession{Options: jsonField(t, []string{"Alice", "Bob"})}

	assert.True(t, session.AllowsCandidate("Alice"))
	assert.True(t, session.AllowsCandidate("Bob"))
	assert.False(t, session.AllowsCandidate("Carol"))
	// Matching is exact and case-sensitive
	assert.False(t, session.AllowsCandidate("alice"))
	assert.False(t, session.AllowsCandidate("Alice "))
}

func TestAllowsCandidateDetailedMode(t *testing.T) {
	session := VotingSession{
		Options: jsonField(t, []string{"Alice", "Bob"}),
		Candidates: jsonField(t, []Candidate{
			{Name: "Alice", Class: "3A"},
			{Name: "Bob", Class: "3B"},
		}),
	}

	assert.True(t, session.AllowsCandidate("Alice"))
	// Class is not a votable label
	assert.False(t, session.AllowsCandidate("3A"))
}

func TestAllowsCandidateEmpty(t *testing.T) {
	session := VotingSession{}
	assert.False(t, session.AllowsCandidate("Alice"))
}

func TestCandidateListPlainSession(t *testing.T) {
	session := VotingSession{Options: jsonField(t, []string{"Yes", "No"})}

	candidates, err := session.CandidateList()
	assert.NoError(t, err)
	assert.Nil(t, candidates)

	labels, err := session.OptionLabels()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Yes", "No"}, labels)
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	user := User{Name: "U", Email: "u@x.test", Password: "bcrypt-hash", Role: RoleVoter}

	data, err := json.Marshal(user)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "bcrypt-hash")
	assert.NotContains(t, string(data), "password")
}
