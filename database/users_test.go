package database

import (
	"testing"

	"school-voting-backend/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func insertUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Name: "User", Email: email, Password: hash, Role: role}
	if err := CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func TestAuthenticateUser(t *testing.T) {
	newTestDB(t)
	user := insertUser(t, "auth@x.test", "correct-horse", models.RoleVoter)

	got, err := AuthenticateUser("auth@x.test", "correct-horse")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = AuthenticateUser("auth@x.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email maps to the same error, no user enumeration
	_, err = AuthenticateUser("missing@x.test", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByEmail(t *testing.T) {
	newTestDB(t)
	insertUser(t, "lookup@x.test", "password123", models.RoleAdmin)

	user, err := GetUserByEmail("lookup@x.test")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = GetUserByEmail("missing@x.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCountUsers(t *testing.T) {
	newTestDB(t)

	count, err := CountUsers()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	insertUser(t, "one@x.test", "password123", models.RoleVoter)
	insertUser(t, "two@x.test", "password123", models.RoleVoter)

	count, err = CountUsers()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHashPasswordNotPlaintext(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	// Hashing is salted, two hashes of the same input differ
	hash2, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
