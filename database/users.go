package database

import (
	"errors"

	"school-voting-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 邮箱或密码错误
var ErrInvalidCredentials = errors.New("invalid email or password")

// HashPassword 生成bcrypt密码散列
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CreateUser 创建用户
func CreateUser(user *models.User) error {
	return DB.Create(user).Error
}

// GetUserByID 根据ID获取用户
func GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱获取用户
func GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers 统计用户数
func CountUsers() (int64, error) {
	var count int64
	err := DB.Model(&models.User{}).Count(&count).Error
	return count, err
}

// AuthenticateUser 校验邮箱和密码
func AuthenticateUser(email, password string) (*models.User, error) {
	user, err := GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
