package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"jobsbreeze-backend/config"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Phone           string `json:"phone"`
	BusinessName    string `json:"businessName" binding:"required"`
	BusinessAddress string `json:"businessAddress"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	DB  *gorm.DB
	JWT config.JWTConfig
	// Secure marks the token cookie HTTPS only.
	Secure bool
	Log    *zap.Logger
}

// Register creates the account and its business profile.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	fields := map[string]string{}
	if !utils.ValidateEmail(input.Email) {
		fields["email"] = "Invalid email address"
	}
	if !utils.ValidatePassword(input.Password) {
		fields["password"] = "Password must be at least 8 characters and contain a letter and a digit"
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		fields["phone"] = "Invalid phone number format"
	}
	if len(fields) > 0 {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		Phone:    input.Phone,
		IsActive: true,
	}
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(&user).Error; err != nil {
			return err
		}
		user.Profile = models.BusinessProfile{
			UserID:               user.ID,
			Name:                 strings.TrimSpace(input.BusinessName),
			Address:              input.BusinessAddress,
			Phone:                input.Phone,
			Email:                input.Email,
			EstimateValidityDays: 30,
			SMSNotifications:     true,
		}
		return tx.Create(&user.Profile).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		ac.Log.Error("registration failed", zap.String("email", input.Email), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, ok := ac.issueToken(c, user.ID)
	if !ok {
		return
	}
	ac.Log.Info("user registered", zap.String("userId", user.ID.String()))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, ok := ac.issueToken(c, user.ID)
	if !ok {
		return
	}

	// Update last login
	now := time.Now()
	ac.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie(utils.TokenCookie, "", -1, "/", "", ac.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var user models.User
	if err := ac.DB.Preload("Profile").First(&user, "id = ?", owner).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) issueToken(c *gin.Context, userID uuid.UUID) (string, bool) {
	token, err := utils.GenerateToken(userID, ac.JWT.Secret, ac.JWT.Expiry)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}
	c.SetCookie(utils.TokenCookie, token, int(ac.JWT.Expiry.Seconds()), "/", "", ac.Secure, true)
	return token, true
}
