package controllers

import (
	"net/http"
	"strings"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	Name                 *string                `json:"name"`
	Address              *string                `json:"address"`
	Phone                *string                `json:"phone"`
	Email                *string                `json:"email" binding:"omitempty,email"`
	DefaultTaxRate       *float64               `json:"defaultTaxRate"`
	DefaultTerms         *string                `json:"defaultTerms"`
	EstimateValidityDays *int                   `json:"estimateValidityDays" binding:"omitempty,min=0,max=365"`
	Branding             map[string]interface{} `json:"branding"`
	SMSNotifications     *bool                  `json:"smsNotifications"`
}

type ProfileController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// GetProfile returns the business profile, creating an empty one on first access
func (pc *ProfileController) GetProfile(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	profile := models.BusinessProfile{UserID: owner}
	if err := pc.DB.Where("user_id = ?", owner).FirstOrCreate(&profile).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	fields := map[string]string{}
	if input.DefaultTaxRate != nil {
		if err := calculator.ValidateTaxRate(*input.DefaultTaxRate); err != nil {
			fields["defaultTaxRate"] = err.(*calculator.FieldError).Message
		}
	}
	if input.Phone != nil && *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
		fields["phone"] = "Invalid phone number format"
	}
	if len(fields) > 0 {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	profile := models.BusinessProfile{UserID: owner}
	if err := pc.DB.Where("user_id = ?", owner).FirstOrCreate(&profile).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	// Update fields
	if input.Name != nil {
		profile.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		profile.Address = *input.Address
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Email != nil {
		profile.Email = *input.Email
	}
	if input.DefaultTaxRate != nil {
		profile.DefaultTaxRate = *input.DefaultTaxRate
	}
	if input.DefaultTerms != nil {
		profile.DefaultTerms = *input.DefaultTerms
	}
	if input.EstimateValidityDays != nil {
		profile.EstimateValidityDays = *input.EstimateValidityDays
	}
	if input.Branding != nil {
		profile.Branding = datatypes.JSONMap(input.Branding)
	}
	if input.SMSNotifications != nil {
		profile.SMSNotifications = *input.SMSNotifications
	}

	if err := pc.DB.Save(&profile).Error; err != nil {
		pc.Log.Error("profile update failed", zap.String("userId", owner.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
