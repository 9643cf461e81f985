package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"klinik-app-server/internal/config"
	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Log     zerolog.Logger
	RecNums utils.RecordNumberGenerator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Log: log, RecNums: utils.SequentialRecordNumbers{}}
}

// RegisterRequest represents the request body for patient self-registration.
// Staff accounts (admin, doctor, management) are provisioned through the
// admin user endpoints, never through this route.
type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	FullName         string `json:"fullName" binding:"required"`
	NationalID       string `json:"nationalId" binding:"required" validate:"nik"`
	Gender           string `json:"gender" binding:"required,oneof=M F"`
	DateOfBirth      string `json:"dateOfBirth" binding:"required"` // YYYY-MM-DD
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Insured          bool   `json:"insured"`
	EmergencyContact string `json:"emergencyContact"`
}

// Register handles patient portal signup. If the national ID already belongs
// to a registered patient the new account is linked to that row instead of
// creating a duplicate.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var user models.User
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Where("national_id = ?", req.NationalID).First(&patient).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			now := time.Now()
			recordNumber, genErr := h.RecNums.Next(tx, now)
			if genErr != nil {
				h.Log.Warn().Err(genErr).Msg("record number generator unavailable, using fallback")
				recordNumber = utils.FallbackRecordNumber(now)
			}
			patient = models.Patient{
				NationalID:       req.NationalID,
				RecordNumber:     recordNumber,
				FullName:         req.FullName,
				Gender:           req.Gender,
				DateOfBirth:      dob,
				Address:          req.Address,
				Phone:            req.Phone,
				Insured:          req.Insured,
				EmergencyContact: req.EmergencyContact,
			}
			if err := tx.Create(&patient).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case patient.UserID != nil:
			return gorm.ErrDuplicatedKey
		}

		user = models.User{
			Email:     req.Email,
			FullName:  req.FullName,
			Role:      models.RolePatient,
			PatientID: &patient.ID,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&patient).Update("user_id", user.ID).Error
	})
	if err == gorm.ErrDuplicatedKey {
		utils.BadRequest(c, "A portal account already exists for this national ID")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to register: "+err.Error())
		return
	}

	utils.Created(c, "Patient registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}
	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	// Refresh token also travels as an HTTP-only cookie
	c.SetCookie(
		"refresh_token",
		refreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshTokenString, err := c.Cookie("refresh_token")
	if err != nil || refreshTokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshTokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshTokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	storedToken, err := models.ActiveRefreshToken(h.DB, refreshTokenString, claims.UserID, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.Unauthorized(c, "User for refresh token not found")
		return
	}

	accessToken, newRefreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	// Rotate: revoke the used token, store the new one
	if err := h.DB.Model(storedToken).Update("is_revoked", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke old refresh token: "+err.Error())
		return
	}
	newToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
	}
	if err := h.DB.Create(&newToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	c.SetCookie(
		"refresh_token",
		newRefreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	utils.Success(c, "Token refreshed", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// Logout revokes the caller's refresh tokens and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := models.RevokeRefreshTokens(h.DB, userID); err != nil {
		utils.InternalServerError(c, "Failed to revoke tokens: "+err.Error())
		return
	}

	c.SetCookie("refresh_token", "", -1, "/", "", h.Cfg.Environment != "development", true)
	utils.Success(c, "Logged out", nil)
}

// GetProfile returns the authenticated user's account, with the linked
// patient row preloaded for portal accounts.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	resp := gin.H{"user": user.Sanitize()}
	if user.Patient != nil {
		resp["patient"] = user.Patient
	}
	if user.Doctor != nil {
		resp["doctor"] = user.Doctor
	}
	utils.Success(c, "Profile fetched", resp)
}

// UpdateProfileRequest represents the editable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UpdateProfile updates the caller's contact details. Patient demographic
// fields beyond contact data are managed by clinic staff.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	if user.PatientID != nil && (req.Phone != "" || req.Address != "" || req.FullName != "") {
		updates := map[string]interface{}{}
		if req.FullName != "" {
			updates["full_name"] = req.FullName
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if req.Address != "" {
			updates["address"] = req.Address
		}
		if err := h.DB.Model(&models.Patient{}).Where("id = ?", *user.PatientID).
			Updates(updates).Error; err != nil {
			utils.InternalServerError(c, "Failed to update patient details: "+err.Error())
			return
		}
	}

	utils.Success(c, "Profile updated", user.Sanitize())
}
