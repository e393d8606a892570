package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

type UserPreferenceHandler struct {
	DB *gorm.DB
}

func NewUserPreferenceHandler(db *gorm.DB) *UserPreferenceHandler {
	return &UserPreferenceHandler{DB: db}
}

// GetUserPreference returns a user's notification preference, falling back
// to the email default when no row exists.
func (h *UserPreferenceHandler) GetUserPreference(c echo.Context) error {
	userID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	var pref models.UserNotifPreference
	err := h.DB.Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			pref = models.UserNotifPreference{
				UserID:             userID,
				Channel:            models.NotificationChannelEmail,
				WhatsappTargetType: models.WhatsappTargetTypePersonal,
			}
		} else {
			return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching preference")
		}
	}

	return c.JSON(http.StatusOK, pref)
}

type preferenceRequest struct {
	Channel            models.NotificationChannel `json:"channel"`
	WhatsappTargetType string                     `json:"whatsapp_target_type"`
	WhatsappGroupID    string                     `json:"whatsapp_group_id"`
}

// UpdateUserPreference upserts a user's notification preference.
func (h *UserPreferenceHandler) UpdateUserPreference(c echo.Context) error {
	userID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req preferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var pref models.UserNotifPreference
	err := h.DB.Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			pref = models.UserNotifPreference{UserID: userID}
		} else {
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		}
	}

	pref.Channel = req.Channel
	pref.WhatsappTargetType = req.WhatsappTargetType
	pref.WhatsappGroupID = req.WhatsappGroupID

	if err := h.DB.Save(&pref).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save preference")
	}

	return c.JSON(http.StatusOK, pref)
}
