package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

type UserHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewUserHandler(db *gorm.DB, cache *services.RedisCache) *UserHandler {
	return &UserHandler{db: db, cache: cache}
}

// ListUsers returns all users
func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

type userRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Branch   string          `json:"branch"`
	UserType models.UserType `json:"user_type"`
}

// CreateUser registers a new user
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Branch:   req.Branch,
		UserType: req.UserType,
	}
	if user.UserType == "" {
		user.UserType = models.UserTypeStudent
	}

	if err := h.db.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

// GetUser returns one user by id
func (h *UserHandler) GetUser(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser updates an existing user
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Branch = req.Branch
	if req.UserType != "" {
		user.UserType = req.UserType
	}

	if err := h.db.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.db.Delete(&models.User{}, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "User deleted"})
}
