package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

// RequireAuth verifies a Firebase Bearer ID token and resolves the caller's
// local user record by email.
func RequireAuth(authClient *auth.Client, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Auth is not configured")
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
			}

			decodedToken, err := authClient.VerifyIDToken(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("userUID", decodedToken.UID)
			email, _ := decodedToken.Claims["email"].(string)
			if email != "" {
				c.Set("userEmail", email)

				var user models.User
				if err := db.Where("email = ?", email).First(&user).Error; err == nil {
					c.Set("userID", user.ID)
					c.Set("userType", user.UserType)
				}
			}

			return next(c)
		}
	}
}

// RequireAdmin gates a route to admin users. Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType, _ := c.Get("userType").(models.UserType)
			if userType != models.UserTypeAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
