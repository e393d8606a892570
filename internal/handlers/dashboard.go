package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

const dashboardStatsTTL = 5 * time.Minute

type DashboardHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewDashboardHandler(db *gorm.DB, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

// DashboardStats aggregates platform-wide counters for the admin view.
type DashboardStats struct {
	TotalUsers      int64   `json:"total_users"`
	SwapProfiles    int64   `json:"swap_profiles"`
	MatchedProfiles int64   `json:"matched_profiles"`
	PendingFees     int64   `json:"pending_fees"`
	OverdueFees     int64   `json:"overdue_fees"`
	TotalDue        float64 `json:"total_due"`
}

// Stats returns cached platform counters.
func (h *DashboardHandler) Stats(c echo.Context) error {
	fetch := func() (DashboardStats, error) {
		var stats DashboardStats

		if err := h.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
			return stats, err
		}
		if err := h.db.Model(&models.SwapProfile{}).Count(&stats.SwapProfiles).Error; err != nil {
			return stats, err
		}
		if err := h.db.Model(&models.SwapProfile{}).Where("remote_id IS NOT NULL").
			Count(&stats.MatchedProfiles).Error; err != nil {
			return stats, err
		}
		if err := h.db.Model(&models.MaintenanceFee{}).Where("status = ?", models.FeeStatusPending).
			Count(&stats.PendingFees).Error; err != nil {
			return stats, err
		}
		if err := h.db.Model(&models.MaintenanceFee{}).Where("status = ?", models.FeeStatusOverdue).
			Count(&stats.OverdueFees).Error; err != nil {
			return stats, err
		}

		row := h.db.Model(&models.MaintenanceFee{}).
			Where("status IN ?", []models.FeeStatus{models.FeeStatusPending, models.FeeStatusOverdue}).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&stats.TotalDue); err != nil {
			return stats, err
		}

		return stats, nil
	}

	var stats DashboardStats
	var err error
	if h.cache != nil {
		stats, err = services.GetOrSet(h.cache, c.Request().Context(), "dashboard:stats", dashboardStatsTTL, fetch)
	} else {
		stats, err = fetch()
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute stats")
	}

	return c.JSON(http.StatusOK, stats)
}
