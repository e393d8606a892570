package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/services"
)

// swapDataTTL keeps browse listings hot without letting stale matches
// linger.
const swapDataTTL = time.Minute

type SwapHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
	swaps *services.SwapService
}

func NewSwapHandler(db *gorm.DB, cache *services.RedisCache, swaps *services.SwapService) *SwapHandler {
	return &SwapHandler{db: db, cache: cache, swaps: swaps}
}

// SwappingData returns the caller's profile, swap candidates for the
// requested branch and semester, and per-section counts.
func (h *SwapHandler) SwappingData(c echo.Context) error {
	branch := c.QueryParam("branch")
	semester, err := strconv.Atoi(c.QueryParam("semester"))
	if err != nil || branch == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "branch and semester are required")
	}
	userID, _ := parseUintParam(c.QueryParam("userId"))

	fetch := func() (*services.SwapData, error) {
		return h.swaps.BrowseData(branch, semester, userID)
	}

	var data *services.SwapData
	if h.cache != nil {
		key := fmt.Sprintf("swapdata:%s:%d:%d", branch, semester, userID)
		data, err = services.GetOrSet(h.cache, c.Request().Context(), key, swapDataTTL, fetch)
	} else {
		data, err = fetch()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, data)
}

// CreateUserProfile registers a swap profile for a user.
func (h *SwapHandler) CreateUserProfile(c echo.Context) error {
	var in services.CreateProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	profile, err := h.swaps.CreateProfile(in)
	if err != nil {
		return err
	}

	h.invalidateSwapData(c)
	return c.JSON(http.StatusCreated, profile)
}

type acceptSwapRequest struct {
	CurrentUserID uint `json:"currentUserId"`
	RemoteUserID  uint `json:"remoteUserId"`
}

// AcceptSwap links two profiles into a match.
func (h *SwapHandler) AcceptSwap(c echo.Context) error {
	var req acceptSwapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.CurrentUserID == 0 || req.RemoteUserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "currentUserId and remoteUserId are required")
	}
	if req.CurrentUserID == req.RemoteUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot swap with yourself")
	}

	current, remote, err := h.swaps.AcceptSwap(req.CurrentUserID, req.RemoteUserID)
	if err != nil {
		return err
	}

	h.invalidateSwapData(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"current": current,
		"remote":  remote,
	})
}

type updateSwapRequest struct {
	UserID     uint  `json:"userId"`
	Alloted    int   `json:"alloted"`
	LookingFor []int `json:"lookingFor"`
}

// UpdateSwapDetails overwrites a profile's allotment and wish-list; each
// successful call burns one edit and an exhausted quota yields 429.
func (h *SwapHandler) UpdateSwapDetails(c echo.Context) error {
	var req updateSwapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	profile, err := h.swaps.UpdateProfile(req.UserID, req.Alloted, req.LookingFor)
	if err != nil {
		return err
	}

	h.invalidateSwapData(c)
	return c.JSON(http.StatusOK, profile)
}

// DeleteSwapByAdmin removes any profile; matched pairs are dissolved and
// both sides deleted.
func (h *SwapHandler) DeleteSwapByAdmin(c echo.Context) error {
	userID, ok := parseUintParam(c.QueryParam("userId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
	}

	if err := h.swaps.DeleteByAdmin(userID); err != nil {
		return err
	}

	h.invalidateSwapData(c)
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Swap profile deleted"})
}

// DeleteSwapByUser removes the caller's own unmatched profile.
func (h *SwapHandler) DeleteSwapByUser(c echo.Context) error {
	userID, ok := parseUintParam(c.QueryParam("userId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
	}

	if err := h.swaps.DeleteBySelf(userID); err != nil {
		return err
	}

	h.invalidateSwapData(c)
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Swap profile deleted"})
}

func (h *SwapHandler) invalidateSwapData(c echo.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeletePattern(c.Request().Context(), "swapdata:*"); err != nil {
		c.Logger().Warnf("failed to invalidate swap data cache: %v", err)
	}
}
