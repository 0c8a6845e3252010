package handler

import (
	"net/http"

	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/streak"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// CheckoutStatusResponse reports the caller's streak.
type CheckoutStatusResponse struct {
	Success           bool `json:"success" example:"true"`
	CheckoutDayStreak int  `json:"checkoutDayStreak" example:"3"`
	DidCheckoutToday  bool `json:"didCheckoutToday" example:"false"`
}

// CheckoutResponse reports the outcome of a check-in.
type CheckoutResponse struct {
	Success    bool   `json:"success" example:"true"`
	Message    string `json:"message" example:"Successfully checked out today"`
	TotalCoins int    `json:"totalCoins" example:"12"`
}

// UpdateUsernameInput is the requested display name.
type UpdateUsernameInput struct {
	Username string `json:"username" example:"knightrider"`
}

// UpdateUsernameResponse returns the renamed account.
type UpdateUsernameResponse struct {
	Success bool            `json:"success" example:"true"`
	Message string          `json:"message" example:"Username updated successfully"`
	User    *models.Account `json:"user"`
}

// RefreshResponse reports a daily reset pass.
type RefreshResponse struct {
	Success        bool   `json:"success" example:"true"`
	Message        string `json:"message" example:"User checkout streaks updated successfully"`
	UsersProcessed int64  `json:"usersProcessed" example:"120"`
}

// endregion

// UserHandler serves check-ins and account settings.
type UserHandler struct {
	streaks  *streak.Service
	accounts *auth.Service
	logger   *zap.Logger
}

func NewUserHandler(streaks *streak.Service, accounts *auth.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{streaks: streaks, accounts: accounts, logger: logger}
}

// GetCheckout godoc
// @Summary      Get check-in status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CheckoutStatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /checkout [get]
func (h *UserHandler) GetCheckout(c *gin.Context) {
	userID, _ := auth.UserID(c)
	status, err := h.streaks.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch checkout state")
		return
	}
	c.JSON(http.StatusOK, CheckoutStatusResponse{
		Success:           true,
		CheckoutDayStreak: status.Streak,
		DidCheckoutToday:  status.CheckedInToday,
	})
}

// PostCheckout godoc
// @Summary      Check in for today
// @Description  Awards 1 point, or 5 on days six and seven of the streak. A second check-in on the same day is refused with success=false.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CheckoutResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /checkout [post]
func (h *UserHandler) PostCheckout(c *gin.Context) {
	userID, _ := auth.UserID(c)
	result, err := h.streaks.CheckIn(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Unable to checkout right now")
		return
	}

	if !result.Accepted {
		c.JSON(http.StatusOK, CheckoutResponse{
			Success:    false,
			Message:    "You checked out today already",
			TotalCoins: result.TotalPoints,
		})
		return
	}
	c.JSON(http.StatusOK, CheckoutResponse{
		Success:    true,
		Message:    "Successfully checked out today",
		TotalCoins: result.TotalPoints,
	})
}

// UpdateUsername godoc
// @Summary      Change display name
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateUsernameInput true "New username"
// @Success      200  {object}  UpdateUsernameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /updateusername [post]
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var input UpdateUsernameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Message: "Username is required"})
		return
	}

	account, err := h.accounts.UpdateUsername(c.Request.Context(), userID, input.Username)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, UpdateUsernameResponse{
		Success: true,
		Message: "Username updated successfully",
		User:    account,
	})
}

// Refresh godoc
// @Summary      Run the daily reset
// @Description  Zeroes the streak of accounts that missed today's check-in and clears every check-in flag. Not served when CHECKIN_RESET_AT schedules the reset in-process.
// @Tags         users
// @Produce      json
// @Param        X-Refresh-Token  header  string  false  "Operator secret, when configured"
// @Success      200  {object}  RefreshResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /refresh [get]
func (h *UserHandler) Refresh(c *gin.Context) {
	processed, err := h.streaks.DailyReset(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user checkout streaks")
		return
	}
	c.JSON(http.StatusOK, RefreshResponse{
		Success:        true,
		Message:        "User checkout streaks updated successfully",
		UsersProcessed: processed,
	})
}
