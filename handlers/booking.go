package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"playvisit/middleware"
	"playvisit/models"
	"playvisit/services/capacity"
	"playvisit/services/ledger"
	"playvisit/services/session"
	"playvisit/utils"
)

// BookingHandler exposes the booking edge of the conversation.
type BookingHandler struct {
	Ledger   ledger.Engine
	Sessions session.Store
	Logger   *zap.Logger
}

func NewBookingHandler(eng ledger.Engine, sessions session.Store, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Ledger: eng, Sessions: sessions, Logger: logger}
}

// AvailabilityHandler renders the advisory snapshot the controller shows
// before a confirm. It reserves nothing.
func (h *BookingHandler) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse(models.VisitDateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}
	packageType, err := strconv.Atoi(c.Query("package"))
	if err != nil || !capacity.Known(packageType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown package type"})
		return
	}

	statuses, err := h.Ledger.AvailabilityFor(c.Request.Context(), date, packageType)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read availability", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "package": packageType, "periods": statuses})
}

// BookHandler commits a visit for the logged-in client of the session.
// Every precondition failure is terminal for this request but keeps the
// session alive so the controller can let the user pick again.
func (h *BookingHandler) BookHandler(c *gin.Context) {
	var input struct {
		UserID      string `json:"userId" binding:"required"`
		VisitNumber int    `json:"visitNumber" binding:"required"`
		Date        string `json:"date" binding:"required"`
		Period      string `json:"period" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := time.Parse(models.VisitDateLayout, input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	clientID, ok, err := h.Sessions.Get(ctx, input.UserID, models.SessionKeyLoginID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "booking failed", err.Error())
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in", "code": "SESSION_ABSENT"})
		return
	}

	entry, err := h.Ledger.AttemptBook(ctx, clientID, input.VisitNumber, input.Date, input.Period)
	if err != nil {
		h.rejectBooking(c, err)
		return
	}
	middleware.BookingsTotal.WithLabelValues("success").Inc()

	// Drop the transient booking keys; login identity survives unless the
	// package is exhausted, in which case the ledger already removed the
	// whole session.
	if err := h.Sessions.ClearKeys(ctx, input.UserID, models.SessionBookingKeys...); err != nil {
		h.Logger.Warn("book: failed to clear booking keys", zap.String("userID", input.UserID), zap.Error(err))
	}
	if err := session.SetStep(ctx, h.Sessions, input.UserID, models.StepActive); err != nil {
		h.Logger.Warn("book: failed to record step", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"visit":  entry,
		"status": "booked",
	})
}

func (h *BookingHandler) rejectBooking(c *gin.Context, err error) {
	var outOfOrder *ledger.OutOfOrderVisitError
	switch {
	case errors.As(err, &outOfOrder):
		middleware.BookingsTotal.WithLabelValues("out_of_order").Inc()
		c.JSON(http.StatusConflict, gin.H{
			"error":    outOfOrder.Error(),
			"code":     "OUT_OF_ORDER",
			"expected": outOfOrder.Expected,
		})
	case errors.Is(err, ledger.ErrClientInactive):
		middleware.BookingsTotal.WithLabelValues("inactive").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "CLIENT_INACTIVE"})
	case errors.Is(err, ledger.ErrPeriodElapsed):
		middleware.BookingsTotal.WithLabelValues("elapsed").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PERIOD_ELAPSED"})
	case errors.Is(err, ledger.ErrPeriodFull):
		middleware.BookingsTotal.WithLabelValues("full").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PERIOD_FULL"})
	case errors.Is(err, ledger.ErrUnknownPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "UNKNOWN_PERIOD"})
	default:
		middleware.BookingsTotal.WithLabelValues("error").Inc()
		utils.JSONError(c, http.StatusInternalServerError, "booking failed", err.Error())
	}
}
