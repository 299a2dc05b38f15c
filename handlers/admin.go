package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"playvisit/config"
	"playvisit/models"
	"playvisit/services/capacity"
	"playvisit/services/ledger"
	"playvisit/services/registry"
	"playvisit/utils"
)

const (
	adminTokenTTL        = 24 * time.Hour
	availabilityHorizon  = 30
	availabilityPageSize = 5
	availabilityCacheTTL = 30 * time.Second
)

// AdminHandler exposes the administrator surface: enrollment, the roster,
// the paged availability listing and the audited manual booking.
type AdminHandler struct {
	Registry registry.RegistryService
	Ledger   ledger.Engine
	Cache    AvailabilityCache
	Logger   *zap.Logger
}

func NewAdminHandler(reg registry.RegistryService, eng ledger.Engine, cache AvailabilityCache, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Registry: reg, Ledger: eng, Cache: cache, Logger: logger}
}

// LoginHandler checks the configured admin credentials and mints a token.
func (h *AdminHandler) LoginHandler(c *gin.Context) {
	var input struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if input.Login != config.AppConfig.AdminLogin ||
		bcrypt.CompareHashAndPassword([]byte(config.AppConfig.AdminPasswordHash), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
		return
	}

	token, err := utils.GenerateToken(input.Login, "admin", adminTokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// CreateClientHandler enrolls a client and returns the minted credentials.
func (h *AdminHandler) CreateClientHandler(c *gin.Context) {
	var input struct {
		FullName    string `json:"fullName" binding:"required"`
		Phone       string `json:"phone" binding:"required"`
		Children    int    `json:"children" binding:"gte=0"`
		PackageType int    `json:"packageType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !capacity.Known(input.PackageType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown package type"})
		return
	}

	client, err := h.Registry.Create(c.Request.Context(), input.FullName, input.Phone, input.Children, input.PackageType)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "enrollment failed", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"clientId":   client.ID,
		"password":   client.Secret,
		"startDate":  client.StartDate.Format(models.VisitDateLayout),
		"expireDate": client.ExpireDate.Format(models.VisitDateLayout),
	})
}

// ListClientsHandler returns the roster with credentials and remaining
// visits, the admin's "client list" view.
func (h *AdminHandler) ListClientsHandler(c *gin.Context) {
	clients, err := h.Registry.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list clients", err.Error())
		return
	}

	out := make([]gin.H, 0, len(clients))
	for _, cl := range clients {
		out = append(out, gin.H{
			"clientId":        cl.ID,
			"password":        cl.Secret,
			"fullName":        cl.FullName,
			"phone":           cl.Phone,
			"children":        cl.Children,
			"packageType":     cl.PackageType,
			"visitsRemaining": cl.VisitsRemaining,
			"expireDate":      cl.ExpireDate.Format(models.VisitDateLayout),
		})
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// DeactivateClientHandler removes a client and its session; the visit log
// is retained.
func (h *AdminHandler) DeactivateClientHandler(c *gin.Context) {
	clientID := c.Param("id")
	err := h.Registry.Deactivate(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, registry.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "deactivation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated", "clientId": clientID})
}

// PurgeVisitsHandler removes a client's visit log rows. Separate from
// deactivation on purpose: it releases the capacity those rows held.
func (h *AdminHandler) PurgeVisitsHandler(c *gin.Context) {
	clientID := c.Param("id")
	removed, err := h.Registry.PurgeVisits(c.Request.Context(), clientID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "purge failed", err.Error())
		return
	}
	h.Logger.Info("visit log purged",
		zap.String("clientID", clientID),
		zap.Int64("removed", removed),
		zap.String("actor", c.GetString("adminSubject")))
	c.JSON(http.StatusOK, gin.H{"status": "purged", "removed": removed})
}

// AvailabilityHandler renders the paged multi-day listing across every
// package layout, five days per page over a 30-day horizon.
func (h *AdminHandler) AvailabilityHandler(c *gin.Context) {
	page := 0
	if p := c.Query("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a non-negative integer"})
			return
		}
		page = parsed
	}
	start := page * availabilityPageSize
	if start >= availabilityHorizon {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page beyond availability horizon"})
		return
	}

	ctx := c.Request.Context()
	today := time.Now()
	var days []gin.H
	for i := start; i < start+availabilityPageSize && i < availabilityHorizon; i++ {
		date := today.AddDate(0, 0, i).Format(models.VisitDateLayout)
		periods := make(map[string][]models.PeriodStatus)
		for _, pkg := range capacity.PackageTypes() {
			statuses, err := h.availabilityFor(ctx, date, pkg)
			if err != nil {
				utils.JSONError(c, http.StatusInternalServerError, "failed to read availability", err.Error())
				return
			}
			periods[strconv.Itoa(pkg)] = statuses
		}
		days = append(days, gin.H{"date": date, "packages": periods})
	}

	c.JSON(http.StatusOK, gin.H{
		"page":     page,
		"pageSize": availabilityPageSize,
		"horizon":  availabilityHorizon,
		"days":     days,
	})
}

// availabilityFor reads one (date, package) snapshot through the cache. The
// 30-day listing issues up to 9 occupancy counts per rendered day; cache
// misses fall through to the ledger and a failed cache write only costs the
// next reader a recount.
func (h *AdminHandler) availabilityFor(ctx context.Context, date string, pkg int) ([]models.PeriodStatus, error) {
	if h.Cache == nil {
		return h.Ledger.AvailabilityFor(ctx, date, pkg)
	}

	key := fmt.Sprintf("availability:%s:%d", date, pkg)
	if cached, ok, err := h.Cache.Get(ctx, key); err == nil && ok {
		var statuses []models.PeriodStatus
		if err := json.Unmarshal([]byte(cached), &statuses); err == nil {
			return statuses, nil
		}
	} else if err != nil {
		h.Logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
	}

	statuses, err := h.Ledger.AvailabilityFor(ctx, date, pkg)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(statuses); err == nil {
		if err := h.Cache.Set(ctx, key, string(encoded), availabilityCacheTTL); err != nil {
			h.Logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return statuses, nil
}

// ManualBookHandler records a walk-in booking under the acting admin's name.
func (h *AdminHandler) ManualBookHandler(c *gin.Context) {
	var input struct {
		Date        string `json:"date" binding:"required"`
		Period      string `json:"period" binding:"required"`
		PackageType int    `json:"packageType" binding:"required"`
		Children    int    `json:"children"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := time.Parse(models.VisitDateLayout, input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}

	actor := c.GetString("adminSubject")
	entry, err := h.Ledger.ManualBook(c.Request.Context(), actor, input.Date, input.Period, input.PackageType, input.Children)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrPeriodFull):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PERIOD_FULL"})
		case errors.Is(err, ledger.ErrPeriodElapsed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PERIOD_ELAPSED"})
		case errors.Is(err, ledger.ErrUnknownPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "UNKNOWN_PERIOD"})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "manual booking failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"visit": entry, "status": "booked"})
}
