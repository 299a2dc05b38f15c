package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"playvisit/models"
	"playvisit/services/registry"
	"playvisit/services/session"
	"playvisit/utils"
)

var (
	clientIDPattern = regexp.MustCompile(`^\d{4}$`)
	passwordPattern = regexp.MustCompile(`^\d{6}$`)
)

// ClientHandler exposes the client login/logout edge of the conversation.
type ClientHandler struct {
	Registry registry.RegistryService
	Sessions session.Store
	Logger   *zap.Logger
}

func NewClientHandler(reg registry.RegistryService, sessions session.Store, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{Registry: reg, Sessions: sessions, Logger: logger}
}

// LoginHandler validates credentials and seeds the session with the login
// identity. The response carries everything the controller needs to render
// the visit menu.
func (h *ClientHandler) LoginHandler(c *gin.Context) {
	var input struct {
		UserID   string `json:"userId" binding:"required"`
		ClientID string `json:"clientId" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !clientIDPattern.MatchString(input.ClientID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id must be a 4-digit number"})
		return
	}
	if !passwordPattern.MatchString(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be a 6-digit number"})
		return
	}

	ctx := c.Request.Context()
	client, err := h.Registry.ValidateCredentials(ctx, input.ClientID, input.Password)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client id or password"})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "login failed", err.Error())
		return
	}

	if err := h.Sessions.Set(ctx, input.UserID, models.SessionKeyLoginID, client.ID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "login failed", err.Error())
		return
	}
	// Independent key writes; a crash between them leaves a partially
	// populated session the controller treats as "not logged in yet".
	_ = h.Sessions.Set(ctx, input.UserID, models.SessionKeyValidated, "1")
	if err := h.Sessions.BindClient(ctx, input.UserID, client.ID); err != nil {
		h.Logger.Warn("login: failed to bind client session", zap.String("clientID", client.ID), zap.Error(err))
	}
	if err := session.SetStep(ctx, h.Sessions, input.UserID, models.StepActive); err != nil {
		h.Logger.Warn("login: failed to record step", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"clientId":        client.ID,
		"fullName":        client.FullName,
		"packageType":     client.PackageType,
		"visitsRemaining": client.VisitsRemaining,
		"nextVisit":       client.NextVisit(),
		"expireDate":      client.ExpireDate.Format(models.VisitDateLayout),
	})
}

// LogoutHandler removes the whole session. The only full reset.
func (h *ClientHandler) LogoutHandler(c *gin.Context) {
	var input struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Sessions.Delete(c.Request.Context(), input.UserID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "logout failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
