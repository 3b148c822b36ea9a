package handler

import (
	"net/http"

	"talon/internal/middleware"
	"talon/internal/models"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler interface {
	GetMe(c *gin.Context)
	UpdateMe(c *gin.Context)
}

type profileHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewProfileHandler(authService service.AuthService, logger *zap.Logger) ProfileHandler {
	return &profileHandler{authService: authService, logger: logger}
}

func (h *profileHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

func (h *profileHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	var input models.ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, updated.Public())
}
