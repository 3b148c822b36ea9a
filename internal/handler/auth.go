package handler

import (
	"net/http"

	"talon/internal/models"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler interface {
	RegisterCanteen(c *gin.Context)
	RegisterTeacher(c *gin.Context)
	Login(c *gin.Context)
	ListCanteens(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, logger: logger}
}

func (h *authHandler) RegisterCanteen(c *gin.Context) {
	var input models.RegisterCanteenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Debug("Failed to bind canteen registration", zap.Error(err))
		badRequest(c, err)
		return
	}

	user, err := h.authService.RegisterCanteen(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

func (h *authHandler) RegisterTeacher(c *gin.Context) {
	var input models.RegisterTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Debug("Failed to bind teacher registration", zap.Error(err))
		badRequest(c, err)
		return
	}

	user, err := h.authService.RegisterTeacher(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

func (h *authHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), input.Login, input.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// ListCanteens is public so that teachers can pick a canteen while signing up.
func (h *authHandler) ListCanteens(c *gin.Context) {
	canteens, err := h.authService.ListCanteens(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if canteens == nil {
		canteens = []models.CanteenSummary{}
	}

	c.JSON(http.StatusOK, canteens)
}
