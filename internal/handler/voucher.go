package handler

import (
	"net/http"

	"talon/internal/middleware"
	"talon/internal/models"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoucherHandler interface {
	Submit(c *gin.Context)
	ListRecent(c *gin.Context)
}

type voucherHandler struct {
	voucherService service.VoucherService
	logger         *zap.Logger
}

func NewVoucherHandler(voucherService service.VoucherService, logger *zap.Logger) VoucherHandler {
	return &voucherHandler{voucherService: voucherService, logger: logger}
}

func (h *voucherHandler) Submit(c *gin.Context) {
	teacher, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	var input models.SubmitVoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	voucher, err := h.voucherService.Submit(c.Request.Context(), teacher, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, voucher.Out())
}

func (h *voucherHandler) ListRecent(c *gin.Context) {
	teacher, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	vouchers, err := h.voucherService.ListRecent(c.Request.Context(), teacher)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]models.VoucherOut, 0, len(vouchers))
	for i := range vouchers {
		out = append(out, vouchers[i].Out())
	}
	c.JSON(http.StatusOK, out)
}
