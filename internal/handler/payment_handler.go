package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/service"
	"github.com/noah-isme/language-school-api/pkg/response"
)

type paymentService interface {
	CreateIntent(ctx context.Context, req service.PaymentIntentRequest) (*service.PaymentIntentResponse, error)
}

// PaymentHandler exposes the payment intent endpoint.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc paymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// CreateIntent godoc
// @Summary Create payment intent
// @Description Creates a card payment intent for the class price and returns its client secret
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.PaymentIntentRequest true "Price"
// @Success 200 {object} service.PaymentIntentResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 503 {object} response.ErrorBody
// @Router /create_payment_intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req service.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payment intent payload"))
		return
	}
	res, err := h.service.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
