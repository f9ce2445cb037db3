package handlers

import (
	"net/http"

	"marketplace/models"
	"marketplace/services/subscription"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler serves the caller's own subscription.
type SubscriptionHandler struct {
	Subscriptions subscription.SubscriptionService
}

func NewSubscriptionHandler(svc subscription.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: svc}
}

func (h *SubscriptionHandler) GetSubscriptionHandler(c *gin.Context) {
	sub, err := h.Subscriptions.Get(c.Request.Context(), actorOf(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) SubscribeHandler(c *gin.Context) {
	req := struct {
		Method models.PaymentMethod `json:"method"`
	}{Method: models.PaymentMethodCard}
	if !bindOptional(c, &req) {
		return
	}
	sub, err := h.Subscriptions.Subscribe(c.Request.Context(), actorOf(c), req.Method)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) CancelSubscriptionHandler(c *gin.Context) {
	sub, err := h.Subscriptions.Cancel(c.Request.Context(), actorOf(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
