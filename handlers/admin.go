package handlers

import (
	"net/http"
	"time"

	"marketplace/models"
	"marketplace/services/booking"
	"marketplace/services/provider"
	"marketplace/services/reliability"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Bookings    booking.BookingService
	Providers   provider.ProviderService
	Reliability reliability.ReliabilityService
}

func NewAdminHandler(bookings booking.BookingService, providers provider.ProviderService, rel reliability.ReliabilityService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Providers: providers, Reliability: rel}
}

func (ah *AdminHandler) ListPendingCancellationsHandler(c *gin.Context) {
	list, err := ah.Bookings.ListPendingCancellations(c.Request.Context(), actorOf(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (ah *AdminHandler) ResolveCancellationHandler(c *gin.Context) {
	var req struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := ah.Bookings.ResolveCancellation(c.Request.Context(), actorOf(c), c.Param("id"), *req.Approve)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	zap.L().Info("admin resolved cancellation", zap.String("bookingID", b.ID), zap.Bool("approved", *req.Approve))
	c.JSON(http.StatusOK, b)
}

func (ah *AdminHandler) GetAllProvidersHandler(c *gin.Context) {
	providers, err := ah.Providers.ListProviders(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if providers == nil {
		providers = []models.Provider{}
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

func (ah *AdminHandler) VerifyProviderHandler(c *gin.Context) {
	p, err := ah.Providers.Verify(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ah *AdminHandler) SetScoreHandler(c *gin.Context) {
	var req struct {
		Score *int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := ah.Reliability.SetScore(c.Request.Context(), actorOf(c), c.Param("id"), *req.Score)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (ah *AdminHandler) ResetRestrictionsHandler(c *gin.Context) {
	st, err := ah.Reliability.ResetRestrictions(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// SuspendAccountHandler handles /admin/accounts/:role/:id/suspend for
// clients and providers.
func (ah *AdminHandler) SuspendAccountHandler(c *gin.Context) {
	var req struct {
		Reason string     `json:"reason" binding:"required"`
		Until  *time.Time `json:"until"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	target := models.Actor{ID: c.Param("id"), Role: models.Role(c.Param("role"))}
	if err := ah.Providers.Suspend(c.Request.Context(), actorOf(c), target, req.Reason, req.Until); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ah *AdminHandler) ReinstateAccountHandler(c *gin.Context) {
	target := models.Actor{ID: c.Param("id"), Role: models.Role(c.Param("role"))}
	if err := ah.Providers.Reinstate(c.Request.Context(), actorOf(c), target); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
