package handlers

import (
	"net/http"

	"marketplace/models"
	"marketplace/services/availability"
	"marketplace/services/provider"
	"marketplace/services/reliability"
	"marketplace/services/review"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves provider profiles, schedules and registration.
type ProviderHandler struct {
	Providers    provider.ProviderService
	Availability availability.AvailabilityService
	Reliability  reliability.ReliabilityService
	Reviews      review.ReviewService
}

func NewProviderHandler(
	providers provider.ProviderService,
	avail availability.AvailabilityService,
	rel reliability.ReliabilityService,
	reviews review.ReviewService,
) *ProviderHandler {
	return &ProviderHandler{Providers: providers, Availability: avail, Reliability: rel, Reviews: reviews}
}

func (h *ProviderHandler) RegisterProviderHandler(c *gin.Context) {
	var in provider.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Providers.Register(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProviderHandler) RegisterClientHandler(c *gin.Context) {
	var in provider.RegisterClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	client, err := h.Providers.RegisterClient(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	p, err := h.Providers.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProviderHandler) GetSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	slots, err := h.Availability.SlotsFor(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": c.Param("id"), "date": date, "slots": slots})
}

func (h *ProviderHandler) GetAvailabilityHandler(c *gin.Context) {
	rec, err := h.Availability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ProviderHandler) UpdateAvailabilityHandler(c *gin.Context) {
	var in availability.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	actor := actorOf(c)
	rec, err := h.Availability.Update(c.Request.Context(), actor, actor.ID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ProviderHandler) SetSpecialDateHandler(c *gin.Context) {
	var entry models.SpecialDate
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, err)
		return
	}
	actor := actorOf(c)
	rec, err := h.Availability.SetSpecialDate(c.Request.Context(), actor, actor.ID, c.Param("date"), entry)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ProviderHandler) ClearSpecialDateHandler(c *gin.Context) {
	actor := actorOf(c)
	rec, err := h.Availability.ClearSpecialDate(c.Request.Context(), actor, actor.ID, c.Param("date"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ProviderHandler) GetReliabilityHandler(c *gin.Context) {
	st, err := h.Reliability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *ProviderHandler) ListReviewsHandler(c *gin.Context) {
	list, err := h.Reviews.ListForProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

func (h *ProviderHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Providers.UpdateFCMToken(c.Request.Context(), actorOf(c), req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
