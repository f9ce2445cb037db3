package handlers

import (
	"net/http"
	"strings"

	"marketplace/models"
	"marketplace/services/booking"
	"marketplace/services/review"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Bookings booking.BookingService
	Reviews  review.ReviewService
}

func NewBookingHandler(bookings booking.BookingService, reviews review.ReviewService) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Reviews: reviews}
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var in booking.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), actorOf(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler accepts providerId, clientId, date and a comma
// separated status filter.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	filter := booking.ListFilter{
		ClientID:   c.Query("clientId"),
		ProviderID: c.Query("providerId"),
		Date:       c.Query("date"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, models.BookingStatus(strings.TrimSpace(s)))
		}
	}
	list, err := h.Bookings.List(c.Request.Context(), actorOf(c), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), actorOf(c), c.Param("id"))
	h.respond(c, b, err)
}

func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	b, err := h.Bookings.Accept(c.Request.Context(), actorOf(c), c.Param("id"))
	h.respond(c, b, err)
}

func (h *BookingHandler) DeclineBookingHandler(c *gin.Context) {
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	b, err := h.Bookings.Decline(c.Request.Context(), actorOf(c), c.Param("id"), req.Reason)
	h.respond(c, b, err)
}

func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	b, err := h.Bookings.Complete(c.Request.Context(), actorOf(c), c.Param("id"))
	h.respond(c, b, err)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	b, err := h.Bookings.CancelByClient(c.Request.Context(), actorOf(c), c.Param("id"), req.Reason)
	h.respond(c, b, err)
}

func (h *BookingHandler) RequestCancellationHandler(c *gin.Context) {
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	b, err := h.Bookings.RequestCancellation(c.Request.Context(), actorOf(c), c.Param("id"), req.Reason)
	h.respond(c, b, err)
}

func (h *BookingHandler) RespondToCancellationHandler(c *gin.Context) {
	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Bookings.RespondToCancellation(c.Request.Context(), actorOf(c), c.Param("id"), *req.Accept)
	h.respond(c, b, err)
}

func (h *BookingHandler) PayBookingFeeHandler(c *gin.Context) {
	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Bookings.PayBookingFee(c.Request.Context(), actorOf(c), c.Param("id"), req.Method)
	h.respond(c, b, err)
}

func (h *BookingHandler) SubmitReviewHandler(c *gin.Context) {
	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rev, err := h.Reviews.Submit(c.Request.Context(), actorOf(c), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

func (h *BookingHandler) respond(c *gin.Context, b *models.Booking, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
