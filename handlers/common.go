package handlers

import (
	"errors"
	"io"
	"net/http"

	"marketplace/apperror"
	"marketplace/middleware"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

// actorOf returns the authenticated caller; routes that call it sit
// behind middleware.Authenticate.
func actorOf(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, apperror.KindInvalidInput, "Invalid request: "+err.Error())
}

// reasonRequest is the optional free-text body of decline and cancel calls.
type reasonRequest struct {
	Reason string `json:"reason"`
}

// bindOptional decodes a body when one was sent.
func bindOptional(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return false
	}
	return true
}
