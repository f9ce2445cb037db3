package handlers

import (
	"net/http"

	"marketplace/services/catalog"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves provider service listings.
type CatalogHandler struct {
	Catalog catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: svc}
}

func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	list, err := h.Catalog.ListForProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": c.Param("id"), "services": list})
}

func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var in catalog.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.Catalog.Create(c.Request.Context(), actorOf(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	var in catalog.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.Catalog.Update(c.Request.Context(), actorOf(c), c.Param("serviceId"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteServiceHandler(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), actorOf(c), c.Param("serviceId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
