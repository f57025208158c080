package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"easybook/models"
	"easybook/services/catalog"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// ServiceHandler serves the catalog under /api/services.
type ServiceHandler struct {
	Catalog catalog.CatalogService
}

func NewServiceHandler(svc catalog.CatalogService) *ServiceHandler {
	return &ServiceHandler{Catalog: svc}
}

func floatQuery(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: key, Message: key + " must be a non-negative number"})
	}
	return &v, nil
}

func (h *ServiceHandler) List(c *gin.Context) {
	filter := models.ServiceFilter{
		Category: models.Category(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		SortBy:   c.Query("sortBy"),
		SortAsc:  strings.EqualFold(c.Query("sortOrder"), "asc"),
	}
	var err error
	if filter.MinPrice, err = floatQuery(c, "minPrice"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if filter.MaxPrice, err = floatQuery(c, "maxPrice"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if filter.MinRating, err = floatQuery(c, "rating"); err != nil {
		utils.RespondError(c, err)
		return
	}

	page := pageFrom(c, 10, 50)
	services, total, err := h.Catalog.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "services", services, page, total)
}

func (h *ServiceHandler) ByCategory(c *gin.Context) {
	page := pageFrom(c, 20, 50)
	services, total, err := h.Catalog.ByCategory(c.Request.Context(), c.Param("category"), c.Query("sort"), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "services", services, page, total)
}

func (h *ServiceHandler) Categories(c *gin.Context) {
	utils.RespondOK(c, http.StatusOK, "", gin.H{"categories": h.Catalog.Categories()})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"service": svc})
}

func (h *ServiceHandler) Mine(c *gin.Context) {
	page := pageFrom(c, 10, 50)
	services, total, err := h.Catalog.Mine(c.Request.Context(), actorFrom(c).ID, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "services", services, page, total)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req models.ServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Catalog.Create(c.Request.Context(), actorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Service created successfully", gin.H{"service": svc})
}

func (h *ServiceHandler) Update(c *gin.Context) {
	var req models.ServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Catalog.Update(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Service updated successfully", gin.H{"service": svc})
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Service deleted successfully", nil)
}
