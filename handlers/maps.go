package handlers

import (
	"net/http"

	"easybook/models"
	"easybook/services/maps"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// MapsHandler serves /api/maps.
type MapsHandler struct {
	Maps maps.MapsService
}

func NewMapsHandler(svc maps.MapsService) *MapsHandler {
	return &MapsHandler{Maps: svc}
}

func (h *MapsHandler) Geocode(c *gin.Context) {
	var req models.GeocodeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.Maps.Geocode(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", result)
}

func (h *MapsHandler) Directions(c *gin.Context) {
	var req models.DirectionsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.Maps.Directions(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", result)
}

func (h *MapsHandler) Distance(c *gin.Context) {
	var req models.DistanceRequest
	if !bindJSON(c, &req) {
		return
	}
	elements, err := h.Maps.Distance(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"elements": elements})
}
