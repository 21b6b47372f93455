package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mwhitfield/distress-engine/internal/httperr"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// PropertyHandler serves per-property detail lookups.
type PropertyHandler struct {
	properties repository.PropertyRepository
	signals    repository.SignalRepository
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(properties repository.PropertyRepository, signals repository.SignalRepository) *PropertyHandler {
	return &PropertyHandler{
		properties: properties,
		signals:    signals,
	}
}

// PropertySignalsResponse represents the full signal history for a property.
type PropertySignalsResponse struct {
	Property         *models.Property         `json:"property"`
	Violations       []models.CodeViolation   `json:"violations"`
	LegalRecords     []models.LegalAndLien    `json:"legalRecords"`
	Proceedings      []models.LegalProceeding `json:"proceedings"`
	TaxDelinquencies []models.TaxDelinquency  `json:"taxDelinquencies"`
	Permits          []models.BuildingPermit  `json:"permits"`
	Foreclosures     []models.Foreclosure     `json:"foreclosures"`
}

// Signals handles GET /api/v1/properties/:parcel_id/signals.
// Returns every distress signal on record for the property, grouped by
// source table, oldest first within each group.
func (h *PropertyHandler) Signals(c *gin.Context) {
	parcelID := c.Param("parcel_id")
	if parcelID == "" {
		httperr.BadRequest(c, "parcel_id is required", nil)
		return
	}

	ctx := c.Request.Context()

	property, err := h.properties.FindByParcelID(ctx, parcelID)
	if err != nil {
		httperr.InternalServerError(c, "Failed to look up property", err)
		return
	}
	if property == nil {
		httperr.NotFound(c, "No property found with this parcel ID")
		return
	}

	resp := PropertySignalsResponse{Property: property}

	if resp.Violations, err = h.signals.ViolationsByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query violations", err)
		return
	}
	if resp.LegalRecords, err = h.signals.LegalAndLiensByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query legal records", err)
		return
	}
	if resp.Proceedings, err = h.signals.ProceedingsByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query proceedings", err)
		return
	}
	if resp.TaxDelinquencies, err = h.signals.TaxDelinquenciesByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query tax delinquencies", err)
		return
	}
	if resp.Permits, err = h.signals.PermitsByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query permits", err)
		return
	}
	if resp.Foreclosures, err = h.signals.ForeclosuresByProperty(ctx, property.ID); err != nil {
		httperr.InternalServerError(c, "Failed to query foreclosures", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
