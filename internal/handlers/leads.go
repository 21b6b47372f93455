package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mwhitfield/distress-engine/internal/httperr"
	"github.com/mwhitfield/distress-engine/internal/middleware"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/scoring"
)

// Scorer computes an on-demand score breakdown for one property.
// Satisfied by *scoring.Service.
type Scorer interface {
	ScoreByParcelID(ctx context.Context, parcelID string) (*models.DistressScore, error)
}

// LeadHandler serves the scored-lead listing and per-property score lookups.
type LeadHandler struct {
	scores repository.ScoreRepository
	scorer Scorer
}

// NewLeadHandler creates a new LeadHandler instance.
func NewLeadHandler(scores repository.ScoreRepository, scorer Scorer) *LeadHandler {
	return &LeadHandler{
		scores: scores,
		scorer: scorer,
	}
}

// ListLeadsRequest represents the query parameters for the leads listing.
type ListLeadsRequest struct {
	Tier     string  `form:"tier" binding:"omitempty,oneof='Ultra Platinum' Platinum Gold Silver Bronze"`
	MinScore float64 `form:"min_score" binding:"omitempty,gte=0,lte=100"`
	Limit    int     `form:"limit" binding:"omitempty,gte=1,lte=1000"`
}

// ListLeadsResponse represents the response for the leads listing.
type ListLeadsResponse struct {
	Leads []models.Lead `json:"leads"`
	Count int           `json:"count"`
}

// ScoreResponse represents the response for a per-property score lookup.
type ScoreResponse struct {
	Score *models.DistressScore `json:"score"`
}

// List handles GET /api/v1/leads.
// Returns each property's latest score, best first, optionally filtered by
// tier and minimum total score.
func (h *LeadHandler) List(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httperr.ValidationError(c, validationErrors)
			return
		}
		httperr.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	const defaultLimit = 100
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}

	if log != nil {
		log.Info("Processing leads request", map[string]interface{}{
			"tier":      req.Tier,
			"min_score": req.MinScore,
			"limit":     req.Limit,
		})
	}

	leads, err := h.scores.ListLeads(c.Request.Context(), repository.LeadFilter{
		Tier:     req.Tier,
		MinScore: req.MinScore,
		Limit:    req.Limit,
	})
	if err != nil {
		httperr.InternalServerError(c, "Failed to query leads", err)
		return
	}

	c.JSON(http.StatusOK, ListLeadsResponse{
		Leads: leads,
		Count: len(leads),
	})
}

// Score handles GET /api/v1/properties/:parcel_id/score.
// Computes the current score breakdown on demand without persisting it, so
// the response reflects signals ingested since the last scoring run.
func (h *LeadHandler) Score(c *gin.Context) {
	parcelID := c.Param("parcel_id")
	if parcelID == "" {
		httperr.BadRequest(c, "parcel_id is required", nil)
		return
	}

	score, err := h.scorer.ScoreByParcelID(c.Request.Context(), parcelID)
	if err != nil {
		if errors.Is(err, scoring.ErrPropertyNotFound) {
			httperr.NotFound(c, "No property found with this parcel ID")
			return
		}
		httperr.InternalServerError(c, "Failed to score property", err)
		return
	}

	c.JSON(http.StatusOK, ScoreResponse{Score: score})
}
