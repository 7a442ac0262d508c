package analysis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scooter7/BrioCurriculum/internal/curricula"
	"github.com/scooter7/BrioCurriculum/internal/shared/server/respond"
)

// Handler wires the trigger and status endpoints to the orchestrator.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/curricula/:id/trigger-analysis", h.trigger)
	rg.GET("/curricula/:id/analysis-status", h.status)
}

func (h *Handler) trigger(c *gin.Context) {
	cur, err := h.Svc.Trigger(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, curricula.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "curriculum not found", nil)
		case errors.Is(err, curricula.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"message":    "Analysis has been initiated. Please check status periodically.",
		"curriculum": curricula.ToResponse(cur),
	})
}

func (h *Handler) status(c *gin.Context) {
	cur, err := h.Svc.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, curricula.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "curriculum not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis status", nil)
		}
		return
	}

	results := cur.AnalysisResults
	if results == nil {
		results = map[string]any{}
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"id":                      cur.ID,
		"name":                    cur.Name,
		"analysisStatus":          cur.AnalysisStatus,
		"analysisError":           cur.AnalysisError,
		"analysisResults":         results,
		"lastAnalysisTriggeredAt": cur.LastAnalysisTriggeredAt,
		"lastAnalysisCompletedAt": cur.LastAnalysisCompletedAt,
		"updatedAt":               cur.UpdatedAt,
	})
}
