package curricula

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scooter7/BrioCurriculum/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches curriculum routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/curricula", h.upload)
	rg.GET("/curricula", h.list)
	rg.GET("/curricula/:id", h.get)
	rg.DELETE("/curricula/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	schoolTag := c.PostForm("schoolTag")

	cur, err := h.Svc.Upload(c.Request.Context(), name, schoolTag, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload curriculum", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, ToResponse(cur))
}

func (h *Handler) list(c *gin.Context) {
	curs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list curricula", nil)
		return
	}

	resp := make([]CurriculumResponse, 0, len(curs))
	for _, cur := range curs {
		resp = append(resp, ToResponse(cur))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	cur, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "curriculum not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch curriculum", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, ToResponse(cur))
}

func (h *Handler) remove(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "curriculum not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete curriculum", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Curriculum deleted"})
}
