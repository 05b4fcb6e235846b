package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanare-juku/schedule-api/internal/service"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
	"github.com/hanare-juku/schedule-api/pkg/response"
)

// CopyRequest names the source and target of a copy operation. For week
// copies both dates are the first day of their week.
type CopyRequest struct {
	SourceDate string `json:"source_date" binding:"required"`
	TargetDate string `json:"target_date" binding:"required"`
}

// CopyHandler exposes the copy/propagation engine.
type CopyHandler struct {
	service *service.CopyService
}

// NewCopyHandler constructs handler.
func NewCopyHandler(svc *service.CopyService) *CopyHandler {
	return &CopyHandler{service: svc}
}

// CopyDay godoc
// @Summary Replace the target date with a clone of the source date
// @Tags Copy
// @Accept json
// @Produce json
// @Param payload body CopyRequest true "Source and target dates"
// @Success 200 {object} response.Envelope
// @Router /schedule/copy-day [post]
func (h *CopyHandler) CopyDay(c *gin.Context) {
	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.service.CopyDay(c.Request.Context(), req.SourceDate, req.TargetDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// CopyWeek godoc
// @Summary Replace the target week with a clone of the source week
// @Tags Copy
// @Accept json
// @Produce json
// @Param payload body CopyRequest true "Week start dates"
// @Success 200 {object} response.Envelope
// @Router /schedule/copy-week [post]
func (h *CopyHandler) CopyWeek(c *gin.Context) {
	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.service.CopyWeek(c.Request.Context(), req.SourceDate, req.TargetDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
