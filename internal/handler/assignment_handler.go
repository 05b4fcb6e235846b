package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hanare-juku/schedule-api/internal/service"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
	"github.com/hanare-juku/schedule-api/pkg/response"
)

// AssignmentHandler manages assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListByDate godoc
// @Summary List assignments for a date
// @Tags Assignments
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}
	assignments, err := h.service.ListByDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListByRange godoc
// @Summary List assignments over consecutive dates
// @Tags Assignments
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param days query int false "Number of days (default 7)"
// @Success 200 {object} response.Envelope
// @Router /assignments/range [get]
func (h *AssignmentHandler) ListByRange(c *gin.Context) {
	start := c.Query("start")
	if start == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start query parameter is required"))
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be a positive integer"))
		return
	}
	assignments, err := h.service.ListByDateRange(c.Request.Context(), start, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get an assignment by id
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Validate godoc
// @Summary Check a prospective assignment for conflicts
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.ValidateAssignmentRequest true "Candidate payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/validate [post]
func (h *AssignmentHandler) Validate(c *gin.Context) {
	var req service.ValidateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, _, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Patch an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	// The service's Update does not re-run conflict validation; the
	// mutation callers own that step, so run it here against the merged
	// slot coordinates before touching storage.
	if err := h.preValidate(c, id, req); err != nil {
		response.Error(c, err)
		return
	}

	assignment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

func (h *AssignmentHandler) preValidate(c *gin.Context, id string, req service.UpdateAssignmentRequest) error {
	existing, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}

	candidate := service.ValidateAssignmentRequest{
		ID:         id,
		Date:       existing.Date,
		TimeSlotID: existing.TimeSlotID,
	}
	if req.Date != nil {
		candidate.Date = *req.Date
	}
	if req.TimeSlotID != nil {
		candidate.TimeSlotID = *req.TimeSlotID
	}
	if req.Teachers != nil {
		candidate.Teachers = *req.Teachers
	} else {
		for _, link := range existing.Teachers {
			candidate.Teachers = append(candidate.Teachers, service.TeacherLinkRequest{TeacherID: link.TeacherID, IsSubstitute: link.IsSubstitute})
		}
	}
	if req.Students != nil {
		candidate.Students = *req.Students
	} else {
		for _, link := range existing.Students {
			candidate.Students = append(candidate.Students, service.StudentLinkRequest{StudentID: link.StudentID, SubmissionID: link.SubmissionID})
		}
	}

	result, conflicts, err := h.service.Validate(c.Request.Context(), candidate)
	if err != nil {
		return err
	}
	if !result.Valid {
		return service.ConflictError(conflicts)
	}
	return nil
}

// Delete godoc
// @Summary Soft-delete an assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignment, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Restore godoc
// @Summary Restore a soft-deleted assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/restore [post]
func (h *AssignmentHandler) Restore(c *gin.Context) {
	assignment, err := h.service.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// DeleteAllForDate godoc
// @Summary Soft-delete every assignment on a date
// @Tags Assignments
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /days/{date}/assignments [delete]
func (h *AssignmentHandler) DeleteAllForDate(c *gin.Context) {
	result, err := h.service.DeleteAllForDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
