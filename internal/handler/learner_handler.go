package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
	"github.com/noah-isme/learner-grades-api/internal/sample"
	"github.com/noah-isme/learner-grades-api/internal/service"
	appErrors "github.com/noah-isme/learner-grades-api/pkg/errors"
	"github.com/noah-isme/learner-grades-api/pkg/response"
)

type learnerComputer interface {
	Compute(req dto.LearnerDataRequest) ([]models.LearnerResult, error)
}

type reportRenderer interface {
	Render(format dto.ExportFormat, group models.AssignmentGroup, learners []models.LearnerResult) (*service.ExportResult, error)
}

// LearnerHandler exposes the learner data endpoints.
type LearnerHandler struct {
	learners     learnerComputer
	exports      reportRenderer
	maxBodyBytes int64
}

// NewLearnerHandler constructs handler. A non-positive maxBodyBytes disables the body limit.
func NewLearnerHandler(learners learnerComputer, exports reportRenderer, maxBodyBytes int64) *LearnerHandler {
	return &LearnerHandler{learners: learners, exports: exports, maxBodyBytes: maxBodyBytes}
}

// Compute godoc
// @Summary Compute learner weighted averages
// @Description Validates the course, assignment group and submissions, then scores every learner on due assignments.
// @Tags LearnerData
// @Accept json
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param payload body dto.LearnerDataRequest true "Learner data"
// @Param format query string false "json, csv or pdf"
// @Param at query string false "Evaluation time (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /learner-data [post]
func (h *LearnerHandler) Compute(c *gin.Context) {
	format, ok := dto.ParseExportFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be one of json, csv, pdf"))
		return
	}

	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	var req dto.LearnerDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidPayload.Code, appErrors.ErrInvalidPayload.Status, "request body is not valid learner data"))
		return
	}

	h.respond(c, req, format)
}

// Sample godoc
// @Summary Score the built-in sample course
// @Tags LearnerData
// @Produce json
// @Param format query string false "json, csv or pdf"
// @Param at query string false "Evaluation time (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} response.Envelope
// @Router /learner-data/sample [get]
func (h *LearnerHandler) Sample(c *gin.Context) {
	format, ok := dto.ParseExportFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be one of json, csv, pdf"))
		return
	}
	h.respond(c, sample.Request(), format)
}

func (h *LearnerHandler) respond(c *gin.Context, req dto.LearnerDataRequest, format dto.ExportFormat) {
	if raw := c.Query("at"); raw != "" {
		at, err := models.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at must be YYYY-MM-DD or RFC 3339"))
			return
		}
		req.EvaluateAt = &at
	}

	learners, err := h.learners.Compute(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format == dto.ExportFormatJSON {
		response.JSON(c, http.StatusOK, models.LearnerDataResult{Learners: learners}, map[string]interface{}{
			"learners":            len(learners),
			"assignment_group_id": req.AssignmentGroup.ID,
		})
		return
	}

	report, err := h.exports.Render(format, req.AssignmentGroup, learners)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Payload)
}
