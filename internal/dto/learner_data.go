package dto

import (
	"strings"

	"github.com/noah-isme/learner-grades-api/internal/models"
)

// LearnerDataRequest captures the POST /learner-data payload and CLI input documents.
type LearnerDataRequest struct {
	Course          models.Course          `json:"course"`
	AssignmentGroup models.AssignmentGroup `json:"assignment_group"`
	Submissions     []models.Submission    `json:"submissions" validate:"dive"`
	// EvaluateAt pins the evaluation time; the service clock is used when nil.
	EvaluateAt *models.Date `json:"evaluate_at,omitempty"`
}

// ExportFormat selects how learner results are rendered.
type ExportFormat string

const (
	// ExportFormatJSON renders the learner list as JSON.
	ExportFormatJSON ExportFormat = "json"
	// ExportFormatCSV renders one CSV row per learner.
	ExportFormatCSV ExportFormat = "csv"
	// ExportFormatPDF renders a tabular PDF report.
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat normalises user input; empty input selects JSON.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", ExportFormatJSON:
		return ExportFormatJSON, true
	case ExportFormatCSV, ExportFormatPDF:
		return f, true
	default:
		return "", false
	}
}
