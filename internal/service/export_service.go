package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
	"github.com/noah-isme/learner-grades-api/pkg/export"
)

const defaultExportTitle = "Learner Grade Report"

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered learner report.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders learner results as JSON, CSV or PDF documents.
type ExportService struct {
	csv          datasetRenderer
	pdf          datasetRenderer
	logger       *zap.Logger
	cfg          ExportConfig
	now          func() time.Time
	roundingMode func(float64) float64
}

// NewExportService constructs an ExportService.
func NewExportService(cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = defaultExportTitle
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		roundingMode: func(v float64) float64 { return math.RoundToEven(v*10000) / 10000 },
	}
}

// Render encodes learner results in the requested format.
func (s *ExportService) Render(format dto.ExportFormat, group models.AssignmentGroup, learners []models.LearnerResult) (*ExportResult, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case dto.ExportFormatJSON, "":
		format = dto.ExportFormatJSON
		payload, err = json.Marshal(models.LearnerDataResult{Learners: learners})
		contentType = "application/json"
	case dto.ExportFormatCSV:
		payload, err = s.csv.Render(s.BuildDataset(group, learners))
		contentType = s.csv.ContentType()
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(s.BuildDataset(group, learners))
		contentType = s.pdf.ContentType()
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("learner report rendered",
		zap.String("format", string(format)),
		zap.Int("learners", len(learners)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		Filename:    s.buildFilename(group, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// BuildDataset lays learners out one per row. Assignment columns follow group order
// and only include assignments at least one learner was scored on.
func (s *ExportService) BuildDataset(group models.AssignmentGroup, learners []models.LearnerResult) export.Dataset {
	scoredIDs := make(map[int]bool)
	for _, learner := range learners {
		for _, score := range learner.Scores {
			scoredIDs[score.AssignmentID] = true
		}
	}
	columns := make([]int, 0, len(scoredIDs))
	headers := []string{"Learner", "Average"}
	for _, assignment := range group.Assignments {
		if !scoredIDs[assignment.ID] || containsInt(columns, assignment.ID) {
			continue
		}
		columns = append(columns, assignment.ID)
		headers = append(headers, strconv.Itoa(assignment.ID))
	}

	rows := make([][]string, 0, len(learners))
	for _, learner := range learners {
		row := []string{strconv.Itoa(learner.LearnerID), s.formatNumber(learner.Average)}
		for _, id := range columns {
			if pct, ok := learner.Score(id); ok {
				row = append(row, s.formatNumber(pct))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:   s.cfg.Title,
		Caption: fmt.Sprintf("%s (group %d, course %d)", group.Name, group.ID, group.CourseID),
		Headers: headers,
		Rows:    rows,
	}
}

func (s *ExportService) formatNumber(v float64) string {
	return strconv.FormatFloat(s.roundingMode(v), 'f', -1, 64)
}

func (s *ExportService) buildFilename(group models.AssignmentGroup, format dto.ExportFormat) string {
	timestamp := s.now().Format("20060102_150405")
	groupPart := sanitizeFilename(strings.ToLower(group.Name))
	return fmt.Sprintf("learner_data_%s_%s.%s", groupPart, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
