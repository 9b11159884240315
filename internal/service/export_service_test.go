package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
	"github.com/noah-isme/learner-grades-api/internal/sample"
	"github.com/noah-isme/learner-grades-api/pkg/export"
)

func newExportServiceForTest(t *testing.T) (*ExportService, []models.LearnerResult) {
	t.Helper()
	svc := NewExportService(ExportConfig{}, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	svc.now = func() time.Time { return evaluationTime }
	result := newLearnerServiceForTest().GetLearnerData(sample.Course(), sample.AssignmentGroup(), sample.Submissions())
	require.False(t, result.Failed())
	return svc, result.Learners
}

func TestExportServiceBuildDataset(t *testing.T) {
	svc, learners := newExportServiceForTest(t)

	dataset := svc.BuildDataset(sample.AssignmentGroup(), learners)

	assert.Equal(t, "Learner Grade Report", dataset.Title)
	assert.Equal(t, "Fundamentals of JavaScript (group 12345, course 451)", dataset.Caption)
	assert.Equal(t, []string{"Learner", "Average", "1", "2"}, dataset.Headers)
	assert.Equal(t, [][]string{
		{"125", "0.985", "94", "100"},
		{"132", "0.82", "78", "83.3333"},
	}, dataset.Rows)
}

func TestExportServiceBuildDatasetMissingScores(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	learners := []models.LearnerResult{
		{LearnerID: 1, Average: 0.5, Scores: []models.AssignmentScore{{AssignmentID: 2, Percentage: 50}}},
		{LearnerID: 2},
	}

	dataset := svc.BuildDataset(sample.AssignmentGroup(), learners)

	assert.Equal(t, []string{"Learner", "Average", "2"}, dataset.Headers)
	assert.Equal(t, []string{"2", "0", ""}, dataset.Rows[1])
}

func TestExportServiceRenderFormats(t *testing.T) {
	svc, learners := newExportServiceForTest(t)
	group := sample.AssignmentGroup()

	csv, err := svc.Render(dto.ExportFormatCSV, group, learners)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csv.ContentType)
	assert.Equal(t, "learner_data_fundamentals_of_javascript_20240601_000000.csv", csv.Filename)
	assert.True(t, strings.HasPrefix(string(csv.Payload), "Learner,Average,1,2\n125,0.985,94,100\n"))

	pdf, err := svc.Render(dto.ExportFormatPDF, group, learners)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Payload, []byte("%PDF-")))

	jsonOut, err := svc.Render(dto.ExportFormatJSON, group, learners)
	require.NoError(t, err)
	assert.Equal(t, "application/json", jsonOut.ContentType)
	assert.JSONEq(t, `[{"id":125,"avg":0.985,"1":94,"2":100},{"id":132,"avg":0.82,"1":78,"2":83.33333333333334}]`, string(jsonOut.Payload))

	_, err = svc.Render(dto.ExportFormat("xlsx"), group, learners)
	assert.Error(t, err)
}
