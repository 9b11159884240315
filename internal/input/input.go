// Package input decodes learner data documents written as JSON or TOML.
package input

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported input file %q: expected .json or .toml", path)
	}
}

// Load reads the learner data document at path.
func Load(path string) (dto.LearnerDataRequest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return dto.LearnerDataRequest{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return dto.LearnerDataRequest{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode parses a learner data document.
func Decode(r io.Reader, format Format) (dto.LearnerDataRequest, error) {
	switch format {
	case FormatJSON:
		var req dto.LearnerDataRequest
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return dto.LearnerDataRequest{}, fmt.Errorf("decode json input: %w", err)
		}
		return req, nil
	case FormatTOML:
		var doc document
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return dto.LearnerDataRequest{}, fmt.Errorf("decode toml input: %w", err)
		}
		return doc.request()
	default:
		return dto.LearnerDataRequest{}, fmt.Errorf("unsupported input format %q", format)
	}
}

// TOML has native dates and distinct integer and float types, so loosely typed
// fields are converted by hand.
type document struct {
	EvaluateAt      interface{}   `toml:"evaluate_at"`
	Course          models.Course `toml:"course"`
	AssignmentGroup group         `toml:"assignment_group"`
	Submissions     []submission  `toml:"submissions"`
}

type group struct {
	ID          int          `toml:"id"`
	Name        string       `toml:"name"`
	CourseID    int          `toml:"course_id"`
	GroupWeight interface{}  `toml:"group_weight"`
	Assignments []assignment `toml:"assignments"`
}

type assignment struct {
	ID             int         `toml:"id"`
	Name           string      `toml:"name"`
	DueAt          interface{} `toml:"due_at"`
	PointsPossible interface{} `toml:"points_possible"`
}

type submission struct {
	LearnerID    int `toml:"learner_id"`
	AssignmentID int `toml:"assignment_id"`
	Submission   struct {
		SubmittedAt interface{} `toml:"submitted_at"`
		Score       interface{} `toml:"score"`
	} `toml:"submission"`
}

func (d document) request() (dto.LearnerDataRequest, error) {
	req := dto.LearnerDataRequest{Course: d.Course}

	weight, err := toFloat("assignment_group.group_weight", d.AssignmentGroup.GroupWeight)
	if err != nil {
		return dto.LearnerDataRequest{}, err
	}
	req.AssignmentGroup = models.AssignmentGroup{
		ID:          d.AssignmentGroup.ID,
		Name:        d.AssignmentGroup.Name,
		CourseID:    d.AssignmentGroup.CourseID,
		GroupWeight: weight,
		Assignments: make([]models.Assignment, 0, len(d.AssignmentGroup.Assignments)),
	}
	for i, a := range d.AssignmentGroup.Assignments {
		dueAt, err := toDate(fmt.Sprintf("assignments[%d].due_at", i), a.DueAt)
		if err != nil {
			return dto.LearnerDataRequest{}, err
		}
		points, err := toFloat(fmt.Sprintf("assignments[%d].points_possible", i), a.PointsPossible)
		if err != nil {
			return dto.LearnerDataRequest{}, err
		}
		req.AssignmentGroup.Assignments = append(req.AssignmentGroup.Assignments, models.Assignment{
			ID:             a.ID,
			Name:           a.Name,
			DueAt:          dueAt,
			PointsPossible: points,
		})
	}

	req.Submissions = make([]models.Submission, 0, len(d.Submissions))
	for i, s := range d.Submissions {
		submittedAt, err := toDate(fmt.Sprintf("submissions[%d].submission.submitted_at", i), s.Submission.SubmittedAt)
		if err != nil {
			return dto.LearnerDataRequest{}, err
		}
		req.Submissions = append(req.Submissions, models.Submission{
			LearnerID:    s.LearnerID,
			AssignmentID: s.AssignmentID,
			Submission: models.SubmissionDetail{
				SubmittedAt: submittedAt,
				Score:       models.ScoreFromValue(s.Submission.Score),
			},
		})
	}

	if d.EvaluateAt != nil {
		at, err := toDate("evaluate_at", d.EvaluateAt)
		if err != nil {
			return dto.LearnerDataRequest{}, err
		}
		req.EvaluateAt = &at
	}
	return req, nil
}

// toDate accepts TOML dates and datetimes or date strings. Local dates are read as UTC.
func toDate(field string, v interface{}) (models.Date, error) {
	switch t := v.(type) {
	case nil:
		return models.Date{}, nil
	case time.Time:
		return models.DateOf(t.UTC()), nil
	case string:
		d, err := models.ParseDate(t)
		if err != nil {
			return models.Date{}, fmt.Errorf("%s: %w", field, err)
		}
		return d, nil
	default:
		return models.Date{}, fmt.Errorf("%s: expected a date, got %T", field, v)
	}
}

func toFloat(field string, v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("%s: expected a number, got %T", field, v)
	}
}
