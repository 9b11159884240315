package service

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
	appErrors "github.com/noah-isme/learner-grades-api/pkg/errors"
)

// LatePenaltyRate is the share of points possible deducted from a late submission.
const LatePenaltyRate = 0.1

const zeroScoreMessage = "Invalid submission score: Score cannot be zero."

// Outcome labels reported to learnerMetrics.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeInvalidPayload = "invalid_payload"
)

type learnerMetrics interface {
	ObserveLearnerData(outcome string, learners int)
}

// LearnerServiceOption customises a LearnerService.
type LearnerServiceOption func(*LearnerService)

// WithClock sets the evaluation clock used when a request does not pin one.
func WithClock(now func() time.Time) LearnerServiceOption {
	return func(s *LearnerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics reports computation outcomes to the provided recorder.
func WithMetrics(metrics learnerMetrics) LearnerServiceOption {
	return func(s *LearnerService) {
		s.metrics = metrics
	}
}

// LearnerService validates assignment group submissions and produces per-learner
// weighted averages.
type LearnerService struct {
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	metrics   learnerMetrics
}

// NewLearnerService constructs LearnerService.
func NewLearnerService(validate *validator.Validate, logger *zap.Logger, opts ...LearnerServiceOption) *LearnerService {
	if validate == nil {
		validate = validator.New()
	}
	RegisterModelValidations(validate)
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LearnerService{
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterModelValidations teaches the validator how to check model value types.
func RegisterModelValidations(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok && !d.IsZero() {
			return d.Time
		}
		return nil
	}, models.Date{})
}

// GetLearnerData validates the batch and returns the learner summaries, or the
// message of the first validation failure.
func (s *LearnerService) GetLearnerData(course models.Course, group models.AssignmentGroup, submissions []models.Submission) models.LearnerDataResult {
	learners, err := s.evaluate(course, group, submissions, s.now())
	if err != nil {
		return models.LearnerDataResult{Error: appErrors.FromError(err).Message}
	}
	return models.LearnerDataResult{Learners: learners}
}

// Compute checks the payload shape, then validates and scores it. Errors are
// *appErrors.Error values.
func (s *LearnerService) Compute(req dto.LearnerDataRequest) ([]models.LearnerResult, error) {
	if err := s.ValidatePayload(req); err != nil {
		s.observe(OutcomeInvalidPayload, 0)
		return nil, err
	}
	now := s.now()
	if req.EvaluateAt != nil {
		now = req.EvaluateAt.Time
	}
	return s.evaluate(req.Course, req.AssignmentGroup, req.Submissions, now)
}

// ValidatePayload checks structural constraints: due and submission dates set and
// positive points possible.
func (s *LearnerService) ValidatePayload(req dto.LearnerDataRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidPayload.Code, appErrors.ErrInvalidPayload.Status, "invalid learner data payload")
	}
	return nil
}

func (s *LearnerService) evaluate(course models.Course, group models.AssignmentGroup, submissions []models.Submission, now time.Time) ([]models.LearnerResult, error) {
	if err := ValidateLearnerData(course, group, submissions); err != nil {
		appErr := appErrors.FromError(err)
		s.logger.Info("learner data rejected",
			zap.Int("course_id", course.ID),
			zap.Int("assignment_group_id", group.ID),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		s.observe(OutcomeRejected, 0)
		return nil, err
	}
	learners := FormatLearnerResults(submissions, group.Assignments, now)
	s.logger.Debug("learner data computed",
		zap.Int("course_id", course.ID),
		zap.Int("assignment_group_id", group.ID),
		zap.Int("learners", len(learners)),
		zap.Time("evaluated_at", now),
	)
	s.observe(OutcomeSuccess, len(learners))
	return learners, nil
}

func (s *LearnerService) observe(outcome string, learners int) {
	if s.metrics != nil {
		s.metrics.ObserveLearnerData(outcome, learners)
	}
}

// ValidateLearnerData fails on the first violation: a group owned by another
// course, then any submission whose score is non-numeric, negative or zero.
func ValidateLearnerData(course models.Course, group models.AssignmentGroup, submissions []models.Submission) error {
	if group.CourseID != course.ID {
		return appErrors.Wrap(
			fmt.Errorf("assignment group %d belongs to course %d, not %d", group.ID, group.CourseID, course.ID),
			appErrors.ErrMismatchedCourse.Code, appErrors.ErrMismatchedCourse.Status, appErrors.ErrMismatchedCourse.Message,
		)
	}
	for _, sub := range submissions {
		score := sub.Submission.Score
		where := fmt.Errorf("learner %d assignment %d", sub.LearnerID, sub.AssignmentID)
		if !score.Numeric() || score.Value() < 0 {
			return appErrors.Wrap(where, appErrors.ErrInvalidScore.Code, appErrors.ErrInvalidScore.Status, appErrors.ErrInvalidScore.Message)
		}
		if score.Value() == 0 {
			return appErrors.Wrap(where, appErrors.ErrInvalidScore.Code, appErrors.ErrInvalidScore.Status, zeroScoreMessage)
		}
	}
	return nil
}

// Weighted is one learner's scoring outcome. Average is a fraction of 1 while the
// per-assignment scores are percentages.
type Weighted struct {
	Average float64
	Scores  []models.AssignmentScore
}

type tally struct {
	earned   float64
	possible float64
	scores   []models.AssignmentScore
}

func (t tally) add(assignment models.Assignment, adjusted float64) tally {
	percentage := adjusted / assignment.PointsPossible * 100
	scores := make([]models.AssignmentScore, 0, len(t.scores)+1)
	replaced := false
	for _, s := range t.scores {
		if s.AssignmentID == assignment.ID {
			s.Percentage = percentage
			replaced = true
		}
		scores = append(scores, s)
	}
	if !replaced {
		scores = append(scores, models.AssignmentScore{AssignmentID: assignment.ID, Percentage: percentage})
	}
	return tally{
		earned:   t.earned + adjusted,
		possible: t.possible + assignment.PointsPossible,
		scores:   scores,
	}
}

// ComputeWeightedAverage scores one learner's submissions against the assignments
// due at now. Every matching submission counts, so duplicates accumulate.
func ComputeWeightedAverage(assignments []models.Assignment, submissions []models.Submission, now time.Time) Weighted {
	var t tally
	for _, assignment := range assignments {
		if !assignment.IsDue(now) {
			continue
		}
		for _, sub := range submissions {
			if sub.AssignmentID != assignment.ID {
				continue
			}
			t = t.add(assignment, AdjustedScore(assignment, sub))
		}
	}
	if t.possible == 0 {
		return Weighted{Scores: t.scores}
	}
	return Weighted{Average: t.earned / t.possible, Scores: t.scores}
}

// AdjustedScore applies the late penalty. The result is not clamped at zero.
func AdjustedScore(assignment models.Assignment, sub models.Submission) float64 {
	score := sub.Submission.Score.Value()
	if sub.IsLate(assignment) {
		return score - LatePenaltyRate*assignment.PointsPossible
	}
	return score
}

// FormatLearnerResults groups submissions by learner in first-seen order and scores
// each learner against the full assignment list.
func FormatLearnerResults(submissions []models.Submission, assignments []models.Assignment, now time.Time) []models.LearnerResult {
	order := make([]int, 0)
	grouped := make(map[int][]models.Submission)
	for _, sub := range submissions {
		if _, ok := grouped[sub.LearnerID]; !ok {
			order = append(order, sub.LearnerID)
		}
		grouped[sub.LearnerID] = append(grouped[sub.LearnerID], sub)
	}

	results := make([]models.LearnerResult, 0, len(order))
	for _, learnerID := range order {
		weighted := ComputeWeightedAverage(assignments, grouped[learnerID], now)
		results = append(results, models.LearnerResult{
			LearnerID: learnerID,
			Average:   weighted.Average,
			Scores:    weighted.Scores,
		})
	}
	return results
}
