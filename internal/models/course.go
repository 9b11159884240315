package models

import "time"

// Course identifies the course that owns an assignment group.
type Course struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AssignmentGroup is a weighted collection of assignments within a course.
// GroupWeight is carried through but does not take part in scoring.
type AssignmentGroup struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	CourseID    int          `json:"course_id"`
	GroupWeight float64      `json:"group_weight"`
	Assignments []Assignment `json:"assignments" validate:"dive"`
}

// Assignment describes a single graded assignment.
type Assignment struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	DueAt          Date    `json:"due_at" validate:"required"`
	PointsPossible float64 `json:"points_possible" validate:"gt=0"`
}

// IsDue reports whether the assignment is eligible for grading at the reference time.
func (a Assignment) IsDue(reference time.Time) bool {
	return !reference.Before(a.DueAt.Time)
}

// Submission is a learner's scored attempt at an assignment.
type Submission struct {
	LearnerID    int              `json:"learner_id"`
	AssignmentID int              `json:"assignment_id"`
	Submission   SubmissionDetail `json:"submission"`
}

// SubmissionDetail carries when the work was handed in and the raw score.
type SubmissionDetail struct {
	SubmittedAt Date  `json:"submitted_at" validate:"required"`
	Score       Score `json:"score"`
}

// IsLate reports whether the submission arrived strictly after the due date. A
// calendar due date covers the whole UTC day, so submissions compare by date.
func (s Submission) IsLate(assignment Assignment) bool {
	submitted := s.Submission.SubmittedAt
	if assignment.DueAt.isCalendarDate() {
		submitted = submitted.CalendarDay()
	}
	return submitted.After(assignment.DueAt.Time)
}
