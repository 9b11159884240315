// Package sample holds the reference course dataset used by the CLI, the sample
// endpoint and tests.
package sample

import (
	"time"

	"github.com/noah-isme/learner-grades-api/internal/dto"
	"github.com/noah-isme/learner-grades-api/internal/models"
)

// Course returns the sample course.
func Course() models.Course {
	return models.Course{ID: 451, Name: "Introduction to JavaScript"}
}

// AssignmentGroup returns the sample group. Assignment 3 is due far in the future.
func AssignmentGroup() models.AssignmentGroup {
	return models.AssignmentGroup{
		ID:          12345,
		Name:        "Fundamentals of JavaScript",
		CourseID:    451,
		GroupWeight: 25,
		Assignments: []models.Assignment{
			{ID: 1, Name: "Declare a Variable", DueAt: models.NewDate(2023, time.January, 25), PointsPossible: 50},
			{ID: 2, Name: "Write a Function", DueAt: models.NewDate(2023, time.February, 27), PointsPossible: 150},
			{ID: 3, Name: "Code the World", DueAt: models.NewDate(3156, time.November, 15), PointsPossible: 500},
		},
	}
}

// Submissions returns the sample learner submissions.
func Submissions() []models.Submission {
	return []models.Submission{
		submission(125, 1, models.NewDate(2023, time.January, 25), 47),
		submission(125, 2, models.NewDate(2023, time.February, 12), 150),
		submission(125, 3, models.NewDate(2023, time.January, 25), 400),
		submission(132, 1, models.NewDate(2023, time.January, 24), 39),
		submission(132, 2, models.NewDate(2023, time.March, 7), 140),
	}
}

// Request bundles the sample dataset as a learner data request.
func Request() dto.LearnerDataRequest {
	return dto.LearnerDataRequest{
		Course:          Course(),
		AssignmentGroup: AssignmentGroup(),
		Submissions:     Submissions(),
	}
}

func submission(learnerID, assignmentID int, submittedAt models.Date, score float64) models.Submission {
	return models.Submission{
		LearnerID:    learnerID,
		AssignmentID: assignmentID,
		Submission:   models.SubmissionDetail{SubmittedAt: submittedAt, Score: models.NewScore(score)},
	}
}
