package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar date", raw: "2023-01-25", want: time.Date(2023, 1, 25, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", raw: "2023-03-07T10:30:00Z", want: time.Date(2023, 3, 7, 10, 30, 0, 0, time.UTC)},
		{name: "padded", raw: "  3156-11-15 ", want: time.Date(3156, 11, 15, 0, 0, 0, 0, time.UTC)},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "25/01/2023", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got.Time))
		})
	}
}

func TestDateJSON(t *testing.T) {
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Declare a Variable","due_at":"2023-01-25","points_possible":50}`), &a))
	assert.Equal(t, NewDate(2023, time.January, 25), a.DueAt)

	encoded, err := json.Marshal(a.DueAt)
	require.NoError(t, err)
	assert.JSONEq(t, `"2023-01-25"`, string(encoded))

	assert.Error(t, json.Unmarshal([]byte(`{"due_at":20230125}`), &a))
}

func TestScoreDecoding(t *testing.T) {
	var detail SubmissionDetail
	require.NoError(t, json.Unmarshal([]byte(`{"submitted_at":"2023-01-25","score":47}`), &detail))
	assert.True(t, detail.Score.Numeric())
	assert.Equal(t, 47.0, detail.Score.Value())

	require.NoError(t, json.Unmarshal([]byte(`{"submitted_at":"2023-01-25","score":"47"}`), &detail))
	assert.False(t, detail.Score.Numeric())
	encoded, err := json.Marshal(detail.Score)
	require.NoError(t, err)
	assert.Equal(t, `"47"`, string(encoded))

	require.NoError(t, json.Unmarshal([]byte(`{"submitted_at":"2023-01-25","score":null}`), &detail))
	assert.False(t, detail.Score.Numeric())
}

func TestScoreDecodingOutOfRange(t *testing.T) {
	var huge Score
	require.NoError(t, json.Unmarshal([]byte(`1e400`), &huge))
	assert.True(t, huge.Numeric())
	assert.True(t, math.IsInf(huge.Value(), 1))
	encoded, err := json.Marshal(huge)
	require.NoError(t, err)
	assert.Equal(t, "1e400", string(encoded))

	var negative Score
	require.NoError(t, json.Unmarshal([]byte(`-1e400`), &negative))
	assert.True(t, negative.Numeric())
	assert.True(t, math.IsInf(negative.Value(), -1))

	var tiny Score
	require.NoError(t, json.Unmarshal([]byte(`1e-400`), &tiny))
	assert.True(t, tiny.Numeric())
	assert.Equal(t, 0.0, tiny.Value())

	assert.True(t, math.IsInf(ScoreFromValue(json.Number("2e308")).Value(), 1))
}

func TestLearnerResultJSONNonFinite(t *testing.T) {
	encoded, err := json.Marshal(LearnerResult{
		LearnerID: 9,
		Average:   math.Inf(1),
		Scores:    []AssignmentScore{{AssignmentID: 1, Percentage: math.Inf(1)}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"avg":null,"1":null}`, string(encoded))
}

func TestScoreFromValue(t *testing.T) {
	assert.True(t, ScoreFromValue(int64(39)).Numeric())
	assert.Equal(t, 39.0, ScoreFromValue(int64(39)).Value())
	assert.True(t, ScoreFromValue(12.5).Numeric())
	assert.False(t, ScoreFromValue("twelve").Numeric())
	assert.False(t, ScoreFromValue(true).Numeric())
}

func TestAssignmentIsDueAndLate(t *testing.T) {
	a := Assignment{ID: 2, DueAt: NewDate(2023, time.February, 27), PointsPossible: 150}

	assert.True(t, a.IsDue(a.DueAt.Time))
	assert.False(t, a.IsDue(a.DueAt.Add(-time.Second)))

	onTime := Submission{AssignmentID: 2, Submission: SubmissionDetail{SubmittedAt: NewDate(2023, time.February, 27)}}
	late := Submission{AssignmentID: 2, Submission: SubmissionDetail{SubmittedAt: NewDate(2023, time.March, 7)}}
	assert.False(t, onTime.IsLate(a))
	assert.True(t, late.IsLate(a))
}

func TestIsLateComparesCalendarDueDateByDay(t *testing.T) {
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"due_at":"2023-01-25","points_possible":50}`), &a))

	var sameDay Submission
	require.NoError(t, json.Unmarshal([]byte(`{"learner_id":1,"assignment_id":1,"submission":{"submitted_at":"2023-01-25T10:00:00Z","score":47}}`), &sameDay))
	assert.False(t, sameDay.IsLate(a))

	var nextDay Submission
	require.NoError(t, json.Unmarshal([]byte(`{"learner_id":1,"assignment_id":1,"submission":{"submitted_at":"2023-01-25T23:00:00-02:00","score":47}}`), &nextDay))
	assert.True(t, nextDay.IsLate(a))
}

func TestDateCalendarDay(t *testing.T) {
	d := DateOf(time.Date(2023, time.January, 25, 22, 15, 0, 0, time.FixedZone("", 3*3600)))
	assert.Equal(t, NewDate(2023, time.January, 25), d.CalendarDay())
	assert.Equal(t, "2023-01-25", d.CalendarDay().String())
}

func TestLearnerResultJSON(t *testing.T) {
	result := LearnerResult{
		LearnerID: 125,
		Average:   0.985,
		Scores:    []AssignmentScore{{AssignmentID: 1, Percentage: 94}, {AssignmentID: 2, Percentage: 100}},
	}
	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":125,"avg":0.985,"1":94,"2":100}`, string(encoded))

	var decoded LearnerResult
	require.NoError(t, json.Unmarshal([]byte(`{"2":100,"avg":0.985,"1":94,"id":125}`), &decoded))
	assert.Equal(t, result, decoded)

	score, ok := decoded.Score(2)
	assert.True(t, ok)
	assert.Equal(t, 100.0, score)
	_, ok = decoded.Score(3)
	assert.False(t, ok)
}

func TestLearnerDataResultJSON(t *testing.T) {
	encoded, err := json.Marshal(LearnerDataResult{Error: "Invalid submission score: Score cannot be zero."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Invalid submission score: Score cannot be zero."}`, string(encoded))

	encoded, err = json.Marshal(LearnerDataResult{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))

	encoded, err = json.Marshal(LearnerDataResult{Learners: []LearnerResult{{LearnerID: 7}}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"avg":0}]`, string(encoded))
}
