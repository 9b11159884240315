package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// AssignmentScore is a learner's percentage on one assignment after any late penalty.
type AssignmentScore struct {
	AssignmentID int     `json:"assignment_id"`
	Percentage   float64 `json:"percentage"`
}

// LearnerResult summarises one learner. It serialises as a flat object holding
// "id", "avg" and one key per scored assignment id.
type LearnerResult struct {
	LearnerID int
	Average   float64
	Scores    []AssignmentScore
}

// Score returns the percentage recorded for an assignment.
func (r LearnerResult) Score(assignmentID int) (float64, bool) {
	for _, s := range r.Scores {
		if s.AssignmentID == assignmentID {
			return s.Percentage, true
		}
	}
	return 0, false
}

// MarshalJSON implements json.Marshaler.
func (r LearnerResult) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.Itoa(r.LearnerID))
	buf.WriteString(`,"avg":`)
	if err := writeNumber(buf, r.Average); err != nil {
		return nil, fmt.Errorf("learner %d avg: %w", r.LearnerID, err)
	}
	for _, s := range r.Scores {
		buf.WriteString(`,"`)
		buf.WriteString(strconv.Itoa(s.AssignmentID))
		buf.WriteString(`":`)
		if err := writeNumber(buf, s.Percentage); err != nil {
			return nil, fmt.Errorf("learner %d assignment %d: %w", r.LearnerID, s.AssignmentID, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Assignment keys are restored in
// ascending id order.
func (r *LearnerResult) UnmarshalJSON(data []byte) error {
	var fields map[string]float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode learner result: %w", err)
	}
	id, ok := fields["id"]
	if !ok {
		return fmt.Errorf("learner result missing id")
	}
	out := LearnerResult{LearnerID: int(id), Average: fields["avg"]}
	for key, value := range fields {
		if key == "id" || key == "avg" {
			continue
		}
		assignmentID, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("unexpected learner result key %q", key)
		}
		out.Scores = append(out.Scores, AssignmentScore{AssignmentID: assignmentID, Percentage: value})
	}
	sort.Slice(out.Scores, func(i, j int) bool { return out.Scores[i].AssignmentID < out.Scores[j].AssignmentID })
	*r = out
	return nil
}

// writeNumber encodes non-finite values as null.
func writeNumber(buf *bytes.Buffer, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		buf.WriteString("null")
		return nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

// LearnerDataResult is the outcome of one aggregation run: either the learner
// summaries or the message of the validation failure that stopped the batch.
type LearnerDataResult struct {
	Learners []LearnerResult
	Error    string
}

// Failed reports whether the run was rejected.
func (r LearnerDataResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON renders the learner list, or {"error": message} on failure.
func (r LearnerDataResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Error})
	}
	if r.Learners == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Learners)
}
