package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Score is a raw submission score. Decoding never fails on a non-number value;
// the value is kept and flagged so score validation can reject it.
type Score struct {
	value   float64
	numeric bool
	raw     json.RawMessage
}

// NewScore returns a numeric score.
func NewScore(v float64) Score {
	return Score{value: v, numeric: !math.IsNaN(v)}
}

// ScoreFromValue converts a decoded document value into a Score. Only Go numeric
// kinds produce a numeric score.
func ScoreFromValue(v interface{}) Score {
	switch n := v.(type) {
	case float64:
		return NewScore(n)
	case float32:
		return NewScore(float64(n))
	case int:
		return NewScore(float64(n))
	case int64:
		return NewScore(float64(n))
	case int32:
		return NewScore(float64(n))
	case json.Number:
		if score, ok := scoreFromNumber(n); ok {
			return score
		}
		return Score{raw: json.RawMessage(strconv.Quote(n.String()))}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		raw = json.RawMessage(strconv.Quote(fmt.Sprint(v)))
	}
	return Score{raw: raw}
}

// scoreFromNumber parses a JSON number literal. Literals beyond float64 range
// become ±Inf and keep their source text for re-encoding.
func scoreFromNumber(n json.Number) (Score, bool) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err == nil {
		return NewScore(f), true
	}
	if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
		return Score{value: f, numeric: true, raw: json.RawMessage(n.String())}, true
	}
	return Score{}, false
}

// Value returns the numeric value, zero for non-numeric scores.
func (s Score) Value() float64 {
	return s.value
}

// Numeric reports whether the score holds a number.
func (s Score) Numeric() bool {
	return s.numeric
}

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if s.numeric && !math.IsInf(s.value, 0) {
		return []byte(strconv.FormatFloat(s.value, 'f', -1, 64)), nil
	}
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode score: %w", err)
	}
	if n, ok := v.(json.Number); ok {
		if score, ok := scoreFromNumber(n); ok {
			*s = score
			return nil
		}
	}
	*s = Score{raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}
