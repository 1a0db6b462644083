package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuestion is returned when a question is blank.
var ErrEmptyQuestion = errors.New("question cannot be empty")

const (
	DefaultTopK = 5
	MinTopK     = 2
	MaxTopK     = 10
)

// Question is a natural-language question with the number of chunks to retrieve.
type Question struct {
	Text string `json:"question"`
	K    int    `json:"k,omitempty"`
}

// Validate trims the question, rejects blank input, and clamps K to [MinTopK, MaxTopK]
// (zero means DefaultTopK).
func (q *Question) Validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return ErrEmptyQuestion
	}
	if q.K <= 0 {
		q.K = DefaultTopK
	}
	if q.K < MinTopK {
		q.K = MinTopK
	}
	if q.K > MaxTopK {
		q.K = MaxTopK
	}
	return nil
}
