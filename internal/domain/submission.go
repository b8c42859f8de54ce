package domain

import (
	"context"
	"time"
)

// SubmitOutcome is how a submit attempt ended
type SubmitOutcome string

const (
	OutcomeRecorded  SubmitOutcome = "recorded"
	OutcomeCompleted SubmitOutcome = "completed"
	OutcomeFailed    SubmitOutcome = "failed"
)

// Submission is one local record of a submit attempt. It is kept for the
// user's own audit; the server stays the source of truth.
type Submission struct {
	ID       int64
	TaskID   ID
	CoupleID ID
	ClassID  ID
	Index    int
	Notes    string
	Outcome  SubmitOutcome
	Detail   string
	At       time.Time
}

// SubmissionLog stores submit attempts
type SubmissionLog interface {
	Record(ctx context.Context, s Submission) error
}
