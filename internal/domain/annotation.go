package domain

import (
	"context"
)

// AnnotateRequest is one committed classification
type AnnotateRequest struct {
	CoupleID       ID     `json:"coupleId"`
	ClassSelection ID     `json:"classSelection"`
	Notes          string `json:"notes"`
	CurrentIndex   int    `json:"currentIndex"`
}

// AnnotateResult is the server's authoritative answer to a submission
type AnnotateResult struct {
	Message           string `json:"message"`
	NextIndex         int    `json:"nextIndex"`
	Completed         bool   `json:"completed"`
	CompletionMessage string `json:"completionMessage,omitempty"`
}

// PairText is the text content an annotation record points at
type PairText struct {
	Text1 string `json:"text_1"`
	Text2 string `json:"text_2"`
}

// AnnotationRecord is one entry of the annotator's history
type AnnotationRecord struct {
	ID          ID       `json:"id"`
	Pair        PairText `json:"coupleText"`
	ChosenClass string   `json:"chosenClass"`
	Notes       string   `json:"notes"`
}

// AnnotationService is the remote recorder of annotations
type AnnotationService interface {
	// Annotate posts one classification for the pair at req.CurrentIndex
	Annotate(ctx context.Context, taskID ID, req AnnotateRequest) (*AnnotateResult, error)

	// History returns the current user's annotations, newest first
	History(ctx context.Context) ([]AnnotationRecord, error)
}

// Credentials authenticate against the remote auth service
type Credentials struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

// AuthService exchanges credentials for a bearer token
type AuthService interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
}
