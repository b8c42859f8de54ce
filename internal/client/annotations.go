package client

import (
	"context"
	"log"
	"net/http"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/history"
)

// Annotate posts one classification. It is never retried: the caller cannot
// know whether a failed attempt was recorded.
func (c *Client) Annotate(ctx context.Context, taskID domain.ID, req domain.AnnotateRequest) (*domain.AnnotateResult, error) {
	var result domain.AnnotateResult
	if err := c.doJSON(ctx, http.MethodPost, taskPath(taskID)+"/annotate", nil, req, &result); err != nil {
		return nil, err
	}
	// progress and history moved on the server
	c.InvalidateTasks()
	c.InvalidateHistory()
	return &result, nil
}

// History returns the user's annotations, flattened, de-duplicated and
// newest first
func (c *Client) History(ctx context.Context) ([]domain.AnnotationRecord, error) {
	if records, ok := cached[[]domain.AnnotationRecord](c, historyKey); ok {
		return records, nil
	}
	data, err := c.do(ctx, http.MethodGet, "/user/history", nil, nil)
	if err != nil {
		return nil, err
	}
	records, stats, err := history.Normalize(data)
	if err != nil {
		return nil, &domain.APIError{Status: http.StatusOK, Message: err.Error(), Err: domain.ErrNetwork}
	}
	if stats.Duplicates > 0 || stats.Discarded > 0 {
		log.Printf("client: history: kept %d, dropped %d duplicates and %d malformed entries", stats.Kept, stats.Duplicates, stats.Discarded)
	}
	c.cache.SetDefault(historyKey, records)
	return records, nil
}

// InvalidateHistory drops the cached history
func (c *Client) InvalidateHistory() {
	c.cache.Delete(historyKey)
}

// Login exchanges credentials for a token. It does not touch the session;
// storing the result is up to the caller.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	var result domain.LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var (
	_ domain.AnnotationService = (*Client)(nil)
	_ domain.AuthService       = (*Client)(nil)
)
