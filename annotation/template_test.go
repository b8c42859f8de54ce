package annotation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/history"
	"github.com/lewtec/parelha/internal/session"
)

func TestRenderPages(t *testing.T) {
	signedIn := session.Session{Token: "jwt", Username: "marie"}
	deadline := &domain.Timestamp{}
	pair := &domain.TextPair{ID: "10", Text1: "the cat sleeps", Text2: "a cat is asleep"}
	records := []domain.AnnotationRecord{{ID: "3", Pair: domain.PairText{Text1: "x", Text2: "y"}, ChosenClass: "same"}}

	pages := map[string]struct {
		data map[string]any
		want string
	}{
		"login": {
			data: map[string]any{"Session": session.Session{}, "Login": "marie"},
			want: `name="password"`,
		},
		"tasks": {
			data: map[string]any{"Session": signedIn, "Entries": []BoardEntry{
				{Task: domain.Task{ID: "1", Title: "Paraphrase", Description: "*short* pairs", Deadline: deadline}, Done: 1, Total: 2, TotalKnown: true, Status: StatusInProgress},
				{Task: domain.Task{ID: "2", Title: "Entailment"}, Done: 1, Status: StatusUnknown},
			}},
			want: "<em>short</em>",
		},
		"task": {
			data: map[string]any{"Session": signedIn, "Snap": Snapshot{
				State: StateReady, TaskID: "1", Pair: pair, Index: 0, Total: 2,
				Classes:         []domain.AnnotationClass{{ID: "a", Name: "same"}, {ID: "b", Name: "different"}},
				SelectedClassID: "b",
			}},
			want: "a cat is asleep",
		},
		"history": {
			data: map[string]any{"Session": signedIn, "Page": history.Paginate(records, 1, 10)},
			want: "same",
		},
	}

	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, RenderPage(rec, req, http.StatusOK, name, page.data))
			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "<!DOCTYPE html>")
			assert.Contains(t, body, page.want)
		})
	}

	t.Run("unknown page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Error(t, RenderPage(rec, req, http.StatusOK, "missing", map[string]any{"Session": signedIn}))
	})
}
