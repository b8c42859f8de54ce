package annotation

import (
	"context"
	"fmt"
	"log"

	"github.com/lewtec/parelha/internal/domain"
)

// PairLoader fetches the position of a task at one index
type PairLoader interface {
	Load(ctx context.Context, taskID domain.ID, index int) (*domain.TaskPosition, error)
}

// ClassLoader fetches the label set of a task
type ClassLoader interface {
	ListClasses(ctx context.Context, taskID domain.ID) ([]domain.AnnotationClass, error)
}

// TaskPairStore holds nothing but the way to reach the pairs of a task: every
// navigation asks the server which pair sits at the target index.
type TaskPairStore struct {
	tasks domain.TaskService
}

func NewTaskPairStore(tasks domain.TaskService) *TaskPairStore {
	return &TaskPairStore{tasks: tasks}
}

// Load fetches the pair at index, or the saved position when index is
// domain.ResumeIndex
func (s *TaskPairStore) Load(ctx context.Context, taskID domain.ID, index int) (*domain.TaskPosition, error) {
	pos, err := s.tasks.GetTask(ctx, taskID, index)
	if err != nil {
		return nil, fmt.Errorf("while loading task '%s' at index %d: %w", taskID, index, err)
	}
	if pos.Total < 0 || pos.Index < 0 || pos.Index > pos.Total {
		return nil, &domain.APIError{
			Message: fmt.Sprintf("task '%s' answered index %d of %d", taskID, pos.Index, pos.Total),
			Err:     domain.ErrNetwork,
		}
	}
	if !pos.Finished() && pos.Pair == nil {
		return nil, &domain.APIError{
			Message: fmt.Sprintf("task '%s' answered no pair at index %d", taskID, pos.Index),
			Err:     domain.ErrNetwork,
		}
	}
	if pos.Task.ID.IsZero() {
		pos.Task.ID = taskID
	}
	log.Printf("store: task %s at %d/%d", taskID, pos.Index, pos.Total)
	return pos, nil
}

var _ PairLoader = (*TaskPairStore)(nil)
