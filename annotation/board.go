package annotation

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/lewtec/parelha/internal/domain"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	// StatusUnknown means the total of the task could not be learned
	StatusUnknown TaskStatus = "unknown"
)

const DefaultBoardConcurrency = 4

// BoardEntry is one row of the task list
type BoardEntry struct {
	Task       domain.Task
	Done       int
	Total      int
	TotalKnown bool
	Status     TaskStatus
}

func (e BoardEntry) Progress() float64 {
	if !e.TotalKnown || e.Total == 0 {
		return 0
	}
	if e.Done >= e.Total {
		return 1
	}
	return float64(e.Done) / float64(e.Total)
}

// Board assembles the task list. A task is reported completed only against
// an authoritative total; tasks whose total is missing from the listing get
// it from the first position of the task.
type Board struct {
	tasks       domain.TaskService
	concurrency int
}

func NewBoard(tasks domain.TaskService, concurrency int) *Board {
	if concurrency < 1 {
		concurrency = DefaultBoardConcurrency
	}
	return &Board{tasks: tasks, concurrency: concurrency}
}

func (b *Board) Load(ctx context.Context) ([]BoardEntry, error) {
	list, err := b.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing tasks: %w", err)
	}

	entries := make([]BoardEntry, len(list.Tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, task := range list.Tasks {
		entries[i] = BoardEntry{Task: task, Done: list.Progress[task.ID]}
		if task.TotalCouples != nil {
			entries[i].Total = *task.TotalCouples
			entries[i].TotalKnown = true
			continue
		}
		g.Go(func() error {
			pos, err := b.tasks.GetTask(gctx, task.ID, 0)
			if err != nil {
				// the row still renders, just without a status
				log.Printf("board: total of task %s unavailable: %s", task.ID, err)
				return nil
			}
			entries[i].Total = pos.Total
			entries[i].TotalKnown = true
			return nil
		})
	}
	_ = g.Wait()

	for i := range entries {
		entries[i].Status = statusOf(entries[i])
	}
	return entries, nil
}

func statusOf(e BoardEntry) TaskStatus {
	switch {
	case !e.TotalKnown:
		return StatusUnknown
	case e.Done >= e.Total:
		return StatusCompleted
	case e.Done > 0:
		return StatusInProgress
	}
	return StatusNotStarted
}
