package annotation

import (
	"context"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lewtec/parelha/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Snapshot is a read-only copy of a Walker's state
type Snapshot struct {
	State           State
	TaskID          domain.ID
	Task            domain.Task
	Pair            *domain.TextPair
	Index           int
	Total           int
	Classes         []domain.AnnotationClass
	SelectedClassID domain.ID
	Notes           string
	Err             error
}

// Progress is the share of the task covered once the current pair is done.
// An empty task reports 0.
func (s Snapshot) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	if s.Index >= s.Total {
		return 1
	}
	return float64(s.Index+1) / float64(s.Total)
}

func (s Snapshot) CanPrevious() bool {
	return s.State == StateReady && s.Index > 0
}

func (s Snapshot) CanNext() bool {
	return s.State == StateReady && s.Index < s.Total-1
}

func (s Snapshot) CanSubmit() bool {
	return s.State == StateReady && s.Pair != nil && !s.SelectedClassID.IsZero()
}

// Walker owns the cursor of one open task. At most one mutating operation
// (open, navigate, submit) runs at a time; a new OpenTask supersedes
// whatever is in flight, and the stale response is dropped on arrival.
type Walker struct {
	pairs   PairLoader
	classes ClassLoader

	mu         sync.Mutex
	generation uint64
	busy       bool
	state      State
	taskID     domain.ID
	task       domain.Task
	pair       *domain.TextPair
	index      int
	total      int
	labels     []domain.AnnotationClass
	selected   domain.ID
	notes      string
	err        error
}

func NewWalker(pairs PairLoader, classes ClassLoader) *Walker {
	return &Walker{pairs: pairs, classes: classes}
}

// OpenTask resets the selection and loads the saved position of the task
// together with its label set. Either failure fails the whole open.
func (w *Walker) OpenTask(ctx context.Context, taskID domain.ID) error {
	w.mu.Lock()
	w.generation++
	generation := w.generation
	w.busy = true
	w.state = StateLoading
	w.taskID = taskID
	w.task = domain.Task{}
	w.pair = nil
	w.index, w.total = 0, 0
	w.labels = nil
	w.selected, w.notes = "", ""
	w.err = nil
	w.mu.Unlock()

	var (
		pos     *domain.TaskPosition
		classes []domain.AnnotationClass
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pos, err = w.pairs.Load(gctx, taskID, domain.ResumeIndex)
		return err
	})
	g.Go(func() error {
		var err error
		classes, err = w.classes.ListClasses(gctx, taskID)
		return err
	})
	err := g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != generation {
		log.Printf("walker: dropped stale open of task %s", taskID)
		return domain.ErrSuperseded
	}
	w.busy = false
	if err != nil {
		w.state = StateFailed
		w.err = err
		return err
	}
	w.labels = classes
	w.apply(pos)
	log.Printf("walker: opened task %s at %d/%d", taskID, w.index, w.total)
	return nil
}

// apply moves the cursor to pos, keeping the server's recorded selection
// when it belongs to the label set
func (w *Walker) apply(pos *domain.TaskPosition) {
	w.task = pos.Task
	w.pair = pos.Pair
	w.index = pos.Index
	w.total = pos.Total
	w.selected, w.notes = "", ""
	if !pos.SelectedClassID.IsZero() && w.hasClass(pos.SelectedClassID) {
		w.selected = pos.SelectedClassID
	}
	if pos.Finished() {
		w.pair = nil
		w.selected = ""
		w.state = StateCompleted
		return
	}
	w.state = StateReady
}

func (w *Walker) hasClass(id domain.ID) bool {
	return slices.ContainsFunc(w.labels, func(c domain.AnnotationClass) bool {
		return c.ID == id
	})
}

// checkIdle must be called with mu held
func (w *Walker) checkIdle() error {
	switch {
	case w.state == StateCompleted:
		return domain.ErrCompleted
	case w.busy:
		return domain.ErrBusy
	case w.state != StateReady:
		return domain.ErrNotReady
	}
	return nil
}

// Navigate moves one pair back or forth. Moving outside the task is a no-op.
// A failed load leaves the cursor where it was.
func (w *Walker) Navigate(ctx context.Context, dir Direction) error {
	w.mu.Lock()
	if err := w.checkIdle(); err != nil {
		w.mu.Unlock()
		return err
	}
	target := w.index + int(dir)
	if target < 0 || target > w.total-1 {
		w.mu.Unlock()
		return nil
	}
	generation := w.generation
	taskID := w.taskID
	w.busy = true
	w.state = StateLoading
	w.mu.Unlock()

	pos, err := w.pairs.Load(ctx, taskID, target)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != generation {
		return domain.ErrSuperseded
	}
	w.busy = false
	if err != nil {
		w.state = StateReady
		w.err = err
		return err
	}
	w.err = nil
	w.apply(pos)
	return nil
}

// SelectClass records the label chosen for the current pair
func (w *Walker) SelectClass(id domain.ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdle(); err != nil {
		return err
	}
	if !w.hasClass(id) {
		return domain.ErrInvalidSelection
	}
	w.selected = id
	return nil
}

func (w *Walker) SetNotes(notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdle(); err != nil {
		return err
	}
	w.notes = notes
	return nil
}

// ProgressFraction reports the share of the task covered
func (w *Walker) ProgressFraction() float64 {
	return w.Snapshot().Progress()
}

func (w *Walker) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:           w.state,
		TaskID:          w.taskID,
		Task:            w.task,
		Pair:            w.pair,
		Index:           w.index,
		Total:           w.total,
		Classes:         slices.Clone(w.labels),
		SelectedClassID: w.selected,
		Notes:           w.notes,
		Err:             w.err,
	}
}

// pendingSubmit is what a submit captured from the cursor when it started
type pendingSubmit struct {
	generation uint64
	taskID     domain.ID
	request    domain.AnnotateRequest
}

// submitChoice is a selection and notes applied as part of a submit
type submitChoice struct {
	classID domain.ID
	notes   string
}

func (w *Walker) beginSubmit(choice *submitChoice) (pendingSubmit, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdle(); err != nil {
		return pendingSubmit{}, err
	}
	if w.pair == nil {
		return pendingSubmit{}, domain.ErrNotReady
	}
	if choice != nil {
		if !choice.classID.IsZero() {
			if !w.hasClass(choice.classID) {
				return pendingSubmit{}, domain.ErrInvalidSelection
			}
			w.selected = choice.classID
		}
		w.notes = choice.notes
	}
	if w.selected.IsZero() {
		return pendingSubmit{}, domain.ErrMissingSelection
	}
	w.busy = true
	w.state = StateSubmitting
	return pendingSubmit{
		generation: w.generation,
		taskID:     w.taskID,
		request: domain.AnnotateRequest{
			CoupleID:       w.pair.ID,
			ClassSelection: w.selected,
			Notes:          w.notes,
			CurrentIndex:   w.index,
		},
	}, nil
}

// abortSubmit returns to Ready with the cursor untouched
func (w *Walker) abortSubmit(p pendingSubmit, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != p.generation {
		return
	}
	w.busy = false
	w.state = StateReady
	w.err = err
}

func (w *Walker) complete(p pendingSubmit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != p.generation {
		return
	}
	w.busy = false
	w.state = StateCompleted
	w.index = w.total
	w.pair = nil
	w.selected, w.notes = "", ""
	w.err = nil
}

// advance loads the index the server handed back after a recorded submit.
// If that load fails the cursor stays on the submitted pair.
func (w *Walker) advance(ctx context.Context, p pendingSubmit, nextIndex int) error {
	pos, err := w.pairs.Load(ctx, p.taskID, nextIndex)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != p.generation {
		return domain.ErrSuperseded
	}
	w.busy = false
	if err != nil {
		w.state = StateReady
		w.err = err
		return err
	}
	w.err = nil
	w.apply(pos)
	return nil
}
