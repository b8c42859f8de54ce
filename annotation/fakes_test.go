package annotation

import (
	"context"
	"strconv"
	"sync"

	"github.com/lewtec/parelha/internal/domain"
)

// fakeServer plays the remote API in memory
type fakeServer struct {
	mu       sync.Mutex
	tasks    []domain.Task
	pairs    map[domain.ID][]domain.TextPair
	saved    map[domain.ID]int
	classes  map[domain.ID][]domain.AnnotationClass
	selected map[domain.ID]domain.ID

	getErr     map[domain.ID]error
	classesErr error
	annotErr   error

	// gates block GetTask for a task until closed; entered is signaled first
	gates   map[domain.ID]chan struct{}
	entered chan domain.ID

	getCalls   int
	annotCalls int
	requests   []domain.AnnotateRequest
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		pairs:    map[domain.ID][]domain.TextPair{},
		saved:    map[domain.ID]int{},
		classes:  map[domain.ID][]domain.AnnotationClass{},
		selected: map[domain.ID]domain.ID{},
		getErr:   map[domain.ID]error{},
		gates:    map[domain.ID]chan struct{}{},
		entered:  make(chan domain.ID, 16),
	}
}

func (f *fakeServer) addTask(id domain.ID, n int, classes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, domain.Task{ID: id, Title: "task " + id.String()})
	pairs := make([]domain.TextPair, n)
	for i := range pairs {
		pairs[i] = domain.TextPair{
			ID:    domain.ID(id.String() + "-" + strconv.Itoa(i)),
			Text1: "left " + strconv.Itoa(i),
			Text2: "right " + strconv.Itoa(i),
		}
	}
	f.pairs[id] = pairs
	for _, c := range classes {
		f.classes[id] = append(f.classes[id], domain.AnnotationClass{ID: domain.ID(c), Name: "class " + c})
	}
}

func (f *fakeServer) ListTasks(ctx context.Context) (*domain.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	progress := map[domain.ID]int{}
	for id, n := range f.saved {
		progress[id] = n
	}
	return &domain.TaskList{Tasks: append([]domain.Task(nil), f.tasks...), Progress: progress}, nil
}

func (f *fakeServer) GetTask(ctx context.Context, taskID domain.ID, index int) (*domain.TaskPosition, error) {
	f.mu.Lock()
	gate := f.gates[taskID]
	f.getCalls++
	f.mu.Unlock()
	if gate != nil {
		f.entered <- taskID
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[taskID]; err != nil {
		return nil, err
	}
	pairs, ok := f.pairs[taskID]
	if !ok {
		return nil, &domain.APIError{Status: 404, Err: domain.ErrNotFound}
	}
	if index == domain.ResumeIndex {
		index = f.saved[taskID]
	}
	pos := &domain.TaskPosition{
		Task:            domain.Task{ID: taskID},
		Index:           index,
		Total:           len(pairs),
		SelectedClassID: f.selected[taskID],
	}
	if index < len(pairs) {
		pos.Pair = &pairs[index]
	}
	return pos, nil
}

func (f *fakeServer) ListClasses(ctx context.Context, taskID domain.ID) ([]domain.AnnotationClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.classesErr != nil {
		return nil, f.classesErr
	}
	return f.classes[taskID], nil
}

func (f *fakeServer) Annotate(ctx context.Context, taskID domain.ID, req domain.AnnotateRequest) (*domain.AnnotateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotCalls++
	f.requests = append(f.requests, req)
	if f.annotErr != nil {
		return nil, f.annotErr
	}
	next := req.CurrentIndex + 1
	if next > f.saved[taskID] {
		f.saved[taskID] = next
	}
	if next >= len(f.pairs[taskID]) {
		return &domain.AnnotateResult{Message: "saved", NextIndex: next, Completed: true, CompletionMessage: "all done"}, nil
	}
	return &domain.AnnotateResult{Message: "saved", NextIndex: next}, nil
}

func (f *fakeServer) History(ctx context.Context) ([]domain.AnnotationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]domain.AnnotationRecord, 0, len(f.requests))
	for i := len(f.requests) - 1; i >= 0; i-- {
		req := f.requests[i]
		records = append(records, domain.AnnotationRecord{
			ID:          domain.ID(strconv.Itoa(i + 1)),
			Pair:        domain.PairText{Text1: "left", Text2: "right"},
			ChosenClass: "class " + req.ClassSelection.String(),
			Notes:       req.Notes,
		})
	}
	return records, nil
}

func (f *fakeServer) setGate(taskID domain.ID) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[taskID] = gate
	return gate
}

func (f *fakeServer) clearGate(taskID domain.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gates, taskID)
}

type fakeRefresher struct {
	tasks, history int
	classes        []domain.ID
}

func (r *fakeRefresher) InvalidateTasks()   { r.tasks++ }
func (r *fakeRefresher) InvalidateHistory() { r.history++ }

func (r *fakeRefresher) InvalidateClasses(taskID domain.ID) {
	r.classes = append(r.classes, taskID)
}

func newTestWalker(f *fakeServer) *Walker {
	return NewWalker(NewTaskPairStore(f), f)
}
