package domain

import (
	"context"
)

// TextPair is one unit of annotation work: two text spans to classify.
type TextPair struct {
	ID    ID     `json:"id"`
	Text1 string `json:"text_1"`
	Text2 string `json:"text_2"`
}

// Dataset is the corpus a task draws its pairs from
type Dataset struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Annotator is the person a task is assigned to
type Annotator struct {
	ID        ID     `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
}

// Task is a named unit of work over a dataset. It is read-only for annotators.
type Task struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *Timestamp `json:"dateLimite"`
	Dataset     *Dataset   `json:"dataset"`
	Annotator   *Annotator `json:"annotateur"`

	// TotalCouples is only set when the listing endpoint knows it.
	TotalCouples *int `json:"totalCouples,omitempty"`
}

// AnnotationClass is a label option valid for a task
type AnnotationClass struct {
	ID          ID     `json:"id"`
	Name        string `json:"textClass"`
	Description string `json:"description"`
}

// TaskPosition is the answer to "which pair is at index i of task t".
// Pair is nil when Index == Total.
type TaskPosition struct {
	Task            Task      `json:"task"`
	Pair            *TextPair `json:"currentCouple"`
	Index           int       `json:"currentIndex"`
	Total           int       `json:"totalCouples"`
	SelectedClassID ID        `json:"selectedClassId"`
}

// Finished reports whether the position is past the last pair.
func (p *TaskPosition) Finished() bool {
	return p.Index >= p.Total
}

// TaskList is the annotator's assigned tasks plus the number of pairs
// already annotated per task.
type TaskList struct {
	Tasks    []Task     `json:"tasks"`
	Progress map[ID]int `json:"taskProgressMap"`
}

// ResumeIndex asks the server to pick the index from its saved progress.
const ResumeIndex = -1

// TaskService is the remote source of tasks, pairs and label sets
type TaskService interface {
	// ListTasks returns the tasks assigned to the current user
	ListTasks(ctx context.Context) (*TaskList, error)

	// GetTask returns the pair at index, or the server's saved position
	// when index is ResumeIndex
	GetTask(ctx context.Context, taskID ID, index int) (*TaskPosition, error)

	// ListClasses returns the label set valid for the task
	ListClasses(ctx context.Context, taskID ID) ([]AnnotationClass, error)
}
