package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lewtec/parelha/internal/domain"
)

const (
	tasksKey    = "tasks"
	historyKey  = "history"
	classPrefix = "classes:"
)

func taskPath(taskID domain.ID) string {
	return "/user/tasks/" + url.PathEscape(taskID.String())
}

// ListTasks returns the assigned tasks and the per-task progress map
func (c *Client) ListTasks(ctx context.Context) (*domain.TaskList, error) {
	if list, ok := cached[*domain.TaskList](c, tasksKey); ok {
		return list, nil
	}
	var list domain.TaskList
	if err := c.doJSON(ctx, http.MethodGet, "/user/tasks", nil, nil, &list); err != nil {
		return nil, err
	}
	if list.Progress == nil {
		list.Progress = map[domain.ID]int{}
	}
	c.cache.SetDefault(tasksKey, &list)
	return &list, nil
}

// GetTask fetches the pair at index. With domain.ResumeIndex the index
// parameter is left out and the server answers with the saved position.
func (c *Client) GetTask(ctx context.Context, taskID domain.ID, index int) (*domain.TaskPosition, error) {
	var query url.Values
	if index != domain.ResumeIndex {
		query = url.Values{"index": {strconv.Itoa(index)}}
	}
	var pos domain.TaskPosition
	if err := c.doJSON(ctx, http.MethodGet, taskPath(taskID), query, nil, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

type classesBody struct {
	Classes []domain.AnnotationClass `json:"classes"`
}

// ListClasses returns the label set of a task
func (c *Client) ListClasses(ctx context.Context, taskID domain.ID) ([]domain.AnnotationClass, error) {
	key := classPrefix + taskID.String()
	if classes, ok := cached[[]domain.AnnotationClass](c, key); ok {
		return classes, nil
	}
	var body classesBody
	if err := c.doJSON(ctx, http.MethodGet, taskPath(taskID)+"/classes", nil, nil, &body); err != nil {
		return nil, err
	}
	if body.Classes == nil {
		body.Classes = []domain.AnnotationClass{}
	}
	c.cache.SetDefault(key, body.Classes)
	return body.Classes, nil
}

// InvalidateTasks drops the cached task list
func (c *Client) InvalidateTasks() {
	c.cache.Delete(tasksKey)
}

// InvalidateClasses drops the cached label set of a task
func (c *Client) InvalidateClasses(taskID domain.ID) {
	c.cache.Delete(classPrefix + taskID.String())
}

var _ domain.TaskService = (*Client)(nil)
