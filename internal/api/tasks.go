package api

import (
	"context"
	"fmt"

	"github.com/gugverein/portal/internal/model"
)

// TaskUpdate carries the mutable fields of a task update. Zero values
// are omitted so partial updates leave other fields untouched.
type TaskUpdate struct {
	Status     string `json:"status,omitempty"`
	AssigneeID int    `json:"assignee_id,omitempty"`
}

// Tasks fetches the open task list.
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.Get(ctx, "/gug/v1/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a new task.
func (c *Client) CreateTask(ctx context.Context, t model.Task) error {
	return c.Post(ctx, "/gug/v1/tasks", t, nil)
}

// UpdateTask applies a partial update to a task (claim, complete).
func (c *Client) UpdateTask(ctx context.Context, id int, upd TaskUpdate) error {
	return c.Post(ctx, fmt.Sprintf("/gug/v1/tasks/%d", id), upd, nil)
}
